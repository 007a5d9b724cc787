package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/GoormOnlyOne/onlyone-server/internal/apperr"
	"github.com/GoormOnlyOne/onlyone-server/internal/model"
	"github.com/GoormOnlyOne/onlyone-server/internal/queue"
	"github.com/GoormOnlyOne/onlyone-server/internal/repository"
	"github.com/GoormOnlyOne/onlyone-server/internal/settlement"
)

// SettlementHandler serves settlement creation and payment.  Both
// operations are multi-table mutations, so the handler owns the
// transaction and the repositories contribute Tx methods.
type SettlementHandler struct {
	DB          *sql.DB
	Schedules   *repository.ScheduleRepo
	Settlements *repository.SettlementRepo
	Wallets     *repository.WalletRepo
	AMQPURL     string
}

func NewSettlementHandler(db *sql.DB, sch *repository.ScheduleRepo, set *repository.SettlementRepo, w *repository.WalletRepo, amqpURL string) *SettlementHandler {
	return &SettlementHandler{DB: db, Schedules: sch, Settlements: set, Wallets: w, AMQPURL: amqpURL}
}

type settlementResp struct {
	ID          uint64 `json:"id,omitempty"`
	ScheduleID  uint64 `json:"scheduleId"`
	AmountEach  int64  `json:"amountEach"`
	TotalAmount int64  `json:"totalAmount"`
	TotalStatus string `json:"totalStatus"`
}

// Create requests a settlement for a schedule.  Only the schedule's LEADER
// may call it, only after the schedule's start time has passed, and only
// once.  A schedule with nothing to settle (zero cost or a single
// participant) is closed immediately without settlement rows.
func (h *SettlementHandler) Create(c echo.Context) error {
	clubID := pathID(c, "clubId")
	scheduleID := pathID(c, "scheduleId")
	if clubID == 0 || scheduleID == 0 {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_INPUT", "invalid path parameters"))
	}
	callerID := userID(c)

	ctx, cancel := reqContext(c)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return respondError(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sched, err := h.Schedules.GetForClubTx(ctx, tx, clubID, scheduleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return respondError(c, apperr.New(apperr.KindNotFound, "SCHEDULE_NOT_FOUND", "schedule not found"))
		}
		return respondError(c, err)
	}
	role, err := h.Schedules.RoleOfTx(ctx, tx, scheduleID, callerID)
	if err == sql.ErrNoRows || (err == nil && role != model.RoleLeader) {
		return respondError(c, apperr.New(apperr.KindPermissionDenied, "NOT_LEADER", "only the schedule leader can request a settlement"))
	}
	if err != nil {
		return respondError(c, err)
	}
	if sched.Status != model.ScheduleReady {
		return respondError(c, apperr.New(apperr.KindInvalidState, "ALREADY_SETTLED", "settlement already requested for this schedule"))
	}
	now := time.Now().UTC()
	if sched.StartsAt.After(now) {
		return respondError(c, apperr.New(apperr.KindInvalidState, "SCHEDULE_NOT_STARTED", "settlement requested before schedule start"))
	}

	participants, err := h.Schedules.ParticipantIDsTx(ctx, tx, scheduleID)
	if err != nil {
		return respondError(c, err)
	}

	// Nothing to collect: close the schedule without creating rows.
	if settlement.Trivial(sched.Cost, len(participants)) {
		if err := h.Schedules.UpdateStatusTx(ctx, tx, scheduleID, model.ScheduleClosed); err != nil {
			return respondError(c, err)
		}
		if err := tx.Commit(); err != nil {
			return respondError(c, err)
		}
		committed = true
		return c.JSON(http.StatusCreated, settlementResp{
			ScheduleID:  scheduleID,
			AmountEach:  sched.Cost,
			TotalAmount: 0,
			TotalStatus: model.SettlementCompleted,
		})
	}

	s := &model.Settlement{
		ScheduleID:  scheduleID,
		ReceiverID:  callerID,
		AmountEach:  sched.Cost,
		TotalAmount: settlement.TotalAmount(sched.Cost, len(participants)),
		TotalStatus: model.SettlementRequested,
	}
	debtors := settlement.Debtors(participants, callerID)
	settlementID, err := h.Settlements.CreateTx(ctx, tx, s, debtors)
	if err != nil {
		if err == repository.ErrConflict {
			return respondError(c, apperr.New(apperr.KindInvalidState, "ALREADY_SETTLED", "settlement already requested for this schedule"))
		}
		return respondError(c, err)
	}
	if err := h.Schedules.UpdateStatusTx(ctx, tx, scheduleID, model.ScheduleEnded); err != nil {
		return respondError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return respondError(c, err)
	}
	committed = true

	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue.Publish(pubCtx, h.AMQPURL, queue.SettlementRequestedQueue, queue.SettlementRequestedEvent{
			SettlementID:  settlementID,
			ScheduleID:    scheduleID,
			ScheduleTitle: sched.Title,
			ClubID:        clubID,
			ReceiverID:    callerID,
			AmountEach:    s.AmountEach,
			TotalAmount:   s.TotalAmount,
			DebtorIDs:     debtors,
			RequestedAt:   now.Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, settlementResp{
		ID:          settlementID,
		ScheduleID:  scheduleID,
		AmountEach:  s.AmountEach,
		TotalAmount: s.TotalAmount,
		TotalStatus: s.TotalStatus,
	})
}

type payResp struct {
	ShareStatus      string `json:"shareStatus"`
	SettlementStatus string `json:"settlementStatus"`
}

// Pay settles the caller's share: one transaction debits the payer's
// wallet, records the transfer, credits the receiver's wallet and flips
// the share to PAID.  Paying an already-paid share is a no-op that
// returns the current state.
func (h *SettlementHandler) Pay(c echo.Context) error {
	clubID := pathID(c, "clubId")
	scheduleID := pathID(c, "scheduleId")
	settlementID := pathID(c, "settlementId")
	if clubID == 0 || scheduleID == 0 || settlementID == 0 {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_INPUT", "invalid path parameters"))
	}
	callerID := userID(c)

	ctx, cancel := reqContext(c)
	defer cancel()

	// Both wallets must exist before locking; creation cannot happen under
	// FOR UPDATE on a missing row.
	payerWallet, err := h.Wallets.GetOrCreate(ctx, callerID)
	if err != nil {
		return respondError(c, err)
	}
	pre, err := h.Settlements.GetByID(ctx, settlementID)
	if err != nil {
		if err == sql.ErrNoRows {
			return respondError(c, apperr.New(apperr.KindNotFound, "SETTLEMENT_NOT_FOUND", "settlement not found"))
		}
		return respondError(c, err)
	}
	if pre.ScheduleID != scheduleID {
		return respondError(c, apperr.New(apperr.KindNotFound, "SETTLEMENT_NOT_FOUND", "settlement not found"))
	}
	receiverWallet, err := h.Wallets.GetOrCreate(ctx, pre.ReceiverID)
	if err != nil {
		return respondError(c, err)
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return respondError(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	set, err := h.Settlements.GetByIDTx(ctx, tx, settlementID)
	if err != nil {
		return respondError(c, err)
	}
	sched, err := h.Schedules.GetForClubTx(ctx, tx, clubID, set.ScheduleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return respondError(c, apperr.New(apperr.KindNotFound, "SCHEDULE_NOT_FOUND", "schedule not found"))
		}
		return respondError(c, err)
	}

	share, err := h.Settlements.ShareForUpdateTx(ctx, tx, settlementID, callerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return respondError(c, apperr.New(apperr.KindPermissionDenied, "NO_SHARE", "you have no share in this settlement"))
		}
		return respondError(c, err)
	}
	if share.Status == model.SharePaid {
		// Retried payment: report current state without touching wallets.
		return c.JSON(http.StatusOK, payResp{ShareStatus: model.SharePaid, SettlementStatus: set.TotalStatus})
	}

	// Lock wallets in id order so two opposing payments cannot deadlock.
	payer, receiver, err := h.lockWalletPair(ctx, tx, payerWallet, receiverWallet)
	if err != nil {
		return respondError(c, err)
	}

	debitTxID, err := h.Wallets.DebitTx(ctx, tx, payer, share.Amount, model.TxTransfer, &receiver.ID)
	if err != nil {
		if errors.Is(err, model.ErrInsufficientFunds) {
			return respondError(c, apperr.Wrap(err, apperr.KindInsufficientFunds, "INSUFFICIENT_FUNDS", "wallet balance is too low"))
		}
		return respondError(c, err)
	}
	if _, err := h.Settlements.CreateTransferTx(ctx, tx, debitTxID, share.ID); err != nil {
		if err == repository.ErrConflict {
			return respondError(c, apperr.New(apperr.KindInvalidState, "ALREADY_PAID", "share already paid"))
		}
		return respondError(c, err)
	}
	if _, err := h.Wallets.CreditTx(ctx, tx, receiver, share.Amount, model.TxTransfer, &payer.ID, nil); err != nil {
		return respondError(c, err)
	}

	now := time.Now().UTC()
	if err := h.Settlements.MarkSharePaidTx(ctx, tx, share.ID, now); err != nil {
		return respondError(c, err)
	}

	total, paid, err := h.Settlements.ShareCountsTx(ctx, tx, settlementID)
	if err != nil {
		return respondError(c, err)
	}
	next := settlement.NextTotalStatus(paid, total)
	if err := h.Settlements.UpdateTotalStatusTx(ctx, tx, settlementID, next, now); err != nil {
		return respondError(c, err)
	}
	if next == model.SettlementCompleted {
		if err := h.Schedules.UpdateStatusTx(ctx, tx, set.ScheduleID, model.ScheduleClosed); err != nil {
			return respondError(c, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return respondError(c, err)
	}
	committed = true

	if next == model.SettlementCompleted {
		go func() {
			pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer pubCancel()
			_ = queue.Publish(pubCtx, h.AMQPURL, queue.SettlementCompletedQueue, queue.SettlementCompletedEvent{
				SettlementID:  settlementID,
				ScheduleID:    set.ScheduleID,
				ScheduleTitle: sched.Title,
				ReceiverID:    set.ReceiverID,
				TotalAmount:   set.TotalAmount,
				CompletedAt:   now.Format(time.RFC3339),
			})
		}()
	}

	return c.JSON(http.StatusOK, payResp{ShareStatus: model.SharePaid, SettlementStatus: next})
}

// lockWalletPair re-reads both wallets under FOR UPDATE, always locking
// the lower wallet id first.
func (h *SettlementHandler) lockWalletPair(ctx context.Context, tx *sql.Tx, a, b model.Wallet) (payer, receiver *model.Wallet, err error) {
	first, second := a, b
	if b.ID < a.ID {
		first, second = b, a
	}
	locked1, err := h.Wallets.GetForUpdateTx(ctx, tx, first.UserID)
	if err != nil {
		return nil, nil, err
	}
	locked2, err := h.Wallets.GetForUpdateTx(ctx, tx, second.UserID)
	if err != nil {
		return nil, nil, err
	}
	if locked1.UserID == a.UserID {
		return &locked1, &locked2, nil
	}
	return &locked2, &locked1, nil
}
