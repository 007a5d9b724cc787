package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/GoormOnlyOne/onlyone-server/internal/model"
)

// SettlementRepo provides persistence for settlements, per-participant
// shares and transfer records.  Every mutation runs inside a caller-owned
// transaction so a settlement payment commits atomically with its wallet
// mutations.
type SettlementRepo struct{ db *sql.DB }

func NewSettlementRepo(db *sql.DB) *SettlementRepo { return &SettlementRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions that
// span multiple repositories.
func (r *SettlementRepo) DB() *sql.DB { return r.db }

// CreateTx inserts the settlement aggregate and one REQUESTED share per
// debtor.  A second settlement for the same schedule hits the unique key
// on schedule_id and yields ErrConflict.
func (r *SettlementRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Settlement, debtorIDs []uint64) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO settlements (schedule_id, receiver_id, amount_each, total_amount, total_status) VALUES (?,?,?,?,?)",
		s.ScheduleID, s.ReceiverID, s.AmountEach, s.TotalAmount, s.TotalStatus)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, userID := range debtorIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_settlements (settlement_id, user_id, amount, status) VALUES (?,?,?,?)",
			id, userID, s.AmountEach, model.ShareRequested); err != nil {
			return 0, err
		}
	}
	return uint64(id), nil
}

// GetByID fetches a settlement outside any transaction.
func (r *SettlementRepo) GetByID(ctx context.Context, id uint64) (model.Settlement, error) {
	return scanSettlement(r.db.QueryRowContext(ctx,
		"SELECT id, schedule_id, receiver_id, amount_each, total_amount, total_status, completed_at, created_at FROM settlements WHERE id=?",
		id))
}

// GetByIDTx fetches and locks a settlement row.  Locking the aggregate
// first gives concurrent payers of the same settlement a single
// serialization point before they touch wallets.
func (r *SettlementRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Settlement, error) {
	return scanSettlement(tx.QueryRowContext(ctx,
		"SELECT id, schedule_id, receiver_id, amount_each, total_amount, total_status, completed_at, created_at FROM settlements WHERE id=? FOR UPDATE",
		id))
}

func scanSettlement(row rowScanner) (model.Settlement, error) {
	var s model.Settlement
	var completedAt sql.NullTime
	err := row.Scan(&s.ID, &s.ScheduleID, &s.ReceiverID, &s.AmountEach,
		&s.TotalAmount, &s.TotalStatus, &completedAt, &s.CreatedAt)
	if err != nil {
		return s, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}
	return s, nil
}

// ShareForUpdateTx locks and returns the caller's share of a settlement.
// A user who is not a debtor of the settlement gets sql.ErrNoRows.
func (r *SettlementRepo) ShareForUpdateTx(ctx context.Context, tx *sql.Tx, settlementID, userID uint64) (model.UserSettlement, error) {
	var us model.UserSettlement
	var completedAt sql.NullTime
	err := tx.QueryRowContext(ctx,
		"SELECT id, settlement_id, user_id, amount, status, completed_at, created_at FROM user_settlements WHERE settlement_id=? AND user_id=? FOR UPDATE",
		settlementID, userID).Scan(&us.ID, &us.SettlementID, &us.UserID, &us.Amount, &us.Status, &completedAt, &us.CreatedAt)
	if err != nil {
		return us, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		us.CompletedAt = &t
	}
	return us, nil
}

// MarkSharePaidTx flips one REQUESTED share to PAID and stamps its
// completion time.  Flipping an already-PAID share affects zero rows and
// yields ErrConflict so a double pay cannot slip through.
func (r *SettlementRepo) MarkSharePaidTx(ctx context.Context, tx *sql.Tx, userSettlementID uint64, at time.Time) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE user_settlements SET status=?, completed_at=? WHERE id=? AND status=?",
		model.SharePaid, at.UTC(), userSettlementID, model.ShareRequested)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// ShareCountsTx counts a settlement's total and paid shares within the
// transaction, so the aggregate status decision sees the share just paid.
func (r *SettlementRepo) ShareCountsTx(ctx context.Context, tx *sql.Tx, settlementID uint64) (total, paid int, err error) {
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(status=?),0) FROM user_settlements WHERE settlement_id=?",
		model.SharePaid, settlementID).Scan(&total, &paid)
	return total, paid, err
}

// UpdateTotalStatusTx moves the aggregate to the given status.
// completed_at is written only on the transition into COMPLETED and only
// if not already set, so the stamp survives redundant updates.
func (r *SettlementRepo) UpdateTotalStatusTx(ctx context.Context, tx *sql.Tx, settlementID uint64, status string, at time.Time) error {
	if status == model.SettlementCompleted {
		_, err := tx.ExecContext(ctx,
			"UPDATE settlements SET total_status=?, completed_at=COALESCE(completed_at, ?) WHERE id=?",
			status, at.UTC(), settlementID)
		return err
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE settlements SET total_status=? WHERE id=?",
		status, settlementID)
	return err
}

// SharesBySettlement lists every share of a settlement, unpaid first.
func (r *SettlementRepo) SharesBySettlement(ctx context.Context, settlementID uint64) ([]model.UserSettlement, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, settlement_id, user_id, amount, status, completed_at, created_at FROM user_settlements WHERE settlement_id=? ORDER BY status DESC, id",
		settlementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shares := make([]model.UserSettlement, 0)
	for rows.Next() {
		var us model.UserSettlement
		var completedAt sql.NullTime
		if err := rows.Scan(&us.ID, &us.SettlementID, &us.UserID, &us.Amount, &us.Status, &completedAt, &us.CreatedAt); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			t := completedAt.Time
			us.CompletedAt = &t
		}
		shares = append(shares, us)
	}
	return shares, rows.Err()
}

// CreateTransferTx records the link between the payer's debit transaction
// and the share it settles.  The unique key on user_settlement_id makes a
// second transfer for the same share impossible.
func (r *SettlementRepo) CreateTransferTx(ctx context.Context, tx *sql.Tx, walletTransactionID, userSettlementID uint64) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO transfers (wallet_transaction_id, user_settlement_id) VALUES (?,?)",
		walletTransactionID, userSettlementID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
