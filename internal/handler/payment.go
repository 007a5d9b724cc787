package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/GoormOnlyOne/onlyone-server/internal/apperr"
	"github.com/GoormOnlyOne/onlyone-server/internal/gateway"
	"github.com/GoormOnlyOne/onlyone-server/internal/model"
	"github.com/GoormOnlyOne/onlyone-server/internal/repository"
)

// PaymentHandler serves wallet top-ups through the external payment
// gateway: Charge creates the local READY record and order id, Confirm
// verifies the gateway result and credits the wallet exactly once.
type PaymentHandler struct {
	DB       *sql.DB
	Payments *repository.PaymentRepo
	Wallets  *repository.WalletRepo
	Gateway  *gateway.Client
}

func NewPaymentHandler(db *sql.DB, p *repository.PaymentRepo, w *repository.WalletRepo, g *gateway.Client) *PaymentHandler {
	return &PaymentHandler{DB: db, Payments: p, Wallets: w, Gateway: g}
}

type chargeReq struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type chargeResp struct {
	OrderID string `json:"orderId"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
}

// Charge registers a pending top-up and returns the order id the client
// passes to the gateway's checkout.
func (h *PaymentHandler) Charge(c echo.Context) error {
	var req chargeReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_INPUT", "invalid body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	orderID := "order-" + uuid.NewString()
	if _, err := h.Payments.Create(ctx, userID(c), orderID, req.Amount); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, chargeResp{OrderID: orderID, Amount: req.Amount, Status: model.PaymentReady})
}

type confirmReq struct {
	PaymentKey string `json:"paymentKey" validate:"required"`
	OrderID    string `json:"orderId" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
}

type confirmResp struct {
	OrderID    string     `json:"orderId"`
	PaymentKey string     `json:"paymentKey"`
	Amount     int64      `json:"amount"`
	Method     string     `json:"method"`
	Status     string     `json:"status"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
}

// Confirm finalizes a top-up.  The local record is checked before the
// gateway is called; a retry of an already-confirmed payment returns the
// stored result without contacting the gateway or crediting twice.  The
// wallet credit and the payment status flip commit in one transaction.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	var req confirmReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_INPUT", "invalid body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}
	callerID := userID(c)

	ctx, cancel := reqContext(c)
	defer cancel()

	p, err := h.Payments.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return respondError(c, apperr.New(apperr.KindNotFound, "PAYMENT_NOT_FOUND", "payment not found"))
		}
		return respondError(c, err)
	}
	if p.UserID != callerID {
		return respondError(c, apperr.New(apperr.KindPermissionDenied, "NOT_YOUR_PAYMENT", "payment belongs to another user"))
	}
	if p.Status == model.PaymentDone {
		if p.PaymentKey == nil || *p.PaymentKey != req.PaymentKey {
			return respondError(c, apperr.New(apperr.KindPaymentMismatch, "PAYMENT_MISMATCH", "payment key does not match confirmed payment"))
		}
		return c.JSON(http.StatusOK, toConfirmResp(p))
	}
	if p.Status != model.PaymentReady {
		return respondError(c, apperr.New(apperr.KindInvalidState, "PAYMENT_NOT_CONFIRMABLE", "payment is not awaiting confirmation"))
	}
	if p.Amount != req.Amount {
		return respondError(c, apperr.New(apperr.KindPaymentMismatch, "PAYMENT_MISMATCH", "amount does not match the registered payment"))
	}

	// Gateway call happens outside the transaction; its own client timeout
	// bounds the wait.
	conf, err := h.Gateway.Confirm(c.Request().Context(), req.PaymentKey, req.OrderID, req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	if conf.OrderID != req.OrderID || conf.TotalAmount != req.Amount {
		return respondError(c, apperr.New(apperr.KindPaymentMismatch, "PAYMENT_MISMATCH", "gateway confirmation does not match the request"))
	}

	// Wallet must exist before it can be locked inside the transaction.
	if _, err := h.Wallets.GetOrCreate(ctx, callerID); err != nil {
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

	locked, err := h.Payments.GetByOrderIDTx(ctx, tx, req.OrderID)
	if err != nil {
		return respondError(c, err)
	}
	if locked.Status == model.PaymentDone {
		// A concurrent confirm won the race; its credit already happened.
		return c.JSON(http.StatusOK, toConfirmResp(locked))
	}

	approvedAt := time.Now().UTC()
	if t, err := time.Parse(time.RFC3339, conf.ApprovedAt); err == nil {
		approvedAt = t.UTC()
	}
	if err := h.Payments.MarkDoneTx(ctx, tx, locked.ID, conf.PaymentKey, conf.Method, approvedAt); err != nil {
		return respondError(c, err)
	}
	wallet, err := h.Wallets.GetForUpdateTx(ctx, tx, callerID)
	if err != nil {
		return respondError(c, err)
	}
	if _, err := h.Wallets.CreditTx(ctx, tx, &wallet, locked.Amount, model.TxCharge, nil, &locked.ID); err != nil {
		return respondError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return respondError(c, err)
	}
	committed = true

	key := conf.PaymentKey
	locked.PaymentKey = &key
	locked.Method = conf.Method
	locked.Status = model.PaymentDone
	locked.ApprovedAt = &approvedAt
	return c.JSON(http.StatusOK, toConfirmResp(locked))
}

func toConfirmResp(p model.Payment) confirmResp {
	resp := confirmResp{
		OrderID:    p.OrderID,
		Amount:     p.Amount,
		Method:     p.Method,
		Status:     p.Status,
		ApprovedAt: p.ApprovedAt,
	}
	if p.PaymentKey != nil {
		resp.PaymentKey = *p.PaymentKey
	}
	return resp
}
