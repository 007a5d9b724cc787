package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/GoormOnlyOne/onlyone-server/internal/model"
)

// PaymentRepo provides persistence for gateway charge records.  The
// order_id is generated locally before the user is sent to the gateway;
// the payment_key arrives with the confirm callback.  Both carry unique
// keys, which is what makes confirm retries idempotent.
type PaymentRepo struct{ db *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions that
// span multiple repositories.
func (r *PaymentRepo) DB() *sql.DB { return r.db }

// Create inserts a READY payment awaiting gateway confirmation.
func (r *PaymentRepo) Create(ctx context.Context, userID uint64, orderID string, amount int64) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO payments (user_id, order_id, amount, status) VALUES (?,?,?,?)",
		userID, orderID, amount, model.PaymentReady)
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

// GetByOrderID fetches a payment by its locally generated order id.
func (r *PaymentRepo) GetByOrderID(ctx context.Context, orderID string) (model.Payment, error) {
	return scanPayment(r.db.QueryRowContext(ctx,
		"SELECT id, user_id, payment_key, order_id, amount, method, status, approved_at, created_at FROM payments WHERE order_id=?",
		orderID))
}

// GetByOrderIDTx fetches and locks a payment so concurrent confirms of the
// same order serialize on the row.
func (r *PaymentRepo) GetByOrderIDTx(ctx context.Context, tx *sql.Tx, orderID string) (model.Payment, error) {
	return scanPayment(tx.QueryRowContext(ctx,
		"SELECT id, user_id, payment_key, order_id, amount, method, status, approved_at, created_at FROM payments WHERE order_id=? FOR UPDATE",
		orderID))
}

func scanPayment(row rowScanner) (model.Payment, error) {
	var p model.Payment
	var key sql.NullString
	var approvedAt sql.NullTime
	err := row.Scan(&p.ID, &p.UserID, &key, &p.OrderID, &p.Amount, &p.Method,
		&p.Status, &approvedAt, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	if key.Valid {
		s := key.String
		p.PaymentKey = &s
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		p.ApprovedAt = &t
	}
	return p, nil
}

// MarkDoneTx moves a READY payment to DONE, recording the gateway's
// payment key, method and approval time.  Updating a payment that already
// left READY affects zero rows and yields ErrConflict.
func (r *PaymentRepo) MarkDoneTx(ctx context.Context, tx *sql.Tx, paymentID uint64, paymentKey, method string, approvedAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE payments SET status=?, payment_key=?, method=?, approved_at=? WHERE id=? AND status=?",
		model.PaymentDone, paymentKey, method, approvedAt.UTC(), paymentID, model.PaymentReady)
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
