package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/GoormOnlyOne/onlyone-server/internal/model"
)

// WalletRepo provides persistence for wallets and their append-only
// transaction ledger.  All balance mutations go through DebitTx/CreditTx
// while the caller holds the wallet's row lock, so the database never sees
// a negative balance and every change has exactly one ledger row.
type WalletRepo struct{ db *sql.DB }

func NewWalletRepo(db *sql.DB) *WalletRepo { return &WalletRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions that
// span multiple repositories.
func (r *WalletRepo) DB() *sql.DB { return r.db }

// GetOrCreate returns the user's wallet, creating an empty one on first
// touch.  A racing create loses on the unique user_id key and re-reads.
func (r *WalletRepo) GetOrCreate(ctx context.Context, userID uint64) (model.Wallet, error) {
	w, err := r.getByUser(ctx, userID)
	if err == nil {
		return w, nil
	}
	if err != sql.ErrNoRows {
		return w, err
	}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO wallets (user_id, balance) VALUES (?, 0)",
		userID); err != nil && !strings.Contains(strings.ToLower(err.Error()), "1062") {
		return w, err
	}
	return r.getByUser(ctx, userID)
}

func (r *WalletRepo) getByUser(ctx context.Context, userID uint64) (model.Wallet, error) {
	var w model.Wallet
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id=?",
		userID).Scan(&w.ID, &w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

// GetForUpdateTx locks and returns a wallet by user id.  The row lock is
// held until the surrounding transaction finishes, serializing every
// concurrent balance change for that wallet.  A user without a wallet
// gets sql.ErrNoRows; callers that can tolerate that ensure the wallet
// exists with GetOrCreate before starting the transaction.
func (r *WalletRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, userID uint64) (model.Wallet, error) {
	var w model.Wallet
	err := tx.QueryRowContext(ctx,
		"SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id=? FOR UPDATE",
		userID).Scan(&w.ID, &w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

// DebitTx applies a debit to a locked wallet and appends the matching
// ledger row.  The amount check happens in memory via Wallet.Debit before
// any write, so an insufficient balance leaves both tables untouched.  The
// ledger row stores the debit as a negative amount together with the
// post-debit balance.  It returns the new ledger row's id.
func (r *WalletRepo) DebitTx(ctx context.Context, tx *sql.Tx, w *model.Wallet, amount int64, txType string, counterpartyWalletID *uint64) (uint64, error) {
	if err := w.Debit(amount); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE wallets SET balance=? WHERE id=?",
		w.Balance, w.ID); err != nil {
		return 0, err
	}
	return r.appendTx(ctx, tx, w.ID, counterpartyWalletID, txType, -amount, w.Balance, nil)
}

// CreditTx applies a credit to a locked wallet and appends the matching
// ledger row.  paymentID links CHARGE credits back to the gateway payment
// that funded them; settlement credits pass nil.
func (r *WalletRepo) CreditTx(ctx context.Context, tx *sql.Tx, w *model.Wallet, amount int64, txType string, counterpartyWalletID *uint64, paymentID *uint64) (uint64, error) {
	if err := w.Credit(amount); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE wallets SET balance=? WHERE id=?",
		w.Balance, w.ID); err != nil {
		return 0, err
	}
	return r.appendTx(ctx, tx, w.ID, counterpartyWalletID, txType, amount, w.Balance, paymentID)
}

func (r *WalletRepo) appendTx(ctx context.Context, tx *sql.Tx, walletID uint64, counterpartyWalletID *uint64, txType string, amount, balanceAfter int64, paymentID *uint64) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO wallet_transactions (wallet_id, counterparty_wallet_id, type, amount, balance_after, status, payment_id) VALUES (?,?,?,?,?,'DONE',?)",
		walletID, counterpartyWalletID, txType, amount, balanceAfter, paymentID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// HistoryFilter selects which ledger rows History returns.
const (
	FilterAll         = "ALL"
	FilterCharge      = "CHARGE"
	FilterTransaction = "TRANSACTION"
)

// HistoryEntry is one ledger row enriched with the schedule and club the
// transfer settled, when applicable.  CHARGE rows carry no schedule.
type HistoryEntry struct {
	Transaction   model.WalletTransaction
	ScheduleTitle *string
	ClubName      *string
	ClubImage     *string
}

// History returns a page of the user's ledger, newest first.  filter
// narrows by transaction type: CHARGE for top-ups, TRANSACTION for
// settlement transfers, ALL for both.  page is zero-based.
func (r *WalletRepo) History(ctx context.Context, userID uint64, filter string, page, size int) (balance int64, entries []HistoryEntry, err error) {
	var walletID uint64
	err = r.db.QueryRowContext(ctx,
		"SELECT id, balance FROM wallets WHERE user_id=?",
		userID).Scan(&walletID, &balance)
	if err == sql.ErrNoRows {
		return 0, []HistoryEntry{}, nil
	}
	if err != nil {
		return 0, nil, err
	}

	query := `SELECT wt.id, wt.wallet_id, wt.counterparty_wallet_id, wt.type, wt.amount,
		wt.balance_after, wt.status, wt.payment_id, wt.created_at, s.title, c.name, c.image_url
		FROM wallet_transactions wt
		LEFT JOIN transfers t ON t.wallet_transaction_id = wt.id
		LEFT JOIN user_settlements us ON us.id = t.user_settlement_id
		LEFT JOIN settlements st ON st.id = us.settlement_id
		LEFT JOIN schedules s ON s.id = st.schedule_id
		LEFT JOIN clubs c ON c.id = s.club_id
		WHERE wt.wallet_id=?`
	args := []any{walletID}
	switch filter {
	case FilterCharge:
		query += " AND wt.type=?"
		args = append(args, model.TxCharge)
	case FilterTransaction:
		query += " AND wt.type=?"
		args = append(args, model.TxTransfer)
	}
	query += " ORDER BY wt.created_at DESC, wt.id DESC LIMIT ? OFFSET ?"
	args = append(args, size, page*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	entries = make([]HistoryEntry, 0, size)
	for rows.Next() {
		var e HistoryEntry
		var counterparty sql.NullInt64
		var paymentID sql.NullInt64
		var title, club, image sql.NullString
		if err := rows.Scan(&e.Transaction.ID, &e.Transaction.WalletID, &counterparty,
			&e.Transaction.Type, &e.Transaction.Amount, &e.Transaction.BalanceAfter,
			&e.Transaction.Status, &paymentID, &e.Transaction.CreatedAt, &title, &club, &image); err != nil {
			return 0, nil, err
		}
		if counterparty.Valid {
			v := uint64(counterparty.Int64)
			e.Transaction.CounterpartyWalletID = &v
		}
		if paymentID.Valid {
			v := uint64(paymentID.Int64)
			e.Transaction.PaymentID = &v
		}
		if title.Valid {
			s := title.String
			e.ScheduleTitle = &s
		}
		if club.Valid {
			s := club.String
			e.ClubName = &s
		}
		if image.Valid {
			s := image.String
			e.ClubImage = &s
		}
		entries = append(entries, e)
	}
	return balance, entries, rows.Err()
}
