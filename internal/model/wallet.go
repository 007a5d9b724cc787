package model

import (
	"errors"
	"fmt"
	"time"
)

// Wallet transaction types.  CHARGE records a gateway top-up crediting the
// wallet; TRANSFER records either side of a settlement payment.
const (
	TxCharge   = "CHARGE"
	TxTransfer = "TRANSFER"
)

// ErrInsufficientFunds is returned by Debit when the balance cannot cover
// the requested amount.  The balance is left untouched; over-debits are
// rejected, never clamped.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidAmount is returned when a debit or credit amount is not a
// positive number.
var ErrInvalidAmount = errors.New("amount must be positive")

// Wallet is a user's internal balance.  The balance is mutated only through
// Debit and Credit while the caller holds the wallet's row lock, so the
// invariant balance >= 0 holds at all times.
type Wallet struct {
	ID        uint64    // wallets.id
	UserID    uint64    // wallets.user_id (unique)
	Balance   int64     // wallets.balance (KRW, never negative)
	CreatedAt time.Time // wallets.created_at
	UpdatedAt time.Time // wallets.updated_at
}

// Debit subtracts amount from the balance.  It fails with
// ErrInsufficientFunds when the balance is lower than amount and with
// ErrInvalidAmount when amount is not positive.  On failure the balance is
// unchanged.
func (w *Wallet) Debit(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit %d: %w", amount, ErrInvalidAmount)
	}
	if w.Balance < amount {
		return fmt.Errorf("debit %d from balance %d: %w", amount, w.Balance, ErrInsufficientFunds)
	}
	w.Balance -= amount
	return nil
}

// Credit adds amount to the balance.  It fails only when amount is not
// positive; a credit can never be rejected for balance reasons.
func (w *Wallet) Credit(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit %d: %w", amount, ErrInvalidAmount)
	}
	w.Balance += amount
	return nil
}

// WalletTransaction is an immutable ledger entry recording one balance
// change.  Every successful Debit/Credit appends exactly one row carrying
// the post-mutation balance.  Rows are append-only once committed.
type WalletTransaction struct {
	ID                   uint64    // wallet_transactions.id
	WalletID             uint64    // wallet_transactions.wallet_id
	CounterpartyWalletID *uint64   // wallet_transactions.counterparty_wallet_id (nullable)
	Type                 string    // wallet_transactions.type (CHARGE|TRANSFER)
	Amount               int64     // signed: negative for debits, positive for credits
	BalanceAfter         int64     // wallet_transactions.balance_after
	Status               string    // wallet_transactions.status
	PaymentID            *uint64   // wallet_transactions.payment_id (nullable)
	CreatedAt            time.Time // wallet_transactions.created_at
}
