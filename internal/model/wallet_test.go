package model

import (
	"errors"
	"math/rand"
	"testing"
)

func TestWalletDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     int64
		amount      int64
		wantErr     error
		wantBalance int64
	}{
		{"exact balance", 100, 100, nil, 0},
		{"partial debit", 100, 60, nil, 40},
		{"over-debit rejected", 100, 101, ErrInsufficientFunds, 100},
		{"zero amount rejected", 100, 0, ErrInvalidAmount, 100},
		{"negative amount rejected", 100, -5, ErrInvalidAmount, 100},
		{"empty wallet", 0, 1, ErrInsufficientFunds, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Wallet{Balance: tt.balance}
			err := w.Debit(tt.amount)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Debit(%d) unexpected error: %v", tt.amount, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Debit(%d) error = %v, want %v", tt.amount, err, tt.wantErr)
			}
			if w.Balance != tt.wantBalance {
				t.Errorf("balance after Debit(%d) = %d, want %d", tt.amount, w.Balance, tt.wantBalance)
			}
		})
	}
}

func TestWalletCredit(t *testing.T) {
	w := Wallet{Balance: 10}
	if err := w.Credit(90); err != nil {
		t.Fatalf("Credit(90) unexpected error: %v", err)
	}
	if w.Balance != 100 {
		t.Errorf("balance = %d, want 100", w.Balance)
	}
	if err := w.Credit(0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Credit(0) error = %v, want ErrInvalidAmount", err)
	}
	if err := w.Credit(-1); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Credit(-1) error = %v, want ErrInvalidAmount", err)
	}
}

// A random sequence of debits and credits must never drive the balance
// negative: every over-debit is rejected and leaves the balance unchanged.
func TestWalletBalanceNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for run := 0; run < 50; run++ {
		w := Wallet{Balance: int64(rng.Intn(1000))}
		for op := 0; op < 200; op++ {
			amount := int64(rng.Intn(500)) + 1
			before := w.Balance
			if rng.Intn(2) == 0 {
				if err := w.Debit(amount); err != nil {
					if !errors.Is(err, ErrInsufficientFunds) {
						t.Fatalf("unexpected debit error: %v", err)
					}
					if w.Balance != before {
						t.Fatalf("rejected debit mutated balance: %d -> %d", before, w.Balance)
					}
				}
			} else {
				if err := w.Credit(amount); err != nil {
					t.Fatalf("unexpected credit error: %v", err)
				}
			}
			if w.Balance < 0 {
				t.Fatalf("balance went negative: %d", w.Balance)
			}
		}
	}
}
