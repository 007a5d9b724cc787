package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", New(KindNotFound, "SETTLEMENT_NOT_FOUND", "settlement not found"), http.StatusNotFound},
		{"permission denied", New(KindPermissionDenied, "NOT_LEADER", "only the leader may request a settlement"), http.StatusForbidden},
		{"invalid state", New(KindInvalidState, "SETTLEMENT_EXISTS", "settlement already requested"), http.StatusConflict},
		{"insufficient funds", New(KindInsufficientFunds, "INSUFFICIENT_FUNDS", "wallet balance too low"), http.StatusPaymentRequired},
		{"payment mismatch", New(KindPaymentMismatch, "PAYMENT_MISMATCH", "amount does not match"), http.StatusBadRequest},
		{"gateway unavailable", Wrap(errors.New("dial tcp: timeout"), KindGatewayUnavailable, "GATEWAY_UNAVAILABLE", "payment gateway unreachable"), http.StatusBadGateway},
		{"invalid input", New(KindInvalidInput, "INVALID_BODY", "invalid request body"), http.StatusBadRequest},
		{"plain error maps to 500", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped apperr keeps its status", fmt.Errorf("outer: %w", New(KindNotFound, "CLUB_NOT_FOUND", "club not found")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFrom(t *testing.T) {
	orig := New(KindInvalidState, "SCHEDULE_CLOSED", "schedule already closed")
	if got := From(fmt.Errorf("ctx: %w", orig)); got != orig {
		t.Errorf("From() should unwrap to the original *Error")
	}

	plain := errors.New("db down")
	got := From(plain)
	if got.Kind != KindInternal || got.Code != "INTERNAL_ERROR" {
		t.Errorf("From(plain) = %+v, want internal error", got)
	}
	if !errors.Is(got, plain) {
		t.Errorf("From(plain) should wrap the cause")
	}
}

func TestErrorString(t *testing.T) {
	e := Wrap(errors.New("no rows"), KindNotFound, "WALLET_NOT_FOUND", "wallet not found")
	want := "WALLET_NOT_FOUND: wallet not found: no rows"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}
