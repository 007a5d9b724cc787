package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GoormOnlyOne/onlyone-server/internal/apperr"
)

func TestConfirmSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/confirm" {
			t.Errorf("path = %s, want /v1/payments/confirm", r.URL.Path)
		}
		if r.Header.Get("Authorization") == "" {
			t.Error("missing Authorization header")
		}
		var body struct {
			PaymentKey string `json:"paymentKey"`
			OrderID    string `json:"orderId"`
			Amount     int64  `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(Confirmation{
			PaymentKey:  body.PaymentKey,
			OrderID:     body.OrderID,
			Method:      "CARD",
			Status:      "DONE",
			TotalAmount: body.Amount,
			ApprovedAt:  "2026-02-01T12:00:00+09:00",
			Card:        &Card{Company: "Shinhan", Number: "433012******1234"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test_sk", 5*time.Second)
	conf, err := c.Confirm(context.Background(), "pay_abc", "order_123", 30000)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if conf.Status != "DONE" || conf.TotalAmount != 30000 || conf.OrderID != "order_123" {
		t.Errorf("unexpected confirmation: %+v", conf)
	}
	if conf.Card == nil || conf.Card.Company != "Shinhan" {
		t.Errorf("card not parsed: %+v", conf.Card)
	}
}

func TestConfirmServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test_sk", 5*time.Second)
	_, err := c.Confirm(context.Background(), "pay_abc", "order_123", 30000)
	if err == nil {
		t.Fatal("expected error on 502")
	}
	if e := apperr.From(err); e.Kind != apperr.KindGatewayUnavailable {
		t.Errorf("kind = %v, want KindGatewayUnavailable", e.Kind)
	}
}

func TestConfirmRejectionIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "INVALID_AMOUNT",
			"message": "amount does not match the order",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test_sk", 5*time.Second)
	_, err := c.Confirm(context.Background(), "pay_abc", "order_123", 999)
	if err == nil {
		t.Fatal("expected error on 400")
	}
	e := apperr.From(err)
	if e.Kind != apperr.KindPaymentMismatch {
		t.Errorf("kind = %v, want KindPaymentMismatch", e.Kind)
	}
	if e.Message != "amount does not match the order" {
		t.Errorf("message = %q, gateway message should be surfaced", e.Message)
	}
}

func TestConfirmTimeoutIsGatewayUnavailable(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer func() {
		close(blocked)
		srv.Close()
	}()

	c := NewClient(srv.URL, "test_sk", 50*time.Millisecond)
	start := time.Now()
	_, err := c.Confirm(context.Background(), "pay_abc", "order_123", 30000)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if e := apperr.From(err); e.Kind != apperr.KindGatewayUnavailable {
		t.Errorf("kind = %v, want KindGatewayUnavailable", e.Kind)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("call was not bounded by the client timeout (took %s)", elapsed)
	}
}
