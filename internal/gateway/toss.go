// Package gateway implements the client for the external Toss-style payment
// confirmation API.  The adapter only talks HTTP; it never touches the
// wallet ledger.  Callers must obtain an explicit confirmation before
// crediting anything, so an ambiguous outcome (timeout, 5xx) leaves local
// state untouched and can be retried with the same payment key.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/GoormOnlyOne/onlyone-server/internal/apperr"
)

// Confirmation is the gateway's response to a successful confirm call.
type Confirmation struct {
	PaymentKey  string `json:"paymentKey"`
	OrderID     string `json:"orderId"`
	Method      string `json:"method"`
	Status      string `json:"status"`
	TotalAmount int64  `json:"totalAmount"`
	ApprovedAt  string `json:"approvedAt"`
	Card        *Card  `json:"card,omitempty"`
}

// Card carries the card details the gateway attaches to card payments.
type Card struct {
	Company string `json:"company"`
	Number  string `json:"number"`
}

// gatewayError is the error body the gateway returns on 4xx responses.
type gatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client calls the payment gateway's confirm endpoint.  The embedded
// http.Client carries the bounded timeout; a call that exceeds it fails
// with GatewayUnavailable and no local mutation may have occurred.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewClient constructs a gateway client.  timeout bounds every confirm
// call end to end.
func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

// Confirm asks the gateway to finalize the charge identified by paymentKey.
// Transport failures, timeouts and gateway 5xx responses map to
// GatewayUnavailable (retryable by the caller with the same key); a 4xx
// rejection maps to PaymentMismatch (terminal).  The returned confirmation
// must still be checked against the locally stored order before any wallet
// credit.
func (c *Client) Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (*Confirmation, error) {
	body, err := json.Marshal(map[string]any{
		"paymentKey": paymentKey,
		"orderId":    orderID,
		"amount":     amount,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments/confirm", bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.secretKey+":")))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindGatewayUnavailable, "GATEWAY_UNAVAILABLE", "payment gateway unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindGatewayUnavailable, "GATEWAY_UNAVAILABLE", "payment gateway response unreadable")
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, apperr.New(apperr.KindGatewayUnavailable, "GATEWAY_UNAVAILABLE",
			fmt.Sprintf("payment gateway error (%d)", resp.StatusCode))
	case resp.StatusCode >= 400:
		var ge gatewayError
		if err := json.Unmarshal(raw, &ge); err != nil || ge.Message == "" {
			ge.Message = fmt.Sprintf("payment rejected (%d)", resp.StatusCode)
		}
		return nil, apperr.New(apperr.KindPaymentMismatch, "PAYMENT_REJECTED", ge.Message)
	}

	var conf Confirmation
	if err := json.Unmarshal(raw, &conf); err != nil {
		return nil, apperr.Wrap(err, apperr.KindGatewayUnavailable, "GATEWAY_UNAVAILABLE", "payment gateway response malformed")
	}
	return &conf, nil
}
