package model

import "time"

// Payment status values mirror the gateway's lifecycle.  READY rows are
// pending local records awaiting gateway confirmation; DONE rows are
// confirmed and have credited a wallet exactly once.
const (
	PaymentReady    = "READY"
	PaymentDone     = "DONE"
	PaymentCanceled = "CANCELED"
	PaymentExpired  = "EXPIRED"
)

// Payment records an external gateway charge used to top up a wallet.
// OrderID is generated locally before redirecting the user to the gateway;
// PaymentKey is assigned by the gateway and unique once confirmed.  The
// pair is the idempotency anchor for confirm retries.
type Payment struct {
	ID         uint64     // payments.id
	UserID     uint64     // payments.user_id
	PaymentKey *string    // payments.payment_key (nullable until confirmed, unique)
	OrderID    string     // payments.order_id (unique)
	Amount     int64      // payments.amount (KRW)
	Method     string     // payments.method (e.g. "CARD")
	Status     string     // payments.status
	ApprovedAt *time.Time // payments.approved_at (nullable)
	CreatedAt  time.Time  // payments.created_at
}
