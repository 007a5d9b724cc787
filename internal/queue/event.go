// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the notification consumer.
package queue

// Queue names.  Both queues are declared durable so events survive broker
// restarts.
const (
	SettlementRequestedQueue = "settlement.requested"
	SettlementCompletedQueue = "settlement.completed"
)

// SettlementRequestedEvent is published when a leader requests a settlement.
// It carries enough information for downstream consumers to notify each
// debtor without querying the primary database.
type SettlementRequestedEvent struct {
	SettlementID  uint64   `json:"settlement_id"`
	ScheduleID    uint64   `json:"schedule_id"`
	ScheduleTitle string   `json:"schedule_title"`
	ClubID        uint64   `json:"club_id"`
	ReceiverID    uint64   `json:"receiver_id"`
	AmountEach    int64    `json:"amount_each"`
	TotalAmount   int64    `json:"total_amount"`
	DebtorIDs     []uint64 `json:"debtor_ids"`
	RequestedAt   string   `json:"requested_at"`
}

// SettlementCompletedEvent is published once the final share of a
// settlement is paid, so the receiver can be notified that the full
// amount has arrived in their wallet.
type SettlementCompletedEvent struct {
	SettlementID  uint64 `json:"settlement_id"`
	ScheduleID    uint64 `json:"schedule_id"`
	ScheduleTitle string `json:"schedule_title"`
	ReceiverID    uint64 `json:"receiver_id"`
	TotalAmount   int64  `json:"total_amount"`
	CompletedAt   string `json:"completed_at"`
}
