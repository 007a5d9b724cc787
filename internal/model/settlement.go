package model

import "time"

// Settlement aggregate status.  REQUESTED until the first participant pays,
// IN_PROGRESS while payments are outstanding, COMPLETED once every
// participant share is PAID.  COMPLETED is terminal.
const (
	SettlementRequested  = "REQUESTED"
	SettlementInProgress = "IN_PROGRESS"
	SettlementCompleted  = "COMPLETED"
)

// Per-participant share status.  PAID is terminal.
const (
	ShareRequested = "REQUESTED"
	SharePaid      = "PAID"
)

// Settlement is the aggregate request to split a schedule's cost among its
// participants.  The receiver is the schedule leader; TotalAmount is the
// sum the receiver collects once every share is paid, i.e. AmountEach
// multiplied by the number of non-leader participants.
type Settlement struct {
	ID          uint64     // settlements.id
	ScheduleID  uint64     // settlements.schedule_id (unique)
	ReceiverID  uint64     // settlements.receiver_id (the leader's user id)
	AmountEach  int64      // settlements.amount_each (= schedule cost)
	TotalAmount int64      // settlements.total_amount
	TotalStatus string     // settlements.total_status
	CompletedAt *time.Time // settlements.completed_at (set exactly once)
	CreatedAt   time.Time  // settlements.created_at
}

// UserSettlement is one non-leader participant's obligation within a
// settlement.  The leader never owes a share.
type UserSettlement struct {
	ID           uint64     // user_settlements.id
	SettlementID uint64     // user_settlements.settlement_id
	UserID       uint64     // user_settlements.user_id
	Amount       int64      // user_settlements.amount
	Status       string     // user_settlements.status (REQUESTED|PAID)
	CompletedAt  *time.Time // user_settlements.completed_at
	CreatedAt    time.Time  // user_settlements.created_at
}

// Transfer links the debit-side wallet transaction to the user settlement
// it pays off.  One-to-one with a settlement payment event.
type Transfer struct {
	ID                  uint64    // transfers.id
	WalletTransactionID uint64    // transfers.wallet_transaction_id
	UserSettlementID    uint64    // transfers.user_settlement_id (unique)
	CreatedAt           time.Time // transfers.created_at
}
