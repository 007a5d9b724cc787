// Package settlement holds the pure share math for splitting a schedule's
// cost across its participants.  The repository layer persists what these
// functions compute; keeping the arithmetic free of SQL keeps it directly
// testable.
package settlement

import "github.com/GoormOnlyOne/onlyone-server/internal/model"

// Trivial reports whether a schedule has nothing to settle: a free meetup
// or one with no participants besides the leader.  A trivial schedule is
// closed immediately and no settlement rows are created.
func Trivial(cost int64, participantCount int) bool {
	return cost <= 0 || participantCount <= 1
}

// TotalAmount returns the sum the receiver collects for a settlement: the
// per-head cost multiplied by the number of non-leader participants.  The
// leader owes no share, so the total equals what is actually charged
// across all user settlements.
func TotalAmount(cost int64, participantCount int) int64 {
	if Trivial(cost, participantCount) {
		return 0
	}
	return cost * int64(participantCount-1)
}

// Debtors returns the participant ids that owe a share, i.e. every
// participant except the leader.  Order is preserved.
func Debtors(participants []uint64, leaderID uint64) []uint64 {
	debtors := make([]uint64, 0, len(participants))
	for _, id := range participants {
		if id != leaderID {
			debtors = append(debtors, id)
		}
	}
	return debtors
}

// NextTotalStatus returns the aggregate settlement status for the given
// share counts.  The progression is REQUESTED until the first share is
// paid, IN_PROGRESS while any share is outstanding, COMPLETED once all are
// paid.  Feeding it an already-complete settlement yields COMPLETED again,
// so racing writers converge on the same terminal state.
func NextTotalStatus(paidShares, totalShares int) string {
	switch {
	case totalShares <= 0:
		return model.SettlementCompleted
	case paidShares >= totalShares:
		return model.SettlementCompleted
	case paidShares > 0:
		return model.SettlementInProgress
	default:
		return model.SettlementRequested
	}
}
