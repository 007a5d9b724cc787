package settlement

import (
	"reflect"
	"testing"

	"github.com/GoormOnlyOne/onlyone-server/internal/model"
)

func TestTrivial(t *testing.T) {
	tests := []struct {
		name             string
		cost             int64
		participantCount int
		want             bool
	}{
		{"free schedule", 0, 5, true},
		{"leader alone", 30000, 1, true},
		{"no participants", 30000, 0, true},
		{"normal schedule", 30000, 3, false},
		{"two participants", 10000, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Trivial(tt.cost, tt.participantCount); got != tt.want {
				t.Errorf("Trivial(%d, %d) = %v, want %v", tt.cost, tt.participantCount, got, tt.want)
			}
		})
	}
}

func TestTotalAmount(t *testing.T) {
	tests := []struct {
		name             string
		cost             int64
		participantCount int
		want             int64
	}{
		// 3 participants at cost 30: the two non-leaders owe 30 each.
		{"three participants", 30, 3, 60},
		{"two participants", 10000, 2, 10000},
		{"five participants", 12000, 5, 48000},
		{"free schedule", 0, 4, 0},
		{"leader alone", 30000, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalAmount(tt.cost, tt.participantCount); got != tt.want {
				t.Errorf("TotalAmount(%d, %d) = %d, want %d", tt.cost, tt.participantCount, got, tt.want)
			}
		})
	}
}

// The total charged across all shares must equal TotalAmount: cost times
// (participantCount - 1), the leader excluded.
func TestDebtorsMatchesTotal(t *testing.T) {
	participants := []uint64{7, 3, 11, 5}
	const leaderID = 3
	const cost = int64(30000)

	debtors := Debtors(participants, leaderID)
	if want := []uint64{7, 11, 5}; !reflect.DeepEqual(debtors, want) {
		t.Fatalf("Debtors() = %v, want %v", debtors, want)
	}
	charged := cost * int64(len(debtors))
	if total := TotalAmount(cost, len(participants)); charged != total {
		t.Errorf("sum of shares %d != TotalAmount %d", charged, total)
	}
}

func TestNextTotalStatus(t *testing.T) {
	tests := []struct {
		name  string
		paid  int
		total int
		want  string
	}{
		{"nothing paid", 0, 2, model.SettlementRequested},
		{"first payment", 1, 2, model.SettlementInProgress},
		{"all paid", 2, 2, model.SettlementCompleted},
		{"already complete stays complete", 3, 2, model.SettlementCompleted},
		{"no shares", 0, 0, model.SettlementCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextTotalStatus(tt.paid, tt.total); got != tt.want {
				t.Errorf("NextTotalStatus(%d, %d) = %s, want %s", tt.paid, tt.total, got, tt.want)
			}
		})
	}
}
