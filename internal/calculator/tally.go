package calculator

import "math"

// Tally aggregates the contributions recorded against a split.
type Tally struct {
	TotalContributed int64
	Count            int
	// Overflowed is set when the true sum exceeds math.MaxInt64.
	// TotalContributed then saturates at math.MaxInt64.
	Overflowed bool
}

// NewTally sums contribution amounts keyed by participant.
func NewTally(amounts map[string]int64) Tally {
	var t Tally
	for _, amount := range amounts {
		t.Count++
		if t.Overflowed {
			continue
		}
		if amount > math.MaxInt64-t.TotalContributed {
			t.TotalContributed = math.MaxInt64
			t.Overflowed = true
			continue
		}
		t.TotalContributed += amount
	}
	return t
}

// Remaining returns how much of total is still unfunded, never below zero.
func (t Tally) Remaining(total int64) int64 {
	if t.TotalContributed >= total {
		return 0
	}
	return total - t.TotalContributed
}

// Complete reports whether a split with the given total and participant count
// is fully funded: the sum reaches the total and everyone has contributed.
// Over-contribution still completes.
func (t Tally) Complete(total int64, participants int) bool {
	return t.TotalContributed >= total && t.Count == participants
}

// Matches reports whether the contributions sum to exactly total.
func (t Tally) Matches(total int64) bool {
	return !t.Overflowed && t.TotalContributed == total
}
