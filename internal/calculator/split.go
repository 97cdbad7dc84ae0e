package calculator

import (
	"fmt"
	"math"
	"strings"
)

// EqualShares divides total evenly among participants, in minor units.
// Every participant gets floor(total / n); the first participant also gets the
// remainder, so the shares always sum to total exactly.
func EqualShares(total int64, participants []string) (map[string]int64, error) {
	if total <= 0 {
		return nil, fmt.Errorf("total must be positive, got %d", total)
	}
	if err := ValidateParticipants(participants); err != nil {
		return nil, err
	}

	n := int64(len(participants))
	base := total / n
	remainder := total % n

	shares := make(map[string]int64, len(participants))
	for i, p := range participants {
		shares[p] = base
		if i == 0 {
			shares[p] += remainder
		}
	}
	return shares, nil
}

// CustomShares validates a caller-supplied expected-amount table.
// The table must name exactly the participants, hold no negative amounts and
// sum to total.
func CustomShares(total int64, participants []string, amounts map[string]int64) (map[string]int64, error) {
	if total <= 0 {
		return nil, fmt.Errorf("total must be positive, got %d", total)
	}
	if err := ValidateParticipants(participants); err != nil {
		return nil, err
	}
	if len(amounts) != len(participants) {
		return nil, fmt.Errorf("custom amounts name %d participants, split has %d", len(amounts), len(participants))
	}

	shares := make(map[string]int64, len(participants))
	var sum int64
	for _, p := range participants {
		amount, ok := amounts[p]
		if !ok {
			return nil, fmt.Errorf("custom amounts missing participant %q", p)
		}
		if amount < 0 {
			return nil, fmt.Errorf("custom amount for %q is negative", p)
		}
		if amount > math.MaxInt64-sum {
			return nil, fmt.Errorf("custom amounts overflow at participant %q", p)
		}
		shares[p] = amount
		sum += amount
	}
	if sum != total {
		return nil, fmt.Errorf("custom amounts sum to %d, want %d", sum, total)
	}
	return shares, nil
}

// ValidateParticipants checks that the list is non-empty, with no blank or
// duplicate ids.
func ValidateParticipants(participants []string) error {
	if len(participants) == 0 {
		return fmt.Errorf("must have at least one participant")
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("participant id cannot be blank")
		}
		if seen[p] {
			return fmt.Errorf("duplicate participant %q", p)
		}
		seen[p] = true
	}
	return nil
}
