package calculator

import (
	"math"
	"testing"
)

func sumShares(shares map[string]int64) int64 {
	var sum int64
	for _, v := range shares {
		sum += v
	}
	return sum
}

func TestEqualShares(t *testing.T) {
	tests := []struct {
		name         string
		total        int64
		participants []string
		wantErr      bool
		want         map[string]int64
	}{
		{
			name:         "divides evenly",
			total:        12000,
			participants: []string{"alice", "bob", "charlie", "diana"},
			want:         map[string]int64{"alice": 3000, "bob": 3000, "charlie": 3000, "diana": 3000},
		},
		{
			name:         "remainder goes to first participant",
			total:        10000,
			participants: []string{"alice", "bob", "charlie"},
			want:         map[string]int64{"alice": 3334, "bob": 3333, "charlie": 3333},
		},
		{
			name:         "total smaller than participant count",
			total:        2,
			participants: []string{"alice", "bob", "charlie"},
			want:         map[string]int64{"alice": 2, "bob": 0, "charlie": 0},
		},
		{
			name:         "single participant",
			total:        999,
			participants: []string{"alice"},
			want:         map[string]int64{"alice": 999},
		},
		{
			name:         "no participants should error",
			total:        100,
			participants: []string{},
			wantErr:      true,
		},
		{
			name:         "zero total should error",
			total:        0,
			participants: []string{"alice"},
			wantErr:      true,
		},
		{
			name:         "duplicate participants should error",
			total:        100,
			participants: []string{"alice", "alice"},
			wantErr:      true,
		},
		{
			name:         "blank participant should error",
			total:        100,
			participants: []string{"alice", "  "},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := EqualShares(tt.total, tt.participants)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EqualShares() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			for p, want := range tt.want {
				if shares[p] != want {
					t.Errorf("share for %s = %d, want %d", p, shares[p], want)
				}
			}
			if sum := sumShares(shares); sum != tt.total {
				t.Errorf("shares sum to %d, want %d", sum, tt.total)
			}
		})
	}
}

func TestCustomShares(t *testing.T) {
	participants := []string{"alice", "bob"}

	tests := []struct {
		name    string
		amounts map[string]int64
		wantErr bool
	}{
		{"exact table", map[string]int64{"alice": 7000, "bob": 5000}, false},
		{"zero share allowed", map[string]int64{"alice": 12000, "bob": 0}, false},
		{"sum too low", map[string]int64{"alice": 7000, "bob": 4000}, true},
		{"missing participant", map[string]int64{"alice": 12000}, true},
		{"unknown participant", map[string]int64{"alice": 6000, "mallory": 6000}, true},
		{"negative amount", map[string]int64{"alice": 13000, "bob": -1000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := CustomShares(12000, participants, tt.amounts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CustomShares() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && sumShares(shares) != 12000 {
				t.Errorf("shares sum to %d, want 12000", sumShares(shares))
			}
		})
	}
}

func TestCustomSharesOverflow(t *testing.T) {
	// 2*MaxInt64 + 12002 wraps to 12000.
	amounts := map[string]int64{"alice": math.MaxInt64, "bob": math.MaxInt64, "charlie": 12002}
	if _, err := CustomShares(12000, []string{"alice", "bob", "charlie"}, amounts); err == nil {
		t.Fatal("CustomShares() accepted a table whose sum overflows")
	}
}

func TestTally(t *testing.T) {
	t.Run("partial funding", func(t *testing.T) {
		tally := NewTally(map[string]int64{"alice": 3000, "bob": 3000})
		if tally.Count != 2 || tally.TotalContributed != 6000 {
			t.Fatalf("unexpected tally %+v", tally)
		}
		if tally.Remaining(12000) != 6000 {
			t.Errorf("Remaining = %d, want 6000", tally.Remaining(12000))
		}
		if tally.Complete(12000, 4) {
			t.Error("expected incomplete")
		}
	})

	t.Run("sum reached but participant missing", func(t *testing.T) {
		tally := NewTally(map[string]int64{"alice": 12000})
		if tally.Complete(12000, 2) {
			t.Error("expected incomplete while bob has not contributed")
		}
	})

	t.Run("over contribution completes but does not match", func(t *testing.T) {
		tally := NewTally(map[string]int64{"alice": 7000, "bob": 7000})
		if !tally.Complete(12000, 2) {
			t.Error("expected complete")
		}
		if tally.Matches(12000) {
			t.Error("expected exact match to fail")
		}
		if tally.Remaining(12000) != 0 {
			t.Errorf("Remaining = %d, want 0", tally.Remaining(12000))
		}
	})
	t.Run("sum past int64 saturates", func(t *testing.T) {
		tally := NewTally(map[string]int64{"alice": math.MaxInt64, "bob": 1})
		if !tally.Overflowed || tally.TotalContributed != math.MaxInt64 {
			t.Fatalf("unexpected tally %+v", tally)
		}
		if tally.Remaining(100) != 0 {
			t.Errorf("Remaining = %d, want 0", tally.Remaining(100))
		}
		if tally.Matches(math.MaxInt64) {
			t.Error("expected an overflowed tally never to match")
		}
	})
}
