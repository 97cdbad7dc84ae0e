package models

// SplitType selects how expected amounts are derived.
type SplitType string

const (
	// SplitEqual divides the total evenly; the remainder goes to the first participant.
	SplitEqual SplitType = "equal"
	// SplitCustom uses a caller-supplied table of expected amounts, if any.
	SplitCustom SplitType = "custom"
)

// SplitState is the lifecycle state of a split.
// Transitions are monotonic: pending -> completed.
type SplitState string

const (
	SplitPending   SplitState = "pending"
	SplitCompleted SplitState = "completed"
)

// Split represents a fixed total to be funded by a set of participants.
type Split struct {
	// ID is the unique identifier for the split (UUID format).
	ID string

	// Description is an opaque label (e.g., "Team dinner").
	Description string

	// TotalAmount is the funding target in minor currency units. Always positive.
	TotalAmount int64

	// ParticipantIDs is fixed at creation. Order is preserved for display.
	ParticipantIDs []string

	// SplitType is equal or custom.
	SplitType SplitType

	// ExpectedAmounts maps participant ID to the amount they are expected to pay.
	// For equal splits it always sums to TotalAmount. Empty for custom splits
	// created without a table.
	ExpectedAmounts map[string]int64

	// Contributions holds at most one contribution per participant.
	Contributions map[string]*Contribution

	// Status is pending until the completion condition holds.
	Status SplitState

	// CreatedAt is the Unix millisecond timestamp when the split was created.
	CreatedAt int64

	// CompletedAt is set when the split completes. Zero until then.
	CompletedAt int64
}

// HasParticipant reports whether id is one of the split's participants.
func (s *Split) HasParticipant(id string) bool {
	for _, p := range s.ParticipantIDs {
		if p == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the split.
func (s *Split) Clone() *Split {
	cp := *s
	cp.ParticipantIDs = append([]string(nil), s.ParticipantIDs...)
	if s.ExpectedAmounts != nil {
		cp.ExpectedAmounts = make(map[string]int64, len(s.ExpectedAmounts))
		for k, v := range s.ExpectedAmounts {
			cp.ExpectedAmounts[k] = v
		}
	}
	cp.Contributions = make(map[string]*Contribution, len(s.Contributions))
	for k, v := range s.Contributions {
		c := *v
		cp.Contributions[k] = &c
	}
	return &cp
}

// Contribution is one participant's recorded amount toward a split.
type Contribution struct {
	// ID is the unique identifier for the contribution (UUID format).
	ID string

	ParticipantID string

	// Amount is in minor currency units. Never negative.
	Amount int64

	// Fingerprint binds (split ID, ParticipantID, Amount).
	Fingerprint string

	// Timestamp is the Unix millisecond time the contribution was recorded.
	Timestamp int64
}

// Receipt is returned to the contributor after a contribution is recorded.
type Receipt struct {
	ContributionID string `json:"contributionId"`
	Fingerprint    string `json:"fingerprint"`
	Timestamp      int64  `json:"timestamp"`
}

// ParticipantFlag is the only per-participant information exposed to others.
type ParticipantFlag struct {
	ID             string `json:"id"`
	HasContributed bool   `json:"hasContributed"`
}

// SplitStatus is the public view of a split. It carries aggregates only.
type SplitStatus struct {
	ID                    string            `json:"id"`
	Description           string            `json:"description"`
	TotalAmount           int64             `json:"totalAmount"`
	TotalContributed      int64             `json:"totalContributed"`
	RemainingAmount       int64             `json:"remainingAmount"`
	ContributionCount     int               `json:"contributionCount"`
	ExpectedContributions int               `json:"expectedContributions"`
	Status                SplitState        `json:"status"`
	IsComplete            bool              `json:"isComplete"`
	Participants          []ParticipantFlag `json:"participants"`
}

// ParticipantView is a participant's private view of a split:
// their own amounts plus contribution flags for everyone else.
type ParticipantView struct {
	SplitID                 string            `json:"splitId"`
	Description             string            `json:"description"`
	TotalAmount             int64             `json:"totalAmount"`
	YourExpectedAmount      *int64            `json:"yourExpectedAmount,omitempty"`
	YourContribution        int64             `json:"yourContribution"`
	HasContributed          bool              `json:"hasContributed"`
	ContributionFingerprint string            `json:"contributionFingerprint,omitempty"`
	OtherParticipants       []ParticipantFlag `json:"otherParticipants"`
}

// IntegrityReport is the result of re-verifying every contribution of a split.
type IntegrityReport struct {
	SplitID           string `json:"splitId"`
	IsValid           bool   `json:"isValid"`
	HashesValid       bool   `json:"hashesValid"`
	TotalMatches      bool   `json:"totalMatches"`
	VerificationCount int    `json:"verificationCount"`
}

// SplitSummary is one entry of a participant's split listing.
type SplitSummary struct {
	ID               string     `json:"id"`
	Description      string     `json:"description"`
	TotalAmount      int64      `json:"totalAmount"`
	Status           SplitState `json:"status"`
	YourContribution int64      `json:"yourContribution"`
	HasContributed   bool       `json:"hasContributed"`
	CreatedAt        int64      `json:"createdAt"`
}
