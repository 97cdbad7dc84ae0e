package models

// CommitmentState is the lifecycle state of a commitment.
// Transitions are monotonic: active -> revealed.
type CommitmentState string

const (
	CommitmentActive   CommitmentState = "active"
	CommitmentRevealed CommitmentState = "revealed"
)

// DefaultStake is the stake recorded when the caller does not provide one.
const DefaultStake int64 = 100

// Commitment represents a sealed value that may be revealed after its deadline.
type Commitment struct {
	// ID is the unique identifier for the commitment (UUID format).
	ID string

	// Text is the committed value. It is opaque to the store.
	Text string

	// Deadline is the Unix millisecond timestamp before which reveal is refused.
	Deadline int64

	// Stake is a non-negative amount in caller-defined units.
	Stake int64

	// Fingerprint binds (Text, Deadline) at creation time and never changes.
	Fingerprint string

	// Status is active until the first successful reveal.
	Status CommitmentState

	// CreatedAt is the Unix millisecond timestamp when the commitment was created.
	CreatedAt int64

	// RevealedAt is set once, on the first successful reveal. Zero until then.
	RevealedAt int64
}

// Revealed reports whether the commitment has been revealed.
func (c *Commitment) Revealed() bool {
	return c.Status == CommitmentRevealed
}

// Clone returns a copy of the commitment.
func (c *Commitment) Clone() *Commitment {
	cp := *c
	return &cp
}

// CommitmentStatus is the public view of a commitment.
// Text stays empty until the commitment is revealed.
type CommitmentStatus struct {
	ID                string          `json:"id"`
	Text              string          `json:"text,omitempty"`
	Status            CommitmentState `json:"status"`
	Revealed          bool            `json:"revealed"`
	Deadline          int64           `json:"deadline"`
	TimeUntilDeadline int64           `json:"timeUntilDeadline"`
	CanReveal         bool            `json:"canReveal"`
	Fingerprint       string          `json:"fingerprint"`
	Stake             int64           `json:"stake"`
	CreatedAt         int64           `json:"createdAt"`
	RevealedAt        int64           `json:"revealedAt,omitempty"`
}
