package models

import "fmt"

// Participant is the settlement-side record of someone who appears in splits.
// Participants are created lazily the first time a split names them.
type Participant struct {
	// ID is the caller-chosen participant identifier (e.g., "alice").
	ID string `json:"id"`

	// Name is the display name. Defaults to "User <id>".
	Name string `json:"name"`

	// TotalContributions is the sum of the participant's current contributions
	// across all splits. A replaced contribution only counts once.
	TotalContributions int64 `json:"totalContributions"`

	// History lists completed splits in completion order.
	History []HistoryEntry `json:"history"`
}

// HistoryEntry records one completed split in a participant's history.
type HistoryEntry struct {
	SplitID     string `json:"splitId"`
	Description string `json:"description"`
	CompletedAt int64  `json:"completedAt"`
}

// NewParticipant returns a participant with the default display name.
func NewParticipant(id string) *Participant {
	return &Participant{
		ID:      id,
		Name:    fmt.Sprintf("User %s", id),
		History: []HistoryEntry{},
	}
}

// Clone returns a deep copy of the participant.
func (p *Participant) Clone() *Participant {
	cp := *p
	cp.History = append([]HistoryEntry{}, p.History...)
	return &cp
}
