// Package memory provides an in-process implementation of storage.Store.
// Records are copied on the way in and out, so callers never share state with
// the store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mmynk/pledge/internal/models"
	"github.com/mmynk/pledge/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store with maps.
type Store struct {
	mu sync.RWMutex

	commitments     map[string]*models.Commitment
	commitmentOrder []string

	splits       map[string]*models.Split
	splitOrder   []string
	participants map[string]*models.Participant
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		commitments:  make(map[string]*models.Commitment),
		splits:       make(map[string]*models.Split),
		participants: make(map[string]*models.Participant),
	}
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// CreateCommitment stores a copy of c.
func (s *Store) CreateCommitment(ctx context.Context, c *models.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.commitments[c.ID]; exists {
		return fmt.Errorf("commitment already exists: %s", c.ID)
	}
	s.commitments[c.ID] = c.Clone()
	s.commitmentOrder = append(s.commitmentOrder, c.ID)
	return nil
}

// GetCommitment returns a copy of the stored commitment.
func (s *Store) GetCommitment(ctx context.Context, id string) (*models.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.commitments[id]
	if !ok {
		return nil, fmt.Errorf("commitment %s: %w", id, models.ErrNotFound)
	}
	return c.Clone(), nil
}

// UpdateCommitment replaces the stored commitment.
func (s *Store) UpdateCommitment(ctx context.Context, c *models.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.commitments[c.ID]; !ok {
		return fmt.Errorf("commitment %s: %w", c.ID, models.ErrNotFound)
	}
	s.commitments[c.ID] = c.Clone()
	return nil
}

// ListCommitments returns copies in insertion order.
func (s *Store) ListCommitments(ctx context.Context) ([]*models.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Commitment, 0, len(s.commitmentOrder))
	for _, id := range s.commitmentOrder {
		out = append(out, s.commitments[id].Clone())
	}
	return out, nil
}

// ResetCommitments drops all commitments.
func (s *Store) ResetCommitments(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commitments = make(map[string]*models.Commitment)
	s.commitmentOrder = nil
	return nil
}

// CreateSplit stores a copy of split and lazily registers its participants.
func (s *Store) CreateSplit(ctx context.Context, split *models.Split) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.splits[split.ID]; exists {
		return fmt.Errorf("split already exists: %s", split.ID)
	}
	s.splits[split.ID] = split.Clone()
	s.splitOrder = append(s.splitOrder, split.ID)

	for _, id := range split.ParticipantIDs {
		if _, ok := s.participants[id]; !ok {
			s.participants[id] = models.NewParticipant(id)
		}
	}
	return nil
}

// GetSplit returns a deep copy of the stored split.
func (s *Store) GetSplit(ctx context.Context, id string) (*models.Split, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	split, ok := s.splits[id]
	if !ok {
		return nil, fmt.Errorf("split %s: %w", id, models.ErrNotFound)
	}
	return split.Clone(), nil
}

// ListSplitsByParticipant returns the participant's splits, newest first.
// Splits created in the same millisecond keep reverse insertion order.
func (s *Store) ListSplitsByParticipant(ctx context.Context, participantID string) ([]*models.Split, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Split
	for i := len(s.splitOrder) - 1; i >= 0; i-- {
		split := s.splits[s.splitOrder[i]]
		if split.HasParticipant(participantID) {
			out = append(out, split.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out, nil
}

// RecordContribution upserts the contribution and adjusts the participant
// total, completing the split when completedAt is non-zero.
func (s *Store) RecordContribution(ctx context.Context, splitID string, c *models.Contribution, delta, completedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	split, ok := s.splits[splitID]
	if !ok {
		return fmt.Errorf("split %s: %w", splitID, models.ErrNotFound)
	}
	if !split.HasParticipant(c.ParticipantID) {
		return fmt.Errorf("split %s: %w", splitID, models.ErrNotAParticipant)
	}
	if split.Contributions == nil {
		split.Contributions = make(map[string]*models.Contribution)
	}
	cp := *c
	split.Contributions[c.ParticipantID] = &cp

	p, ok := s.participants[c.ParticipantID]
	if !ok {
		p = models.NewParticipant(c.ParticipantID)
		s.participants[c.ParticipantID] = p
	}
	p.TotalContributions += delta

	if completedAt != 0 {
		s.completeSplit(split, completedAt)
	}
	return nil
}

// CompleteSplit marks the split completed and appends participant history.
func (s *Store) CompleteSplit(ctx context.Context, splitID string, completedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	split, ok := s.splits[splitID]
	if !ok {
		return fmt.Errorf("split %s: %w", splitID, models.ErrNotFound)
	}
	s.completeSplit(split, completedAt)
	return nil
}

func (s *Store) completeSplit(split *models.Split, completedAt int64) {
	split.Status = models.SplitCompleted
	split.CompletedAt = completedAt

	for _, id := range split.ParticipantIDs {
		p, ok := s.participants[id]
		if !ok {
			p = models.NewParticipant(id)
			s.participants[id] = p
		}
		p.History = append(p.History, models.HistoryEntry{
			SplitID:     split.ID,
			Description: split.Description,
			CompletedAt: completedAt,
		})
	}
}

// GetParticipant returns a copy of the participant record.
func (s *Store) GetParticipant(ctx context.Context, id string) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.participants[id]
	if !ok {
		return nil, fmt.Errorf("participant %s: %w", id, models.ErrNotFound)
	}
	return p.Clone(), nil
}

// ResetSplits drops all splits and participants.
func (s *Store) ResetSplits(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.splits = make(map[string]*models.Split)
	s.splitOrder = nil
	s.participants = make(map[string]*models.Participant)
	return nil
}
