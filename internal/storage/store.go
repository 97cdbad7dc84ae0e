// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/pledge/internal/models"
)

// CommitmentStore defines persistence for commitments.
// Implementations return errors wrapping models.ErrNotFound for unknown IDs.
type CommitmentStore interface {
	// CreateCommitment persists a new commitment. The ID must be set.
	CreateCommitment(ctx context.Context, c *models.Commitment) error

	// GetCommitment retrieves a commitment by its ID.
	GetCommitment(ctx context.Context, id string) (*models.Commitment, error)

	// UpdateCommitment overwrites an existing commitment.
	UpdateCommitment(ctx context.Context, c *models.Commitment) error

	// ListCommitments returns all commitments in creation order.
	ListCommitments(ctx context.Context) ([]*models.Commitment, error)

	// ResetCommitments deletes every commitment.
	ResetCommitments(ctx context.Context) error
}

// SplitStore defines persistence for splits, their contributions and the
// participant registry.
// Implementations return errors wrapping models.ErrNotFound for unknown IDs.
type SplitStore interface {
	// CreateSplit persists a new split and registers any participant that is
	// not yet known.
	CreateSplit(ctx context.Context, split *models.Split) error

	// GetSplit retrieves a split by its ID, including its contributions.
	GetSplit(ctx context.Context, id string) (*models.Split, error)

	// ListSplitsByParticipant returns the splits naming participantID,
	// newest first.
	ListSplitsByParticipant(ctx context.Context, participantID string) ([]*models.Split, error)

	// RecordContribution inserts or replaces the participant's contribution to
	// the split and adds delta to the participant's cumulative total. A non-zero
	// completedAt also completes the split as CompleteSplit does. All of it
	// happens atomically.
	RecordContribution(ctx context.Context, splitID string, c *models.Contribution, delta, completedAt int64) error

	// CompleteSplit marks the split completed at completedAt and appends a
	// history entry to each of its participants, atomically.
	CompleteSplit(ctx context.Context, splitID string, completedAt int64) error

	// GetParticipant retrieves a participant record with its history.
	GetParticipant(ctx context.Context, id string) (*models.Participant, error)

	// ResetSplits deletes every split, contribution and participant.
	ResetSplits(ctx context.Context) error
}

// Store is a complete storage backend.
// This abstraction allows swapping storage backends (memory, SQLite, etc.)
// without changing the commitment and settlement stores.
type Store interface {
	CommitmentStore
	SplitStore

	// Close releases any resources held by the store.
	Close() error
}
