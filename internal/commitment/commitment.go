// Package commitment implements sealed single-party commitments that can be
// revealed once their deadline has passed.
package commitment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/pledge/internal/fingerprint"
	"github.com/mmynk/pledge/internal/metrics"
	"github.com/mmynk/pledge/internal/models"
	"github.com/mmynk/pledge/internal/storage"
)

// Store owns the lifecycle of commitments: create, reveal and query.
// Every operation runs under a single mutex, so a reveal is never observed
// half applied.
type Store struct {
	mu          sync.Mutex
	initialized bool

	repo         storage.CommitmentStore
	fp           *fingerprint.Fingerprinter
	metrics      metrics.Collector
	now          func() time.Time
	defaultStake int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m metrics.Collector) Option {
	return func(s *Store) { s.metrics = m }
}

// WithDefaultStake sets the stake used when Create is called without one.
func WithDefaultStake(stake int64) Option {
	return func(s *Store) { s.defaultStake = stake }
}

// New creates a Store. It must be initialized before commitments are created.
func New(repo storage.CommitmentStore, fp *fingerprint.Fingerprinter, opts ...Option) *Store {
	s := &Store{
		repo:         repo,
		fp:           fp,
		metrics:      metrics.NewNoopCollector(),
		now:          time.Now,
		defaultStake: models.DefaultStake,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize marks the store ready for use.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	slog.Info("Commitment store initialized")
	return nil
}

// Cleanup deletes every commitment.
func (s *Store) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.ResetCommitments(ctx); err != nil {
		return fmt.Errorf("failed to clean up commitments: %w", err)
	}
	slog.Info("Commitment store cleaned up")
	return nil
}

// CreateParams holds the inputs of Create.
type CreateParams struct {
	Text string
	// Deadline is a Unix millisecond timestamp.
	Deadline int64
	// Stake defaults to the store's default stake when nil.
	Stake *int64
}

// Create seals a new commitment and returns its ID.
func (s *Store) Create(ctx context.Context, params CreateParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return "", models.ErrNotInitialized
	}

	stake := s.defaultStake
	if params.Stake != nil {
		stake = *params.Stake
	}
	if stake < 0 {
		return "", fmt.Errorf("stake must not be negative: %w", models.ErrInvalidArgument)
	}

	c := &models.Commitment{
		ID:          uuid.New().String(),
		Text:        params.Text,
		Deadline:    params.Deadline,
		Stake:       stake,
		Fingerprint: s.fp.Commitment(params.Text, params.Deadline),
		Status:      models.CommitmentActive,
		CreatedAt:   s.now().UnixMilli(),
	}
	if err := s.repo.CreateCommitment(ctx, c); err != nil {
		return "", fmt.Errorf("failed to create commitment: %w", err)
	}

	s.metrics.CommitmentCreated()
	slog.Info("Commitment created",
		"commitment_id", c.ID,
		"deadline", time.UnixMilli(c.Deadline).UTC().Format(time.RFC3339),
		"stake", c.Stake,
	)
	return c.ID, nil
}

// Reveal opens a commitment once its deadline has passed. The stored
// fingerprint is checked against the stored text and deadline first.
// Revealing an already revealed commitment returns it unchanged.
func (s *Store) Reveal(ctx context.Context, id string) (*models.Commitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.GetCommitment(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.metrics.RevealRejected(metrics.ReasonNotFound)
		}
		return nil, err
	}

	now := s.now().UnixMilli()
	if now < c.Deadline {
		s.metrics.RevealRejected(metrics.ReasonTooEarly)
		slog.Warn("Reveal refused before deadline", "commitment_id", id)
		return nil, &models.TooEarlyError{ID: id, Deadline: c.Deadline}
	}

	if c.Revealed() {
		slog.Debug("Commitment already revealed", "commitment_id", id)
		return c, nil
	}

	if !fingerprint.Equal(s.fp.Commitment(c.Text, c.Deadline), c.Fingerprint) {
		s.metrics.RevealRejected(metrics.ReasonIntegrity)
		s.metrics.IntegrityViolation("commitment")
		slog.Error("Commitment integrity verification failed", "commitment_id", id)
		return nil, &models.IntegrityError{Kind: "commitment", ID: id}
	}

	c.Status = models.CommitmentRevealed
	c.RevealedAt = now
	if err := s.repo.UpdateCommitment(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to reveal commitment: %w", err)
	}

	s.metrics.CommitmentRevealed()
	slog.Info("Commitment revealed", "commitment_id", id, "stake", c.Stake)
	return c, nil
}

// Status returns the public view of a commitment.
func (s *Store) Status(ctx context.Context, id string) (*models.CommitmentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.GetCommitment(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// List returns the public view of every commitment, in creation order.
func (s *Store) List(ctx context.Context) ([]*models.CommitmentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	commitments, err := s.repo.ListCommitments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list commitments: %w", err)
	}
	views := make([]*models.CommitmentStatus, len(commitments))
	for i, c := range commitments {
		views[i] = s.view(c)
	}
	return views, nil
}

func (s *Store) view(c *models.Commitment) *models.CommitmentStatus {
	now := s.now().UnixMilli()
	v := &models.CommitmentStatus{
		ID:                c.ID,
		Status:            c.Status,
		Revealed:          c.Revealed(),
		Deadline:          c.Deadline,
		TimeUntilDeadline: max(0, c.Deadline-now),
		CanReveal:         now >= c.Deadline,
		Fingerprint:       c.Fingerprint,
		Stake:             c.Stake,
		CreatedAt:         c.CreatedAt,
		RevealedAt:        c.RevealedAt,
	}
	// The text stays sealed until reveal.
	if c.Revealed() {
		v.Text = c.Text
	}
	return v
}
