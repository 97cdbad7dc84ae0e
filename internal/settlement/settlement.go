// Package settlement implements multi-party splits: a fixed total funded by
// independent, fingerprinted contributions that completes automatically.
//
// Public views expose aggregates and per-participant booleans only. A
// participant sees their own amount through ParticipantView.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/pledge/internal/calculator"
	"github.com/mmynk/pledge/internal/fingerprint"
	"github.com/mmynk/pledge/internal/metrics"
	"github.com/mmynk/pledge/internal/models"
	"github.com/mmynk/pledge/internal/storage"
)

// Store owns the lifecycle of splits and the participant registry.
// A single mutex guards every read-modify-write, so concurrent contributions
// to one split cannot race on the completion check.
type Store struct {
	mu          sync.Mutex
	initialized bool

	repo               storage.SplitStore
	fp                 *fingerprint.Fingerprinter
	metrics            metrics.Collector
	now                func() time.Time
	rejectResubmission bool
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

// WithRejectResubmission makes a second contribution from the same
// participant fail with models.ErrAlreadyContributed instead of replacing the
// first one.
func WithRejectResubmission(reject bool) Option {
	return func(s *Store) { s.rejectResubmission = reject }
}

// New creates a Store. It must be initialized before splits are created.
func New(repo storage.SplitStore, fp *fingerprint.Fingerprinter, opts ...Option) *Store {
	s := &Store{
		repo:    repo,
		fp:      fp,
		metrics: metrics.NewNoopCollector(),
		now:     time.Now,
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
	slog.Info("Settlement store initialized", "reject_resubmission", s.rejectResubmission)
	return nil
}

// Cleanup deletes every split and participant.
func (s *Store) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.ResetSplits(ctx); err != nil {
		return fmt.Errorf("failed to clean up splits: %w", err)
	}
	slog.Info("Settlement store cleaned up")
	return nil
}

// CreateSplitParams holds the inputs of CreateSplit.
type CreateSplitParams struct {
	Description string
	// TotalAmount is in minor currency units and must be positive.
	TotalAmount    int64
	ParticipantIDs []string
	// SplitType defaults to models.SplitEqual.
	SplitType models.SplitType
	// CustomAmounts is an optional expected-amount table for custom splits.
	CustomAmounts map[string]int64
}

// CreateSplit creates a pending split and returns its ID. Participants that
// have never been seen are registered.
func (s *Store) CreateSplit(ctx context.Context, params CreateSplitParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return "", models.ErrNotInitialized
	}

	splitType := params.SplitType
	if splitType == "" {
		splitType = models.SplitEqual
	}

	var expected map[string]int64
	var err error
	switch splitType {
	case models.SplitEqual:
		if len(params.CustomAmounts) > 0 {
			return "", fmt.Errorf("%w: custom amounts given for an equal split", models.ErrInvalidArgument)
		}
		expected, err = calculator.EqualShares(params.TotalAmount, params.ParticipantIDs)
	case models.SplitCustom:
		if params.CustomAmounts != nil {
			expected, err = calculator.CustomShares(params.TotalAmount, params.ParticipantIDs, params.CustomAmounts)
		} else if params.TotalAmount <= 0 {
			err = fmt.Errorf("total must be positive, got %d", params.TotalAmount)
		} else {
			err = calculator.ValidateParticipants(params.ParticipantIDs)
		}
	default:
		err = fmt.Errorf("unknown split type %q", splitType)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	}

	split := &models.Split{
		ID:              uuid.New().String(),
		Description:     params.Description,
		TotalAmount:     params.TotalAmount,
		ParticipantIDs:  append([]string(nil), params.ParticipantIDs...),
		SplitType:       splitType,
		ExpectedAmounts: expected,
		Contributions:   make(map[string]*models.Contribution),
		Status:          models.SplitPending,
		CreatedAt:       s.now().UnixMilli(),
	}
	if err := s.repo.CreateSplit(ctx, split); err != nil {
		return "", fmt.Errorf("failed to create split: %w", err)
	}

	s.metrics.SplitCreated(string(splitType))
	slog.Info("Split created",
		"split_id", split.ID,
		"split_type", splitType,
		"total_amount", split.TotalAmount,
		"participants", len(split.ParticipantIDs),
	)
	return split.ID, nil
}

// AddContribution records participantID's contribution to the split and
// completes the split when it is fully funded. A resubmission replaces the
// earlier contribution unless resubmission is rejected. The contribution and
// the completion are persisted in one repository call.
func (s *Store) AddContribution(ctx context.Context, splitID, participantID string, amount int64) (*models.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	split, err := s.repo.GetSplit(ctx, splitID)
	if err != nil {
		return nil, err
	}
	if !split.HasParticipant(participantID) {
		slog.Warn("Contribution from non-participant", "split_id", splitID, "participant_id", participantID)
		return nil, fmt.Errorf("%s in split %s: %w", participantID, splitID, models.ErrNotAParticipant)
	}
	if err := s.checkCompletion(ctx, split); err != nil {
		return nil, err
	}
	if split.Status == models.SplitCompleted {
		return nil, fmt.Errorf("split %s: %w", splitID, models.ErrAlreadyCompleted)
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", models.ErrInvalidArgument)
	}

	delta := amount
	if previous, ok := split.Contributions[participantID]; ok {
		if s.rejectResubmission {
			return nil, fmt.Errorf("%s in split %s: %w", participantID, splitID, models.ErrAlreadyContributed)
		}
		delta -= previous.Amount
		slog.Info("Replacing contribution", "split_id", splitID, "participant_id", participantID)
	}

	next := amounts(split)
	delete(next, participantID)
	others := calculator.NewTally(next)
	if others.Overflowed || amount > math.MaxInt64-others.TotalContributed {
		return nil, fmt.Errorf("%w: amount overflows the split's contributed total", models.ErrInvalidArgument)
	}
	if err := s.checkParticipantTotal(ctx, participantID, delta); err != nil {
		return nil, err
	}
	next[participantID] = amount

	now := s.now()
	c := &models.Contribution{
		ID:            uuid.New().String(),
		ParticipantID: participantID,
		Amount:        amount,
		Fingerprint:   s.fp.Contribution(splitID, participantID, amount),
		Timestamp:     now.UnixMilli(),
	}
	tally := calculator.NewTally(next)
	var completedAt int64
	if tally.Complete(split.TotalAmount, len(split.ParticipantIDs)) {
		completedAt = now.UnixMilli()
	}
	if err := s.repo.RecordContribution(ctx, splitID, c, delta, completedAt); err != nil {
		return nil, fmt.Errorf("failed to record contribution: %w", err)
	}
	split.Contributions[participantID] = c

	s.metrics.ContributionRecorded(amount)
	slog.Info("Contribution recorded", "split_id", splitID, "participant_id", participantID)

	if completedAt != 0 {
		s.markCompleted(split, tally, completedAt)
	}

	return &models.Receipt{
		ContributionID: c.ID,
		Fingerprint:    c.Fingerprint,
		Timestamp:      c.Timestamp,
	}, nil
}

// checkParticipantTotal rejects a delta that would overflow the participant's
// cumulative contributions.
func (s *Store) checkParticipantTotal(ctx context.Context, participantID string, delta int64) error {
	if delta <= 0 {
		return nil
	}
	p, err := s.repo.GetParticipant(ctx, participantID)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load participant: %w", err)
	}
	if p.TotalContributions > math.MaxInt64-delta {
		return fmt.Errorf("%w: amount overflows %s's total contributions", models.ErrInvalidArgument, participantID)
	}
	return nil
}

// checkCompletion completes a pending split that is already fully funded,
// such as one whose completion was never persisted.
func (s *Store) checkCompletion(ctx context.Context, split *models.Split) error {
	if split.Status != models.SplitPending {
		return nil
	}
	tally := calculator.NewTally(amounts(split))
	if !tally.Complete(split.TotalAmount, len(split.ParticipantIDs)) {
		return nil
	}

	completedAt := s.now().UnixMilli()
	if err := s.repo.CompleteSplit(ctx, split.ID, completedAt); err != nil {
		return fmt.Errorf("failed to complete split: %w", err)
	}
	slog.Warn("Completed fully funded pending split", "split_id", split.ID)
	s.markCompleted(split, tally, completedAt)
	return nil
}

func (s *Store) markCompleted(split *models.Split, tally calculator.Tally, completedAt int64) {
	split.Status = models.SplitCompleted
	split.CompletedAt = completedAt

	s.metrics.SplitCompleted(time.Duration(completedAt-split.CreatedAt) * time.Millisecond)
	slog.Info("Split completed",
		"split_id", split.ID,
		"total_contributed", tally.TotalContributed,
		"total_amount", split.TotalAmount,
	)
}

// SplitStatus returns the public view of a split: aggregates and
// per-participant contribution flags, never individual amounts.
func (s *Store) SplitStatus(ctx context.Context, splitID string) (*models.SplitStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	split, err := s.repo.GetSplit(ctx, splitID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCompletion(ctx, split); err != nil {
		return nil, err
	}

	tally := calculator.NewTally(amounts(split))
	return &models.SplitStatus{
		ID:                    split.ID,
		Description:           split.Description,
		TotalAmount:           split.TotalAmount,
		TotalContributed:      tally.TotalContributed,
		RemainingAmount:       tally.Remaining(split.TotalAmount),
		ContributionCount:     tally.Count,
		ExpectedContributions: len(split.ParticipantIDs),
		Status:                split.Status,
		IsComplete:            split.Status == models.SplitCompleted,
		Participants:          flags(split, ""),
	}, nil
}

// ParticipantView returns participantID's private view of the split.
func (s *Store) ParticipantView(ctx context.Context, participantID, splitID string) (*models.ParticipantView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	split, err := s.repo.GetSplit(ctx, splitID)
	if err != nil {
		return nil, err
	}
	if !split.HasParticipant(participantID) {
		slog.Warn("Participant view denied", "split_id", splitID, "participant_id", participantID)
		return nil, fmt.Errorf("%s in split %s: %w", participantID, splitID, models.ErrAccessDenied)
	}

	view := &models.ParticipantView{
		SplitID:           split.ID,
		Description:       split.Description,
		TotalAmount:       split.TotalAmount,
		OtherParticipants: flags(split, participantID),
	}
	if expected, ok := split.ExpectedAmounts[participantID]; ok {
		view.YourExpectedAmount = &expected
	}
	if c, ok := split.Contributions[participantID]; ok {
		view.HasContributed = true
		view.YourContribution = c.Amount
		view.ContributionFingerprint = c.Fingerprint
	}
	return view, nil
}

// VerifyIntegrity recomputes every contribution fingerprint of a split and
// checks that the contributions sum to exactly the total. It does not modify
// the split: an over-funded split stays completed but reports
// TotalMatches=false.
func (s *Store) VerifyIntegrity(ctx context.Context, splitID string) (*models.IntegrityReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	split, err := s.repo.GetSplit(ctx, splitID)
	if err != nil {
		return nil, err
	}

	report := &models.IntegrityReport{SplitID: split.ID, HashesValid: true}
	for _, participantID := range split.ParticipantIDs {
		c, ok := split.Contributions[participantID]
		if !ok {
			continue
		}
		report.VerificationCount++
		want := s.fp.Contribution(split.ID, c.ParticipantID, c.Amount)
		if c.ParticipantID != participantID || !fingerprint.Equal(want, c.Fingerprint) {
			report.HashesValid = false
			s.metrics.IntegrityViolation("contribution")
			slog.Error("Contribution integrity verification failed",
				"split_id", split.ID,
				"contribution_id", c.ID,
			)
		}
	}

	// Contributions keyed by anyone outside the split are never valid.
	var strangers []string
	for id := range split.Contributions {
		if !split.HasParticipant(id) {
			strangers = append(strangers, id)
		}
	}
	sort.Strings(strangers)
	for _, id := range strangers {
		report.VerificationCount++
		report.HashesValid = false
		s.metrics.IntegrityViolation("contribution")
		slog.Error("Contribution from non-participant found",
			"split_id", split.ID,
			"participant_id", id,
			"contribution_id", split.Contributions[id].ID,
		)
	}
	report.TotalMatches = calculator.NewTally(amounts(split)).Matches(split.TotalAmount)
	report.IsValid = report.HashesValid && report.TotalMatches

	slog.Info("Split verified",
		"split_id", split.ID,
		"hashes_valid", report.HashesValid,
		"total_matches", report.TotalMatches,
	)
	return report, nil
}

// ParticipantSplits lists the splits naming participantID, newest first, with
// the participant's own contribution.
func (s *Store) ParticipantSplits(ctx context.Context, participantID string) ([]*models.SplitSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	splits, err := s.repo.ListSplitsByParticipant(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}

	summaries := make([]*models.SplitSummary, len(splits))
	for i, split := range splits {
		summary := &models.SplitSummary{
			ID:          split.ID,
			Description: split.Description,
			TotalAmount: split.TotalAmount,
			Status:      split.Status,
			CreatedAt:   split.CreatedAt,
		}
		if c, ok := split.Contributions[participantID]; ok {
			summary.HasContributed = true
			summary.YourContribution = c.Amount
		}
		summaries[i] = summary
	}
	return summaries, nil
}

// Participant returns the registry record for participantID.
func (s *Store) Participant(ctx context.Context, participantID string) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.GetParticipant(ctx, participantID)
}

func amounts(split *models.Split) map[string]int64 {
	out := make(map[string]int64, len(split.Contributions))
	for id, c := range split.Contributions {
		out[id] = c.Amount
	}
	return out
}

// flags returns contribution flags in split order, skipping exclude.
func flags(split *models.Split, exclude string) []models.ParticipantFlag {
	out := make([]models.ParticipantFlag, 0, len(split.ParticipantIDs))
	for _, id := range split.ParticipantIDs {
		if id == exclude {
			continue
		}
		_, contributed := split.Contributions[id]
		out = append(out, models.ParticipantFlag{ID: id, HasContributed: contributed})
	}
	return out
}
