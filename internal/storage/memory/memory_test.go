package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/pledge/internal/models"
)

func TestRecordsAreCopied(t *testing.T) {
	s := New()
	ctx := context.Background()

	c := &models.Commitment{ID: "c-1", Text: "original", Status: models.CommitmentActive}
	require.NoError(t, s.CreateCommitment(ctx, c))
	c.Text = "mutated after create"

	got, err := s.GetCommitment(ctx, "c-1")
	require.NoError(t, err)
	require.Equal(t, "original", got.Text)

	got.Text = "mutated after get"
	again, err := s.GetCommitment(ctx, "c-1")
	require.NoError(t, err)
	require.Equal(t, "original", again.Text)

	require.Error(t, s.CreateCommitment(ctx, &models.Commitment{ID: "c-1"}))
}

func TestSplitLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	split := &models.Split{
		ID:             "s-1",
		Description:    "Dinner",
		TotalAmount:    200,
		ParticipantIDs: []string{"alice", "bob"},
		SplitType:      models.SplitEqual,
		Status:         models.SplitPending,
		CreatedAt:      1,
	}
	require.NoError(t, s.CreateSplit(ctx, split))
	split.ParticipantIDs[0] = "mallory"

	got, err := s.GetSplit(ctx, "s-1")
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, got.ParticipantIDs)

	err = s.RecordContribution(ctx, "s-1", &models.Contribution{ID: "k", ParticipantID: "mallory", Amount: 1}, 1, 0)
	require.ErrorIs(t, err, models.ErrNotAParticipant)
	err = s.RecordContribution(ctx, "missing", &models.Contribution{ID: "k", ParticipantID: "alice", Amount: 1}, 1, 0)
	require.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, s.RecordContribution(ctx, "s-1", &models.Contribution{ID: "k1", ParticipantID: "alice", Amount: 100}, 100, 0))
	require.NoError(t, s.CompleteSplit(ctx, "s-1", 50))

	got, err = s.GetSplit(ctx, "s-1")
	require.NoError(t, err)
	require.Equal(t, models.SplitCompleted, got.Status)
	require.Equal(t, int64(100), got.Contributions["alice"].Amount)

	alice, err := s.GetParticipant(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(100), alice.TotalContributions)
	require.Equal(t, []models.HistoryEntry{{SplitID: "s-1", Description: "Dinner", CompletedAt: 50}}, alice.History)

	require.ErrorIs(t, s.CompleteSplit(ctx, "missing", 1), models.ErrNotFound)
}

func TestListSplitsByParticipantTieBreak(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.CreateSplit(ctx, &models.Split{
			ID: id, TotalAmount: 1, ParticipantIDs: []string{"alice"}, CreatedAt: 7,
		}))
	}

	splits, err := s.ListSplitsByParticipant(ctx, "alice")
	require.NoError(t, err)
	ids := make([]string, len(splits))
	for i, split := range splits {
		ids[i] = split.ID
	}
	require.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestRecordContributionCompletes(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateSplit(ctx, &models.Split{
		ID:             "s-1",
		Description:    "Taxi",
		TotalAmount:    100,
		ParticipantIDs: []string{"alice"},
		Status:         models.SplitPending,
		CreatedAt:      1,
	}))
	c := &models.Contribution{ID: "k1", ParticipantID: "alice", Amount: 100}
	require.NoError(t, s.RecordContribution(ctx, "s-1", c, 100, 42))

	got, err := s.GetSplit(ctx, "s-1")
	require.NoError(t, err)
	require.Equal(t, models.SplitCompleted, got.Status)
	require.Equal(t, int64(42), got.CompletedAt)

	alice, err := s.GetParticipant(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(100), alice.TotalContributions)
	require.Equal(t, []models.HistoryEntry{{SplitID: "s-1", Description: "Taxi", CompletedAt: 42}}, alice.History)
}
