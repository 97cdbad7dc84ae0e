package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/pledge/internal/commitment"
	"github.com/mmynk/pledge/internal/fingerprint"
	"github.com/mmynk/pledge/internal/models"
	"github.com/mmynk/pledge/internal/settlement"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "pledge-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newFingerprinter(t *testing.T) *fingerprint.Fingerprinter {
	t.Helper()
	fp, err := fingerprint.New([]byte("sqlite-test-secret-0123456789abc"))
	if err != nil {
		t.Fatalf("Failed to create fingerprinter: %v", err)
	}
	return fp
}

func TestCommitments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	original := &models.Commitment{
		ID:          "c-1",
		Text:        "Ship the release",
		Deadline:    1767268800000,
		Stake:       250,
		Fingerprint: "abc123",
		Status:      models.CommitmentActive,
		CreatedAt:   1767265200000,
	}

	t.Run("CreateCommitment and GetCommitment", func(t *testing.T) {
		if err := store.CreateCommitment(ctx, original); err != nil {
			t.Fatalf("CreateCommitment failed: %v", err)
		}

		retrieved, err := store.GetCommitment(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetCommitment failed: %v", err)
		}
		if *retrieved != *original {
			t.Errorf("Commitment mismatch: got %+v, want %+v", retrieved, original)
		}
	})

	t.Run("GetCommitment returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetCommitment(ctx, "nonexistent-id")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateCommitment", func(t *testing.T) {
		updated := original.Clone()
		updated.Status = models.CommitmentRevealed
		updated.RevealedAt = 1767270000000
		if err := store.UpdateCommitment(ctx, updated); err != nil {
			t.Fatalf("UpdateCommitment failed: %v", err)
		}

		retrieved, err := store.GetCommitment(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetCommitment failed: %v", err)
		}
		if !retrieved.Revealed() || retrieved.RevealedAt != updated.RevealedAt {
			t.Errorf("Expected revealed commitment, got %+v", retrieved)
		}
	})

	t.Run("UpdateCommitment unknown id", func(t *testing.T) {
		err := store.UpdateCommitment(ctx, &models.Commitment{ID: "missing"})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListCommitments keeps insertion order", func(t *testing.T) {
		for _, id := range []string{"c-3", "c-2"} {
			c := original.Clone()
			c.ID = id
			if err := store.CreateCommitment(ctx, c); err != nil {
				t.Fatalf("CreateCommitment failed: %v", err)
			}
		}

		list, err := store.ListCommitments(ctx)
		if err != nil {
			t.Fatalf("ListCommitments failed: %v", err)
		}
		want := []string{"c-1", "c-3", "c-2"}
		if len(list) != len(want) {
			t.Fatalf("Expected %d commitments, got %d", len(want), len(list))
		}
		for i, c := range list {
			if c.ID != want[i] {
				t.Errorf("Position %d: got %s, want %s", i, c.ID, want[i])
			}
		}
	})

	t.Run("ResetCommitments", func(t *testing.T) {
		if err := store.ResetCommitments(ctx); err != nil {
			t.Fatalf("ResetCommitments failed: %v", err)
		}
		list, err := store.ListCommitments(ctx)
		if err != nil {
			t.Fatalf("ListCommitments failed: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("Expected no commitments, got %d", len(list))
		}
	})
}

func TestSplits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	split := &models.Split{
		ID:              "s-1",
		Description:     "Team dinner",
		TotalAmount:     10000,
		ParticipantIDs:  []string{"charlie", "alice", "bob"},
		SplitType:       models.SplitEqual,
		ExpectedAmounts: map[string]int64{"charlie": 3334, "alice": 3333, "bob": 3333},
		Status:          models.SplitPending,
		CreatedAt:       1000,
	}

	t.Run("CreateSplit registers participants", func(t *testing.T) {
		if err := store.CreateSplit(ctx, split); err != nil {
			t.Fatalf("CreateSplit failed: %v", err)
		}

		p, err := store.GetParticipant(ctx, "alice")
		if err != nil {
			t.Fatalf("GetParticipant failed: %v", err)
		}
		if p.Name != "User alice" || p.TotalContributions != 0 || len(p.History) != 0 {
			t.Errorf("Unexpected participant: %+v", p)
		}
	})

	t.Run("GetSplit keeps participant order and expectations", func(t *testing.T) {
		retrieved, err := store.GetSplit(ctx, split.ID)
		if err != nil {
			t.Fatalf("GetSplit failed: %v", err)
		}
		for i, id := range split.ParticipantIDs {
			if retrieved.ParticipantIDs[i] != id {
				t.Errorf("Participant %d: got %s, want %s", i, retrieved.ParticipantIDs[i], id)
			}
			if retrieved.ExpectedAmounts[id] != split.ExpectedAmounts[id] {
				t.Errorf("Expected amount for %s: got %d, want %d", id, retrieved.ExpectedAmounts[id], split.ExpectedAmounts[id])
			}
		}
		if retrieved.Status != models.SplitPending || len(retrieved.Contributions) != 0 {
			t.Errorf("Unexpected split state: %+v", retrieved)
		}
	})

	t.Run("custom split without table stores no expectations", func(t *testing.T) {
		custom := &models.Split{
			ID:             "s-2",
			Description:    "Gift",
			TotalAmount:    5000,
			ParticipantIDs: []string{"alice", "diana"},
			SplitType:      models.SplitCustom,
			Status:         models.SplitPending,
			CreatedAt:      2000,
		}
		if err := store.CreateSplit(ctx, custom); err != nil {
			t.Fatalf("CreateSplit failed: %v", err)
		}
		retrieved, err := store.GetSplit(ctx, custom.ID)
		if err != nil {
			t.Fatalf("GetSplit failed: %v", err)
		}
		if len(retrieved.ExpectedAmounts) != 0 {
			t.Errorf("Expected no expected amounts, got %v", retrieved.ExpectedAmounts)
		}
	})

	t.Run("GetSplit returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetSplit(ctx, "nonexistent-id")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("RecordContribution upserts and applies delta", func(t *testing.T) {
		first := &models.Contribution{ID: "k-1", ParticipantID: "alice", Amount: 1000, Fingerprint: "f1", Timestamp: 1500}
		if err := store.RecordContribution(ctx, split.ID, first, 1000, 0); err != nil {
			t.Fatalf("RecordContribution failed: %v", err)
		}
		second := &models.Contribution{ID: "k-2", ParticipantID: "alice", Amount: 3333, Fingerprint: "f2", Timestamp: 1600}
		if err := store.RecordContribution(ctx, split.ID, second, 2333, 0); err != nil {
			t.Fatalf("RecordContribution failed: %v", err)
		}

		retrieved, err := store.GetSplit(ctx, split.ID)
		if err != nil {
			t.Fatalf("GetSplit failed: %v", err)
		}
		if len(retrieved.Contributions) != 1 {
			t.Fatalf("Expected 1 contribution, got %d", len(retrieved.Contributions))
		}
		if got := retrieved.Contributions["alice"]; *got != *second {
			t.Errorf("Contribution mismatch: got %+v, want %+v", got, second)
		}

		p, err := store.GetParticipant(ctx, "alice")
		if err != nil {
			t.Fatalf("GetParticipant failed: %v", err)
		}
		if p.TotalContributions != 3333 {
			t.Errorf("TotalContributions: got %d, want 3333", p.TotalContributions)
		}
	})

	t.Run("RecordContribution rejects non-members and unknown splits", func(t *testing.T) {
		c := &models.Contribution{ID: "k-x", ParticipantID: "mallory", Amount: 1, Fingerprint: "f", Timestamp: 1}
		if err := store.RecordContribution(ctx, split.ID, c, 1, 0); !errors.Is(err, models.ErrNotAParticipant) {
			t.Errorf("Expected ErrNotAParticipant, got %v", err)
		}
		if err := store.RecordContribution(ctx, "missing", c, 1, 0); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListSplitsByParticipant newest first", func(t *testing.T) {
		splits, err := store.ListSplitsByParticipant(ctx, "alice")
		if err != nil {
			t.Fatalf("ListSplitsByParticipant failed: %v", err)
		}
		if len(splits) != 2 || splits[0].ID != "s-2" || splits[1].ID != "s-1" {
			t.Fatalf("Unexpected order: %v", splits)
		}
		if splits[1].Contributions["alice"] == nil {
			t.Error("Expected contributions to be loaded")
		}

		none, err := store.ListSplitsByParticipant(ctx, "nobody")
		if err != nil {
			t.Fatalf("ListSplitsByParticipant failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Expected no splits, got %d", len(none))
		}
	})

	t.Run("CompleteSplit appends history", func(t *testing.T) {
		if err := store.CompleteSplit(ctx, split.ID, 9000); err != nil {
			t.Fatalf("CompleteSplit failed: %v", err)
		}

		retrieved, err := store.GetSplit(ctx, split.ID)
		if err != nil {
			t.Fatalf("GetSplit failed: %v", err)
		}
		if retrieved.Status != models.SplitCompleted || retrieved.CompletedAt != 9000 {
			t.Errorf("Unexpected split state: status=%s completed_at=%d", retrieved.Status, retrieved.CompletedAt)
		}

		for _, id := range split.ParticipantIDs {
			p, err := store.GetParticipant(ctx, id)
			if err != nil {
				t.Fatalf("GetParticipant failed: %v", err)
			}
			if len(p.History) != 1 {
				t.Fatalf("Expected 1 history entry for %s, got %d", id, len(p.History))
			}
			want := models.HistoryEntry{SplitID: split.ID, Description: split.Description, CompletedAt: 9000}
			if p.History[0] != want {
				t.Errorf("History for %s: got %+v, want %+v", id, p.History[0], want)
			}
		}

		if err := store.CompleteSplit(ctx, "missing", 1); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("RecordContribution completes in the same transaction", func(t *testing.T) {
		c := &models.Contribution{ID: "k-3", ParticipantID: "diana", Amount: 5000, Fingerprint: "f3", Timestamp: 9500}
		if err := store.RecordContribution(ctx, "s-2", c, 5000, 9600); err != nil {
			t.Fatalf("RecordContribution failed: %v", err)
		}

		retrieved, err := store.GetSplit(ctx, "s-2")
		if err != nil {
			t.Fatalf("GetSplit failed: %v", err)
		}
		if retrieved.Status != models.SplitCompleted || retrieved.CompletedAt != 9600 {
			t.Errorf("Unexpected split state: status=%s completed_at=%d", retrieved.Status, retrieved.CompletedAt)
		}
		if retrieved.Contributions["diana"] == nil {
			t.Error("Expected the contribution to be stored")
		}

		p, err := store.GetParticipant(ctx, "diana")
		if err != nil {
			t.Fatalf("GetParticipant failed: %v", err)
		}
		want := []models.HistoryEntry{{SplitID: "s-2", Description: "Gift", CompletedAt: 9600}}
		if len(p.History) != 1 || p.History[0] != want[0] {
			t.Errorf("History for diana: got %+v, want %+v", p.History, want)
		}
		if p.TotalContributions != 5000 {
			t.Errorf("TotalContributions: got %d, want 5000", p.TotalContributions)
		}
	})

	t.Run("ResetSplits", func(t *testing.T) {
		if err := store.ResetSplits(ctx); err != nil {
			t.Fatalf("ResetSplits failed: %v", err)
		}
		if _, err := store.GetSplit(ctx, split.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetParticipant(ctx, "alice"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestPersistenceAcrossReopen(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "pledge.db")
	ctx := context.Background()

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	c := &models.Commitment{ID: "c-1", Text: "persist me", Deadline: 1, Status: models.CommitmentActive}
	if err := store.CreateCommitment(ctx, c); err != nil {
		t.Fatalf("CreateCommitment failed: %v", err)
	}
	store.Close()

	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	retrieved, err := reopened.GetCommitment(ctx, "c-1")
	if err != nil {
		t.Fatalf("GetCommitment failed: %v", err)
	}
	if retrieved.Text != "persist me" {
		t.Errorf("Text mismatch: got %q", retrieved.Text)
	}
}

// Tampering with rows behind the stores' backs must be caught by the
// fingerprint checks.
func TestTamperedRowsAreDetected(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	t.Run("commitment text", func(t *testing.T) {
		store := newTestStore(t)
		commitments := commitment.New(store, newFingerprinter(t), commitment.WithClock(now))
		if err := commitments.Initialize(ctx); err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}

		id, err := commitments.Create(ctx, commitment.CreateParams{Text: "original", Deadline: clock.UnixMilli()})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := store.db.ExecContext(ctx, "UPDATE commitments SET text = ? WHERE id = ?", "forged", id); err != nil {
			t.Fatalf("Tamper failed: %v", err)
		}

		_, err = commitments.Reveal(ctx, id)
		if !errors.Is(err, models.ErrIntegrityViolation) {
			t.Errorf("Expected ErrIntegrityViolation, got %v", err)
		}
	})

	t.Run("contribution amount", func(t *testing.T) {
		store := newTestStore(t)
		splits := settlement.New(store, newFingerprinter(t), settlement.WithClock(now))
		if err := splits.Initialize(ctx); err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}

		id, err := splits.CreateSplit(ctx, settlement.CreateSplitParams{
			Description:    "Dinner",
			TotalAmount:    6000,
			ParticipantIDs: []string{"alice", "bob"},
		})
		if err != nil {
			t.Fatalf("CreateSplit failed: %v", err)
		}
		for _, p := range []string{"alice", "bob"} {
			if _, err := splits.AddContribution(ctx, id, p, 3000); err != nil {
				t.Fatalf("AddContribution failed: %v", err)
			}
		}

		report, err := splits.VerifyIntegrity(ctx, id)
		if err != nil {
			t.Fatalf("VerifyIntegrity failed: %v", err)
		}
		if !report.IsValid {
			t.Fatalf("Expected valid split before tampering, got %+v", report)
		}

		if _, err := store.db.ExecContext(ctx,
			"UPDATE contributions SET amount = 2000 WHERE split_id = ? AND participant_id = ?", id, "bob",
		); err != nil {
			t.Fatalf("Tamper failed: %v", err)
		}

		report, err = splits.VerifyIntegrity(ctx, id)
		if err != nil {
			t.Fatalf("VerifyIntegrity failed: %v", err)
		}
		if report.HashesValid || report.IsValid {
			t.Errorf("Expected tampering to be detected, got %+v", report)
		}
	})
}
