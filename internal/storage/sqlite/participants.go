package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/pledge/internal/models"
)

// GetParticipant retrieves a participant and its completed-split history.
func (s *SQLiteStore) GetParticipant(ctx context.Context, id string) (*models.Participant, error) {
	p := &models.Participant{History: []models.HistoryEntry{}}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, total_contributions FROM participants WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &p.TotalContributions)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT split_id, description, completed_at FROM participant_history
		 WHERE participant_id = ? ORDER BY seq`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.HistoryEntry
		if err := rows.Scan(&entry.SplitID, &entry.Description, &entry.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		p.History = append(p.History, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return p, nil
}

// ResetSplits deletes every split, contribution, participant and history entry.
func (s *SQLiteStore) ResetSplits(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Children first, so the statements do not depend on cascade settings.
	for _, table := range []string{"participant_history", "contributions", "split_participants", "splits", "participants"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
