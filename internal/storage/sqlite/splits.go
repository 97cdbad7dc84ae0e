package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/pledge/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateSplit persists a new split with its participant list and registers
// participants that are not yet known.
func (s *SQLiteStore) CreateSplit(ctx context.Context, split *models.Split) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO splits (id, description, total_amount, split_type, status, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		split.ID, split.Description, split.TotalAmount, string(split.SplitType),
		string(split.Status), split.CreatedAt, split.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert split: %w", err)
	}

	for i, id := range split.ParticipantIDs {
		participant := models.NewParticipant(id)
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO participants (id, name, total_contributions) VALUES (?, ?, 0)",
			participant.ID, participant.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to register participant: %w", err)
		}

		var expected any
		if amount, ok := split.ExpectedAmounts[id]; ok {
			expected = amount
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO split_participants (split_id, participant_id, position, expected_amount) VALUES (?, ?, ?, ?)",
			split.ID, id, i, expected,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSplit retrieves a split by ID, including participants and contributions.
func (s *SQLiteStore) GetSplit(ctx context.Context, id string) (*models.Split, error) {
	return loadSplit(ctx, s.db, id)
}

// loadSplit reads a split in three sequential queries. Each result set is
// closed before the next query because the pool holds a single connection.
func loadSplit(ctx context.Context, q querier, id string) (*models.Split, error) {
	split := &models.Split{
		ExpectedAmounts: make(map[string]int64),
		Contributions:   make(map[string]*models.Contribution),
	}
	var splitType, status string
	err := q.QueryRowContext(ctx,
		`SELECT id, description, total_amount, split_type, status, created_at, completed_at
		 FROM splits WHERE id = ?`,
		id,
	).Scan(&split.ID, &split.Description, &split.TotalAmount, &splitType, &status, &split.CreatedAt, &split.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("split %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	split.SplitType = models.SplitType(splitType)
	split.Status = models.SplitState(status)

	// Get participants
	rows, err := q.QueryContext(ctx,
		"SELECT participant_id, expected_amount FROM split_participants WHERE split_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get split participants: %w", err)
	}
	for rows.Next() {
		var participantID string
		var expected sql.NullInt64
		if err := rows.Scan(&participantID, &expected); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan split participant: %w", err)
		}
		split.ParticipantIDs = append(split.ParticipantIDs, participantID)
		if expected.Valid {
			split.ExpectedAmounts[participantID] = expected.Int64
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate split participants: %w", err)
	}

	// Get contributions
	contribRows, err := q.QueryContext(ctx,
		"SELECT id, participant_id, amount, fingerprint, timestamp FROM contributions WHERE split_id = ?",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get contributions: %w", err)
	}
	defer contribRows.Close()

	for contribRows.Next() {
		c := &models.Contribution{}
		if err := contribRows.Scan(&c.ID, &c.ParticipantID, &c.Amount, &c.Fingerprint, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		split.Contributions[c.ParticipantID] = c
	}
	if err := contribRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}

	return split, nil
}

// ListSplitsByParticipant retrieves all splits naming the participant, newest first.
func (s *SQLiteStore) ListSplitsByParticipant(ctx context.Context, participantID string) ([]*models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id FROM splits s
		 JOIN split_participants sp ON sp.split_id = s.id
		 WHERE sp.participant_id = ?
		 ORDER BY s.created_at DESC, s.rowid DESC`,
		participantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits by participant: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan split id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	splits := make([]*models.Split, 0, len(ids))
	for _, id := range ids {
		split, err := loadSplit(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		splits = append(splits, split)
	}
	return splits, nil
}

// RecordContribution upserts a contribution and adjusts the participant's
// total, completing the split in the same transaction when completedAt is
// non-zero.
func (s *SQLiteStore) RecordContribution(ctx context.Context, splitID string, c *models.Contribution, delta, completedAt int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM split_participants WHERE split_id = ? AND participant_id = ?",
		splitID, c.ParticipantID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish an unknown split from a non-member.
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM splits WHERE id = ?", splitID).Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("split %s: %w", splitID, models.ErrNotFound)
		}
		return fmt.Errorf("split %s: %w", splitID, models.ErrNotAParticipant)
	}
	if err != nil {
		return fmt.Errorf("failed to check split membership: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO contributions (id, split_id, participant_id, amount, fingerprint, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (split_id, participant_id) DO UPDATE SET
		     id = excluded.id,
		     amount = excluded.amount,
		     fingerprint = excluded.fingerprint,
		     timestamp = excluded.timestamp`,
		c.ID, splitID, c.ParticipantID, c.Amount, c.Fingerprint, c.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert contribution: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE participants SET total_contributions = total_contributions + ? WHERE id = ?",
		delta, c.ParticipantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant total: %w", err)
	}

	if completedAt != 0 {
		if err := completeSplit(ctx, tx, splitID, completedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CompleteSplit marks the split completed and appends a history entry for
// each participant in split order.
func (s *SQLiteStore) CompleteSplit(ctx context.Context, splitID string, completedAt int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := completeSplit(ctx, tx, splitID, completedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// completeSplit sets the completed status and appends a history entry for
// each participant in split order.
func completeSplit(ctx context.Context, tx *sql.Tx, splitID string, completedAt int64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE splits SET status = ?, completed_at = ? WHERE id = ?",
		string(models.SplitCompleted), completedAt, splitID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete split: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	} else if n == 0 {
		return fmt.Errorf("split %s: %w", splitID, models.ErrNotFound)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO participant_history (participant_id, split_id, description, completed_at)
		 SELECT sp.participant_id, s.id, s.description, s.completed_at
		 FROM split_participants sp JOIN splits s ON s.id = sp.split_id
		 WHERE sp.split_id = ?
		 ORDER BY sp.position`,
		splitID,
	)
	if err != nil {
		return fmt.Errorf("failed to append participant history: %w", err)
	}
	return nil
}
