// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/pledge/internal/models"
	"github.com/mmynk/pledge/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps pragmas in effect.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const commitmentColumns = "id, text, deadline, stake, fingerprint, status, created_at, revealed_at"

func scanCommitment(row interface{ Scan(...any) error }) (*models.Commitment, error) {
	c := &models.Commitment{}
	var status string
	if err := row.Scan(&c.ID, &c.Text, &c.Deadline, &c.Stake, &c.Fingerprint, &status, &c.CreatedAt, &c.RevealedAt); err != nil {
		return nil, err
	}
	c.Status = models.CommitmentState(status)
	return c, nil
}

// CreateCommitment persists a new commitment to the database.
func (s *SQLiteStore) CreateCommitment(ctx context.Context, c *models.Commitment) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO commitments ("+commitmentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.Text, c.Deadline, c.Stake, c.Fingerprint, string(c.Status), c.CreatedAt, c.RevealedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert commitment: %w", err)
	}
	return nil
}

// GetCommitment retrieves a commitment by ID.
func (s *SQLiteStore) GetCommitment(ctx context.Context, id string) (*models.Commitment, error) {
	c, err := scanCommitment(s.db.QueryRowContext(ctx,
		"SELECT "+commitmentColumns+" FROM commitments WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("commitment %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get commitment: %w", err)
	}
	return c, nil
}

// UpdateCommitment overwrites the mutable and immutable columns of a commitment.
func (s *SQLiteStore) UpdateCommitment(ctx context.Context, c *models.Commitment) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE commitments SET text = ?, deadline = ?, stake = ?, fingerprint = ?, status = ?, revealed_at = ?
		 WHERE id = ?`,
		c.Text, c.Deadline, c.Stake, c.Fingerprint, string(c.Status), c.RevealedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update commitment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("commitment %s: %w", c.ID, models.ErrNotFound)
	}
	return nil
}

// ListCommitments returns every commitment in insertion order.
func (s *SQLiteStore) ListCommitments(ctx context.Context) ([]*models.Commitment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+commitmentColumns+" FROM commitments ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list commitments: %w", err)
	}
	defer rows.Close()

	var commitments []*models.Commitment
	for rows.Next() {
		c, err := scanCommitment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commitment: %w", err)
		}
		commitments = append(commitments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate commitments: %w", err)
	}
	return commitments, nil
}

// ResetCommitments deletes every commitment.
func (s *SQLiteStore) ResetCommitments(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM commitments"); err != nil {
		return fmt.Errorf("failed to reset commitments: %w", err)
	}
	return nil
}
