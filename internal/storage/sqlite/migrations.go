package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: participants and splits must be created BEFORE the tables that
// reference them due to foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS commitments (
    id TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    deadline INTEGER NOT NULL,
    stake INTEGER NOT NULL,
    fingerprint TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    revealed_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    total_contributions INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS splits (
    id TEXT PRIMARY KEY,
    description TEXT NOT NULL,
    total_amount INTEGER NOT NULL,
    split_type TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    completed_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS split_participants (
    split_id TEXT NOT NULL,
    participant_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    expected_amount INTEGER,
    PRIMARY KEY (split_id, participant_id),
    FOREIGN KEY (split_id) REFERENCES splits(id) ON DELETE CASCADE,
    FOREIGN KEY (participant_id) REFERENCES participants(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS contributions (
    id TEXT NOT NULL UNIQUE,
    split_id TEXT NOT NULL,
    participant_id TEXT NOT NULL,
    amount INTEGER NOT NULL,
    fingerprint TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    PRIMARY KEY (split_id, participant_id),
    FOREIGN KEY (split_id, participant_id) REFERENCES split_participants(split_id, participant_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS participant_history (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    participant_id TEXT NOT NULL,
    split_id TEXT NOT NULL,
    description TEXT NOT NULL,
    completed_at INTEGER NOT NULL,
    FOREIGN KEY (participant_id) REFERENCES participants(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_split_participants_participant_id ON split_participants(participant_id);
CREATE INDEX IF NOT EXISTS idx_contributions_split_id ON contributions(split_id);
CREATE INDEX IF NOT EXISTS idx_participant_history_participant_id ON participant_history(participant_id);
CREATE INDEX IF NOT EXISTS idx_splits_created_at ON splits(created_at);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
