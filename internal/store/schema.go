package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

const schemaV1 = `
-- Run headline data (one row per persisted run)
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL,

    -- Parameters duplicated out of config_yaml for listing and filtering
    seed INTEGER NOT NULL,
    steps INTEGER NOT NULL,
    agents INTEGER NOT NULL,
    neighbors INTEGER NOT NULL,
    randomness REAL NOT NULL,

    config_yaml TEXT,  -- full config snapshot for replay

    initial_adopters INTEGER NOT NULL,
    final_adopters INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

-- Adoption series (one row per tick)
CREATE TABLE IF NOT EXISTS run_ticks (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    tick INTEGER NOT NULL,
    adopters INTEGER NOT NULL,
    PRIMARY KEY (run_id, tick)
);

-- Schema version
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema creates the tables if they do not exist and records the
// schema version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	_, err := db.ExecContext(ctx, `
		INSERT OR IGNORE INTO schema_version (version, applied_at)
		VALUES (?, ?)
	`, SchemaVersion, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}
