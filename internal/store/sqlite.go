package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/womsim/internal/diffusion"
)

// SQLiteRunStore implements RunStore on a SQLite database.
type SQLiteRunStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteRunStore opens (creating if needed) the run database at
// dir/womsim.db.
func NewSQLiteRunStore(dir string) (*SQLiteRunStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	dbPath := filepath.Join(dir, "womsim.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with a single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRunStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file location.
func (s *SQLiteRunStore) Path() string {
	return s.dbPath
}

// SaveRun stores the record and its series in one transaction.
func (s *SQLiteRunStore) SaveRun(ctx context.Context, rec *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepareRun(rec)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, name, created_at, seed, steps, agents, neighbors, randomness,
			 config_yaml, initial_adopters, final_adopters)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Name, rec.CreatedAt.Format(time.RFC3339),
		rec.Seed, rec.Steps, rec.Agents, rec.Neighbors, rec.Randomness,
		nullString(rec.ConfigYAML), rec.InitialAdopters, rec.FinalAdopters)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	// INSERT OR REPLACE on runs does not cascade, so clear ticks by hand.
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_ticks WHERE run_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("failed to clear ticks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_ticks (run_id, tick, adopters) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare tick insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range rec.Series {
		if _, err := stmt.ExecContext(ctx, rec.ID, p.Tick, p.Adopters); err != nil {
			return fmt.Errorf("failed to insert tick %d: %w", p.Tick, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a run with its full series. Returns nil if not found.
func (s *SQLiteRunStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec RunRecord
	var createdAt string
	var configYAML sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, seed, steps, agents, neighbors, randomness,
		       config_yaml, initial_adopters, final_adopters
		FROM runs WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Name, &createdAt, &rec.Seed, &rec.Steps,
		&rec.Agents, &rec.Neighbors, &rec.Randomness,
		&configYAML, &rec.InitialAdopters, &rec.FinalAdopters)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	rec.ConfigYAML = configYAML.String

	rows, err := s.db.QueryContext(ctx, `
		SELECT tick, adopters FROM run_ticks WHERE run_id = ? ORDER BY tick
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p diffusion.TickPoint
		if err := rows.Scan(&p.Tick, &p.Adopters); err != nil {
			return nil, fmt.Errorf("failed to scan tick: %w", err)
		}
		rec.Series = append(rec.Series, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ticks: %w", err)
	}

	return &rec, nil
}

// ListRuns returns run summaries, newest first, without series.
func (s *SQLiteRunStore) ListRuns(ctx context.Context) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, seed, steps, agents, neighbors, randomness,
		       initial_adopters, final_adopters
		FROM runs ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Name, &createdAt, &rec.Seed, &rec.Steps,
			&rec.Agents, &rec.Neighbors, &rec.Randomness,
			&rec.InitialAdopters, &rec.FinalAdopters); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return runs, nil
}

// DeleteRun removes a run and, via cascade, its series.
func (s *SQLiteRunStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteRunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
