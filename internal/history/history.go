// Package history is an optional PostgreSQL sink recording the outcome of
// every run. It is an audit log, not the source of truth: the codes
// document on disk stays authoritative, and a history failure never fails
// a run.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/kkkkikiki/shiftsweep/internal/config"
	"github.com/kkkkikiki/shiftsweep/internal/engine"
)

// Run is one recorded sweep or targeted run.
type Run struct {
	ID             int64     `db:"id" json:"id"`
	Mode           string    `db:"mode" json:"mode"`
	RefTime        time.Time `db:"ref_time" json:"ref_time"`
	DryRun         bool      `db:"dry_run" json:"dry_run"`
	Changed        bool      `db:"changed" json:"changed"`
	Scanned        int       `db:"scanned" json:"scanned"`
	SetExpired     int       `db:"set_expired" json:"set_expired"`
	SkippedUnknown int       `db:"skipped_unknown" json:"skipped_unknown"`
	Unparsable     int       `db:"unparsable" json:"unparsable"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Store wraps the history database connection.
type Store struct {
	db *sqlx.DB
}

// Open connects to PostgreSQL using config and verifies the connection.
func Open(ctx context.Context, cfg *config.HistoryConfig) (*Store, error) {
	db, err := sqlx.Connect("postgres", cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return &Store{db: db}, nil
}

// EnsureSchema creates the sweep_runs table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS sweep_runs (
			id              BIGSERIAL PRIMARY KEY,
			mode            TEXT NOT NULL,
			ref_time        TIMESTAMPTZ NOT NULL,
			dry_run         BOOLEAN NOT NULL,
			changed         BOOLEAN NOT NULL,
			scanned         INTEGER NOT NULL,
			set_expired     INTEGER NOT NULL,
			skipped_unknown INTEGER NOT NULL,
			unparsable      INTEGER NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create sweep_runs table: %w", err)
	}
	return nil
}

// RecordRun inserts one run's accounting.
func (s *Store) RecordRun(ctx context.Context, mode string, ref time.Time, dryRun, changed bool, stats engine.Stats) error {
	query := `
		INSERT INTO sweep_runs
			(mode, ref_time, dry_run, changed, scanned, set_expired, skipped_unknown, unparsable, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		mode, ref.UTC(), dryRun, changed,
		stats.Scanned, stats.SetExpired, stats.SkippedUnknown, stats.Unparsable,
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, mode, ref_time, dry_run, changed,
		       scanned, set_expired, skipped_unknown, unparsable, created_at
		FROM sweep_runs
		ORDER BY created_at DESC
		LIMIT $1
	`
	var runs []Run
	if err := s.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close PostgreSQL: %w", err)
	}
	return nil
}
