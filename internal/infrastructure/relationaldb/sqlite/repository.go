// Package sqlite provides a SQLite implementation of the RelationalDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

var _ ports.RelationalDB = (*Repository)(nil)

// Repository implements ports.RelationalDB using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository opens a SQLite database at path.
func NewRepository(path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	return newRepository(db, path)
}

// newRepository configures an open handle. SQLite has a single writer, and
// an in-memory database exists per connection, so the pool holds one connection.
func newRepository(db *sql.DB, path string) (*Repository, error) {
	db.SetMaxOpenConns(1)

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Tracked startups and their latest metric snapshot
	CREATE TABLE IF NOT EXISTS startups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		website TEXT,
		description TEXT,
		founded INTEGER,
		headquarters TEXT,
		founders TEXT,
		total_funding REAL,
		valuation REAL,
		estimated_users REAL,
		employee_count REAL,
		acquisition TEXT,
		last_updated TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_startups_name ON startups(name);

	-- Review queue (seq preserves insertion order)
	CREATE TABLE IF NOT EXISTS review_records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		startup_id TEXT NOT NULL,
		field TEXT NOT NULL,
		old_value TEXT NOT NULL,
		new_value TEXT NOT NULL,
		source_url TEXT,
		confidence TEXT NOT NULL,
		observed_at TIMESTAMP,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
		created_at TIMESTAMP NOT NULL,
		reviewed_at TIMESTAMP,
		reviewed_by TEXT,
		notes TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_review_records_status ON review_records(status);
	CREATE INDEX IF NOT EXISTS idx_review_records_startup ON review_records(startup_id);

	-- Metric history (one row per approved change applied)
	CREATE TABLE IF NOT EXISTS metric_versions (
		id TEXT PRIMARY KEY,
		startup_id TEXT NOT NULL,
		field TEXT NOT NULL,
		version INTEGER NOT NULL,
		old_value TEXT NOT NULL,
		new_value TEXT NOT NULL,
		review_id TEXT NOT NULL REFERENCES review_records(id),
		created_at TIMESTAMP NOT NULL,
		UNIQUE(startup_id, field, version)
	);
	CREATE INDEX IF NOT EXISTS idx_metric_versions_startup ON metric_versions(startup_id);

	-- Audit log (tracks all actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		review_id TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_review ON audit_log(review_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
