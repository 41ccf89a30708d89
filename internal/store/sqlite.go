// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides ledger persistence with automatic schema creation and id allocation

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role INTEGER NOT NULL,
			registered_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS relationships (
			manager_id TEXT NOT NULL,
			subject_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (manager_id, subject_id)
		);

		CREATE INDEX IF NOT EXISTS idx_relationships_subject
			ON relationships(subject_id);

		CREATE TABLE IF NOT EXISTS forests (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS milestones (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			difficulty INTEGER NOT NULL,
			forest_id INTEGER NOT NULL,
			parent_id INTEGER,
			created_by TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (forest_id) REFERENCES forests(id),
			FOREIGN KEY (parent_id) REFERENCES milestones(id)
		);

		CREATE INDEX IF NOT EXISTS idx_milestones_forest
			ON milestones(forest_id);

		CREATE TABLE IF NOT EXISTS prerequisites (
			milestone_id INTEGER NOT NULL,
			prerequisite_id INTEGER NOT NULL,
			added_at INTEGER NOT NULL,
			PRIMARY KEY (milestone_id, prerequisite_id),
			FOREIGN KEY (milestone_id) REFERENCES milestones(id),
			FOREIGN KEY (prerequisite_id) REFERENCES milestones(id)
		);

		CREATE TABLE IF NOT EXISTS completions (
			milestone_id INTEGER NOT NULL,
			learner_id TEXT NOT NULL,
			completed_at INTEGER NOT NULL,
			verified_by TEXT NOT NULL,
			evidence_url TEXT,
			PRIMARY KEY (milestone_id, learner_id),
			FOREIGN KEY (milestone_id) REFERENCES milestones(id)
		);

		CREATE INDEX IF NOT EXISTS idx_completions_learner
			ON completions(learner_id);

		CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		);

		INSERT OR IGNORE INTO counters (name, value) VALUES ('forest', 0);
		INSERT OR IGNORE INTO counters (name, value) VALUES ('milestone', 0);

		CREATE TABLE IF NOT EXISTS audit_log (
			audit_id TEXT PRIMARY KEY,
			at_tick INTEGER NOT NULL,
			actor_id TEXT NOT NULL,
			action TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_id TEXT NOT NULL,
			detail_json TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_audit_actor
			ON audit_log(actor_id);

		CREATE INDEX IF NOT EXISTS idx_audit_tick
			ON audit_log(at_tick);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// nextID advances the named counter and returns the new value. It must run
// inside the same transaction as the insert consuming the id, so a rolled
// back insert never leaks an allocated id.
func nextID(tx *sql.Tx, name string) (uint64, error) {
	var value int64
	err := tx.QueryRow(`UPDATE counters SET value = value + 1 WHERE name = ? RETURNING value`, name).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("advancing %s counter: %w", name, err)
	}
	return uint64(value), nil
}

// isUniqueConstraintError checks if an error is a SQLite UNIQUE constraint
// violation. Foreign key violations deliberately do not match; they surface as
// wrapped errors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// nullString converts an empty string to nil for nullable columns
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
