package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ActionEntry is one executed administrative action (cancel, terminate, reset).
type ActionEntry struct {
	ID         int
	Connection string
	Action     string
	PID        int32
	Success    bool
	Message    string
	ExecutedAt time.Time
}

// Store persists the administrative actions taken against monitored servers
type Store struct {
	db *sql.DB
}

// DefaultPath returns <UserCacheDir>/pgglance/actions.db
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pgglance", "actions.db"), nil
}

// NewStore opens (and creates if needed) the action log at path
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create action log directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open action log: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create action log schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Add records an action outcome
func (s *Store) Add(entry ActionEntry) error {
	executedAt := entry.ExecutedAt
	if executedAt.IsZero() {
		executedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO action_log (connection, action, pid, success, message, executed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Connection,
		entry.Action,
		entry.PID,
		entry.Success,
		entry.Message,
		executedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// GetRecent returns the newest entries first
func (s *Store) GetRecent(limit int) ([]ActionEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, connection, action, pid, success, message, executed_at
		FROM action_log
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []ActionEntry
	for rows.Next() {
		var e ActionEntry
		var executedAt string
		if err := rows.Scan(&e.ID, &e.Connection, &e.Action, &e.PID, &e.Success, &e.Message, &executedAt); err != nil {
			return nil, err
		}
		e.ExecutedAt, _ = time.Parse(time.RFC3339Nano, executedAt)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
