// Package store persists small pieces of UI state between invocations:
// the free-text filter and the last executed ids.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	keyFilter    = "filter"
	keyLastRun   = "last_run"
	keyLastDebug = "last_debug"
)

// Store is a sqlite-backed key-value table.
type Store struct {
	db *sql.DB
}

// NewStore opens the state database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "state.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	return s, nil
}

// init creates the database schema
func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// get returns the value for a key, or "" when the key is absent.
func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO state (key, value, updated_at) VALUES (?, ?, ?)",
		key, value, time.Now(),
	)
	return err
}

// Filter returns the persisted filter string, "" when none is set.
func (s *Store) Filter() (string, error) {
	return s.get(keyFilter)
}

// SetFilter persists the filter string. An empty string clears it.
func (s *Store) SetFilter(filter string) error {
	return s.set(keyFilter, filter)
}

// LastRun returns the id of the task most recently dispatched.
func (s *Store) LastRun() (string, error) {
	return s.get(keyLastRun)
}

// SetLastRun records the id of a dispatched task.
func (s *Store) SetLastRun(id string) error {
	return s.set(keyLastRun, id)
}

// LastDebug returns the id of the launch most recently dispatched.
func (s *Store) LastDebug() (string, error) {
	return s.get(keyLastDebug)
}

// SetLastDebug records the id of a dispatched launch.
func (s *Store) SetLastDebug(id string) error {
	return s.set(keyLastDebug, id)
}

// Close closes the store database
func (s *Store) Close() error {
	return s.db.Close()
}
