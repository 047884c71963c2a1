// Package prefs is a small SQLite-backed preference store. It stands in for
// the host profile's preference service: string keys, string values, missing
// keys read as empty.
package prefs

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Well-known preference keys.
const (
	KeyAccessToken  = "exchange.access_token"
	KeyRefreshToken = "exchange.refresh_token"
	KeyCountryCode  = "widget.country_code"
)

// Store wraps a SQLite database holding preferences.
type Store struct {
	db *sql.DB
}

// Open opens or creates the preference database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}

	// One connection keeps ":memory:" databases from splitting across pool
	// connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY NOT NULL,
		value TEXT NOT NULL DEFAULT ''
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create preferences table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored value, or "" when the key has never been set.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM preferences WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get preference %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete preference %q: %w", key, err)
	}
	return nil
}
