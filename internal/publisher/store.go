package publisher

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

// ErrClosed is reported by mutations submitted after Close.
var ErrClosed = errors.New("publisher store is closed")

// Store persists publisher records in SQLite. Mutating and lookup operations
// are submitted to a serial runner and complete through a callback invoked
// exactly once, mirroring the host's one-transaction-per-request contract.
type Store struct {
	db       *sql.DB
	migrator infoMigrator
	runner   *runner
}

// NewStore opens or creates the publisher database and walks schema
// migrations up to the current target version.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// All access is serialized through the runner; a single connection also
	// keeps ":memory:" databases from splitting across pool connections.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	s.runner = newRunner()
	return s, nil
}

// Close stops the serial runner (waiting for in-flight jobs) and closes the
// database connection.
func (s *Store) Close() error {
	if s.runner != nil {
		s.runner.close()
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY NOT NULL,
		value TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	current, err := s.schemaVersion()
	if err != nil {
		return err
	}

	for v := current + 1; v <= targetVersion; v++ {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration to v%d: %w", v, err)
		}
		if err := s.migrator.migrate(tx, v); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", v, err)
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
			strconv.Itoa(v),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record version v%d: %w", v, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration to v%d: %w", v, err)
		}
	}
	return nil
}

func (s *Store) schemaVersion() (int, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'version'`).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse schema version %q: %w", value, err)
	}
	return v, nil
}
