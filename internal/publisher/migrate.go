package publisher

import (
	"database/sql"
	"fmt"
)

// targetVersion is the schema version this build writes. The migration walk
// applies every version between the recorded one and this, exactly once each.
const targetVersion = 15

const (
	infoTable   = "server_publisher_info"
	bannerTable = "server_publisher_banner"
)

// infoMigrator applies versioned DDL for the publisher info table and
// delegates the nested banner table to its sibling migrator.
type infoMigrator struct {
	banner bannerMigrator
}

func (m infoMigrator) createTable(tx *sql.Tx) error {
	_, err := tx.Exec(fmt.Sprintf(`CREATE TABLE %s (
		publisher_key TEXT PRIMARY KEY NOT NULL UNIQUE,
		status INTEGER DEFAULT 0 NOT NULL,
		excluded INTEGER DEFAULT 0 NOT NULL,
		address TEXT NOT NULL
	)`, infoTable))
	if err != nil {
		return fmt.Errorf("create %s: %w", infoTable, err)
	}
	return nil
}

func (m infoMigrator) createIndex(tx *sql.Tx) error {
	_, err := tx.Exec(fmt.Sprintf(
		`CREATE UNIQUE INDEX IF NOT EXISTS %s_publisher_key_index ON %s (publisher_key)`,
		infoTable, infoTable))
	if err != nil {
		return fmt.Errorf("create index on %s: %w", infoTable, err)
	}
	return nil
}

// migrate dispatches on the exact target version. Unrecognized versions are a
// no-op success so future versions that don't touch this table pass through.
func (m infoMigrator) migrate(tx *sql.Tx, target int) error {
	switch target {
	case 7:
		return m.migrateTo7(tx)
	case 15:
		return m.banner.migrate(tx, 15)
	default:
		return nil
	}
}

func (m infoMigrator) migrateTo7(tx *sql.Tx) error {
	if err := dropTable(tx, infoTable); err != nil {
		return err
	}
	if err := m.createTable(tx); err != nil {
		return err
	}
	if err := m.createIndex(tx); err != nil {
		return err
	}
	return m.banner.migrate(tx, 7)
}

// bannerMigrator handles the nested banner table.
type bannerMigrator struct{}

func (m bannerMigrator) createTable(tx *sql.Tx) error {
	_, err := tx.Exec(fmt.Sprintf(`CREATE TABLE %s (
		publisher_key TEXT PRIMARY KEY NOT NULL UNIQUE,
		title TEXT,
		description TEXT,
		background TEXT,
		logo TEXT
	)`, bannerTable))
	if err != nil {
		return fmt.Errorf("create %s: %w", bannerTable, err)
	}
	return nil
}

func (m bannerMigrator) createIndex(tx *sql.Tx) error {
	_, err := tx.Exec(fmt.Sprintf(
		`CREATE UNIQUE INDEX IF NOT EXISTS %s_publisher_key_index ON %s (publisher_key)`,
		bannerTable, bannerTable))
	if err != nil {
		return fmt.Errorf("create index on %s: %w", bannerTable, err)
	}
	return nil
}

func (m bannerMigrator) migrate(tx *sql.Tx, target int) error {
	switch target {
	case 7, 15:
		// Both versions rebuild the banner table with the current column set.
		if err := dropTable(tx, bannerTable); err != nil {
			return err
		}
		if err := m.createTable(tx); err != nil {
			return err
		}
		return m.createIndex(tx)
	default:
		return nil
	}
}

func dropTable(tx *sql.Tx, name string) error {
	if _, err := tx.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, name)); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	return nil
}
