package publisher

import (
	"database/sql"
	"fmt"

	"github.com/quaylabs/exchangekit/internal/logx"
)

// upsertInfo appends an insert-or-replace for info to the supplied
// transaction. A nil info is a silent no-op.
func upsertInfo(tx *sql.Tx, info *Info) error {
	if info == nil {
		return nil
	}
	_, err := tx.Exec(fmt.Sprintf(
		`INSERT OR REPLACE INTO %s (publisher_key, status, excluded, address)
		 VALUES (?, ?, ?, ?)`, infoTable),
		info.PublisherKey, int(info.Status), info.Excluded, info.Address,
	)
	if err != nil {
		return fmt.Errorf("upsert publisher info: %w", err)
	}
	return nil
}

// ReplaceAll atomically replaces the whole publisher set: one transaction
// that deletes every existing row, then re-inserts each non-nil entry (and
// its banner, when present). done is invoked exactly once with the commit
// result, on the runner goroutine.
func (s *Store) ReplaceAll(list []*Info, done func(error)) {
	ok := s.runner.submit(func() {
		done(s.replaceAll(list))
	})
	if !ok {
		done(ErrClosed)
	}
}

func (s *Store) replaceAll(list []*Info) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// The refresh is wholesale: prior rows always go first, even when the
	// incoming list is empty.
	if _, err := tx.Exec(`DELETE FROM ` + infoTable); err != nil {
		return fmt.Errorf("clear publisher info: %w", err)
	}

	for _, info := range list {
		if info == nil {
			continue
		}
		if err := upsertInfo(tx, info); err != nil {
			return err
		}
		if info.Banner != nil {
			if err := upsertBanner(tx, info.PublisherKey, info.Banner); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByKey looks up a single record by publisher key. The nested banner is
// fetched first (an absent banner row becomes a zero-value banner), then the
// parent columns. Lookup misses and storage errors both collapse to a nil
// record; done is invoked exactly once.
func (s *Store) GetByKey(publisherKey string, done func(*Info)) {
	ok := s.runner.submit(func() {
		done(s.getByKey(publisherKey))
	})
	if !ok {
		done(nil)
	}
}

func (s *Store) getByKey(publisherKey string) *Info {
	banner, err := getBanner(s.db, publisherKey)
	if err != nil {
		logx.Errorf("publisher banner lookup failed: key=%q err=%v", publisherKey, err)
		return nil
	}
	if banner == nil {
		banner = &Banner{PublisherKey: publisherKey}
	}

	rows, err := s.db.Query(fmt.Sprintf(
		`SELECT status, excluded, address FROM %s WHERE publisher_key = ?`, infoTable),
		publisherKey,
	)
	if err != nil {
		logx.Errorf("publisher info lookup failed: key=%q err=%v", publisherKey, err)
		return nil
	}
	defer rows.Close()

	var (
		found bool
		info  Info
	)
	for rows.Next() {
		if found {
			// More than one row for a unique key: never surface partial data.
			return nil
		}
		var status int
		if err := rows.Scan(&status, &info.Excluded, &info.Address); err != nil {
			logx.Errorf("publisher info scan failed: key=%q err=%v", publisherKey, err)
			return nil
		}
		info.Status = Status(status)
		found = true
	}
	if err := rows.Err(); err != nil {
		logx.Errorf("publisher info rows failed: key=%q err=%v", publisherKey, err)
		return nil
	}
	if !found {
		return nil
	}

	info.PublisherKey = publisherKey
	info.Banner = banner
	return &info
}
