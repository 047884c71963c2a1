package publisher

import (
	"database/sql"
	"fmt"
)

// upsertBanner appends an insert-or-replace for the nested banner row to the
// supplied transaction.
func upsertBanner(tx *sql.Tx, publisherKey string, b *Banner) error {
	if b == nil {
		return nil
	}
	_, err := tx.Exec(fmt.Sprintf(
		`INSERT OR REPLACE INTO %s (publisher_key, title, description, background, logo)
		 VALUES (?, ?, ?, ?, ?)`, bannerTable),
		publisherKey, b.Title, b.Description, b.Background, b.Logo,
	)
	if err != nil {
		return fmt.Errorf("upsert publisher banner: %w", err)
	}
	return nil
}

// getBanner returns the banner row for a publisher, or nil when absent.
func getBanner(db *sql.DB, publisherKey string) (*Banner, error) {
	b := &Banner{PublisherKey: publisherKey}
	err := db.QueryRow(fmt.Sprintf(
		`SELECT title, description, background, logo FROM %s WHERE publisher_key = ?`,
		bannerTable),
		publisherKey,
	).Scan(&b.Title, &b.Description, &b.Background, &b.Logo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get publisher banner: %w", err)
	}
	return b, nil
}
