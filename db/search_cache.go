// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/venue-vote/models"
)

// SearchCache stores venue search results in the venue_search table.
type SearchCache struct {
	db    *sql.DB
	clock clockwork.Clock
}

func NewSearchCache(db *sql.DB, clock clockwork.Clock) *SearchCache {
	return &SearchCache{db: db, clock: clock}
}

// Get returns the cached venues for query if they are younger than maxAge.
func (c *SearchCache) Get(ctx context.Context, query string, maxAge time.Duration) ([]models.Venue, bool, error) {
	var payload string
	var fetchedAt int64
	err := c.db.QueryRowContext(ctx, `
		SELECT payload, fetched_at FROM venue_search WHERE query = $1
	`, query).Scan(&payload, &fetchedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query search cache: %w", err)
	}

	if c.clock.Since(time.Unix(fetchedAt, 0)) > maxAge {
		return nil, false, nil
	}

	var venues []models.Venue
	if err := json.Unmarshal([]byte(payload), &venues); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached venues: %w", err)
	}
	if venues == nil {
		venues = []models.Venue{}
	}

	return venues, true, nil
}

// Put stores venues for query, replacing any older entry.
func (c *SearchCache) Put(ctx context.Context, query string, venues []models.Venue) error {
	if venues == nil {
		venues = []models.Venue{}
	}
	payload, err := json.Marshal(venues)
	if err != nil {
		return fmt.Errorf("failed to encode venues: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO venue_search (query, payload, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (query) DO UPDATE
		SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`, query, string(payload), c.clock.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write search cache: %w", err)
	}

	return nil
}

// Purge deletes entries older than maxAge and reports how many were removed.
func (c *SearchCache) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := c.clock.Now().Add(-maxAge).Unix()
	res, err := c.db.ExecContext(ctx, `
		DELETE FROM venue_search WHERE fetched_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge search cache: %w", err)
	}
	return res.RowsAffected()
}
