// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package venues

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/venue-vote/metrics"
	"github.com/danielhkuo/venue-vote/models"
)

const sharedSearchTimeout = 30 * time.Second

// Cache stores search results by normalized query.
type Cache interface {
	Get(ctx context.Context, query string, maxAge time.Duration) ([]models.Venue, bool, error)
	Put(ctx context.Context, query string, venues []models.Venue) error
}

// Cached serves repeated searches from a Cache and collapses concurrent
// misses for the same query into one upstream call.
type Cached struct {
	next    Source
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	group   singleflight.Group
}

func NewCached(next Source, cache Cache, ttl time.Duration, m *metrics.Metrics) *Cached {
	return &Cached{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
	}
}

// NormalizeQuery is the cache key for a query.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

func (c *Cached) SearchVenues(ctx context.Context, query string) ([]models.Venue, error) {
	key := NormalizeQuery(query)

	cached, ok, err := c.cache.Get(ctx, key, c.ttl)
	if err != nil {
		slog.Warn("search cache read failed", "query", key, "error", err)
	}
	if ok {
		c.metrics.CacheLookup(metrics.CacheHit)
		return cached, nil
	}
	c.metrics.CacheLookup(metrics.CacheMiss)

	// The shared call outlives any single caller so that one session
	// giving up does not fail the others waiting on the same key.
	ch := c.group.DoChan(key, func() (interface{}, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedSearchTimeout)
		defer cancel()

		found, err := c.next.SearchVenues(sharedCtx, query)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Put(sharedCtx, key, found); err != nil {
			slog.Warn("search cache write failed", "query", key, "error", err)
		}
		return found, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.Venue), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
