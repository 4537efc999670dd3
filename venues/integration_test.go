// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package venues_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/venue-vote/db"
	"github.com/danielhkuo/venue-vote/models"
	"github.com/danielhkuo/venue-vote/testutil"
	"github.com/danielhkuo/venue-vote/venues"
)

func TestCached_SQLCache(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	clock := clockwork.NewFakeClock()
	ctx := context.Background()

	upstream := testutil.NewStubSource(map[string][]models.Venue{
		"pizza": {testutil.Venue("v1", "Golden Spoon"), testutil.Venue("v2", "Blue Oven")},
	})
	src := venues.NewCached(upstream, db.NewSearchCache(conn, clock), 15*time.Minute, nil)

	first, err := src.SearchVenues(ctx, "pizza")
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := src.SearchVenues(ctx, "  Pizza ")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"pizza"}, upstream.Calls(), "normalized repeat should hit the cache")

	clock.Advance(20 * time.Minute)

	_, err = src.SearchVenues(ctx, "pizza")
	require.NoError(t, err)
	assert.Len(t, upstream.Calls(), 2, "expired entry should go upstream again")
}

func TestCached_SQLCacheStoresEmptyResults(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()

	upstream := testutil.NewStubSource(nil)
	src := venues.NewCached(upstream, db.NewSearchCache(conn, clockwork.NewFakeClock()), time.Minute, nil)

	for range 2 {
		got, err := src.SearchVenues(ctx, "nothing here")
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Len(t, upstream.Calls(), 1)
}
