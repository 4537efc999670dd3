// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles the database connection, schema, and search cache.

# Connecting

Open picks the driver from the database type, pings, and creates the schema:

	conn, err := db.Open(ctx, db.TypeSQLite, "file:venue-vote.db")
	conn, err := db.Open(ctx, db.TypePostgres, "postgres://...")

SQLite (modernc.org/sqlite) is the default. PostgreSQL uses lib/pq.

# Schema Creation

CreateSchema is safe to call multiple times - uses IF NOT EXISTS for all
tables and indexes.

# Tables

  - venue_search: upstream search results keyed by normalized query,
    stored as a JSON payload with a unix fetched_at timestamp

Voting sessions are never written to the database.

# Search Cache

	cache := db.NewSearchCache(conn, clockwork.NewRealClock())
	venues, ok, err := cache.Get(ctx, "berlin", 15*time.Minute)
	err = cache.Put(ctx, "berlin", venues)
	removed, err := cache.Purge(ctx, 24*time.Hour)
*/
package db
