// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the venue-vote API server.

venue-vote lets a small group search for places to eat and agree on one.
Everyone in a session shares a query box; typing is debounced into venue
searches, and each participant casts one vote from the current results.
The venue with the most votes is marked as the winner.

# Starting the Server

The defaults run against generated mock venues. Mock results are never
cached, so no database is opened:

	go run .

Against Foursquare, with credentials from the environment or a .env file:

	VENUE_SOURCE=foursquare FOURSQUARE_CLIENT_ID=... FOURSQUARE_CLIENT_SECRET=... go run .

Or with flags:

	go run . -p 3318 -source foursquare -t postgres -d "postgres://..."

# Configuration

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Search cache database (default: file:venue-vote.db)
  - VENUE_SOURCE (-source): mock or foursquare (default: mock)
  - FOURSQUARE_CLIENT_ID, FOURSQUARE_CLIENT_SECRET: required for foursquare
  - DEBOUNCE_WINDOW: quiet period before a search (default: 500ms)
  - FETCH_TIMEOUT: per-search deadline (default: 10s)
  - CACHE_TTL: Foursquare search cache lifetime, 0 disables the cache (default: 15m)
  - SESSION_IDLE_TTL: idle sessions are evicted after this (default: 2h)
  - UPSTREAM_RATE, UPSTREAM_BURST: Foursquare request rate limit
  - LOG_LEVEL, LOG_FORMAT: debug|info|warn|error and text|json

# Architecture

  - session: one actor goroutine per voting session, plus the manager
  - search: debounced, stale-safe query pipeline owned by a session
  - vote: participant and vote bookkeeping with tallying
  - venues: venue sources (mock, Foursquare) with rate limit, breaker and cache
  - db: search cache storage on SQLite or PostgreSQL
  - handlers: HTTP and WebSocket handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, request logging, JSON helpers
  - metrics: Prometheus collectors
  - logging: slog setup
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
