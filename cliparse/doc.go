// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values come from struct defaults, then environment variables (parsed with
caarlos0/env), then CLI flags. CLI flags take precedence.

# CLI Flags

	-p           Server port
	-d           Search cache database URL
	-t           Database type (sqlite or postgres)
	-source      Venue source (mock or foursquare)
	-fsq-id      Foursquare client id
	-fsq-secret  Foursquare client secret

# Environment Variables

	PORT                      → -p          (default 3318)
	DATABASE_URL              → -d          (default file:venue-vote.db)
	DATABASE_TYPE             → -t          (default sqlite)
	VENUE_SOURCE              → -source     (default mock)
	FOURSQUARE_CLIENT_ID      → -fsq-id
	FOURSQUARE_CLIENT_SECRET  → -fsq-secret
	FOURSQUARE_BASE_URL       (default https://api.foursquare.com)
	DEBOUNCE_WINDOW           (default 500ms)
	FETCH_TIMEOUT             (default 10s)
	CACHE_TTL                 (default 15m, 0 disables the cache)
	SESSION_IDLE_TTL          (default 2h)
	UPSTREAM_RATE             (default 5 requests/second)
	UPSTREAM_BURST            (default 5)
	LOG_LEVEL                 (debug, info, warn, error; default info)
	LOG_FORMAT                (text or json; default text)

# Validation

ParseFlags returns an error if:

  - the foursquare source is selected without both credentials
  - the source, database type, log level or log format is unknown
  - a duration or rate is out of range
*/
package cliparse
