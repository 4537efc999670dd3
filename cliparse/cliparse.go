// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Venue sources
const (
	SourceMock       = "mock"
	SourceFoursquare = "foursquare"
)

type Config struct {
	Port         int    `env:"PORT" envDefault:"3318"`
	DatabaseURL  string `env:"DATABASE_URL" envDefault:"file:venue-vote.db"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`

	VenueSource            string `env:"VENUE_SOURCE" envDefault:"mock"`
	FoursquareClientID     string `env:"FOURSQUARE_CLIENT_ID"`
	FoursquareClientSecret string `env:"FOURSQUARE_CLIENT_SECRET"`
	FoursquareBaseURL      string `env:"FOURSQUARE_BASE_URL" envDefault:"https://api.foursquare.com"`

	DebounceWindow time.Duration `env:"DEBOUNCE_WINDOW" envDefault:"500ms"`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"15m"`
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`

	UpstreamRate  float64 `env:"UPSTREAM_RATE" envDefault:"5"`
	UpstreamBurst int     `env:"UPSTREAM_BURST" envDefault:"5"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// ParseFlags builds the config from defaults, then environment, then flags.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	fs := flag.NewFlagSet("venue-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Search cache database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")

	// Venue source (prefer env for secrets, but allow CLI for dev)
	fs.StringVar(&cfg.VenueSource, "source", cfg.VenueSource, "Venue source (mock or foursquare)")
	fs.StringVar(&cfg.FoursquareClientID, "fsq-id", cfg.FoursquareClientID, "Foursquare client id (prefer env)")
	fs.StringVar(&cfg.FoursquareClientSecret, "fsq-secret", cfg.FoursquareClientSecret, "Foursquare client secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SearchCacheEnabled reports whether upstream searches go through the SQL
// cache. Mock results are never cached.
func (c Config) SearchCacheEnabled() bool {
	return c.CacheTTL > 0 && c.VenueSource != SourceMock
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	switch c.DatabaseType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database type %q (use sqlite or postgres)", c.DatabaseType)
	}
	if c.SearchCacheEnabled() && c.DatabaseURL == "" {
		return errors.New("database URL required when the search cache is enabled (use -d or DATABASE_URL env)")
	}

	switch c.VenueSource {
	case SourceMock:
	case SourceFoursquare:
		if c.FoursquareClientID == "" || c.FoursquareClientSecret == "" {
			return errors.New("FOURSQUARE_CLIENT_ID and FOURSQUARE_CLIENT_SECRET required for the foursquare source")
		}
	default:
		return fmt.Errorf("unknown venue source %q (use mock or foursquare)", c.VenueSource)
	}

	if c.DebounceWindow <= 0 {
		return errors.New("DEBOUNCE_WINDOW must be positive")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("FETCH_TIMEOUT must be positive")
	}
	if c.CacheTTL < 0 {
		return errors.New("CACHE_TTL must not be negative")
	}
	if c.SessionIdleTTL <= 0 {
		return errors.New("SESSION_IDLE_TTL must be positive")
	}
	if c.UpstreamRate <= 0 || c.UpstreamBurst < 1 {
		return errors.New("UPSTREAM_RATE must be positive and UPSTREAM_BURST at least 1")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	return nil
}
