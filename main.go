// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/venue-vote/cliparse"
	"github.com/danielhkuo/venue-vote/db"
	"github.com/danielhkuo/venue-vote/logging"
	"github.com/danielhkuo/venue-vote/metrics"
	"github.com/danielhkuo/venue-vote/middleware"
	"github.com/danielhkuo/venue-vote/router"
	"github.com/danielhkuo/venue-vote/session"
	"github.com/danielhkuo/venue-vote/venues"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; real deployments use the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	source, dbConn, err := buildSource(ctx, cfg, clock, m)
	if err != nil {
		slog.Error("venue source setup failed", "error", err)
		os.Exit(1)
	}
	if dbConn != nil {
		defer dbConn.Close()
	}

	manager := session.NewManager(session.Config{
		Source:       source,
		Clock:        clock,
		Metrics:      m,
		Debounce:     cfg.DebounceWindow,
		FetchTimeout: cfg.FetchTimeout,
		IdleTTL:      cfg.SessionIdleTTL,
	})
	go manager.RunJanitor(ctx)

	// Create router
	mux := router.NewRouter(manager, reg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()

		// Close sessions first so open streams end and Shutdown can drain
		manager.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown incomplete", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "source", cfg.VenueSource)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// buildSource assembles the venue source chain. The returned connection is
// nil when caching is disabled.
func buildSource(ctx context.Context, cfg cliparse.Config, clock clockwork.Clock, m *metrics.Metrics) (venues.Source, *sql.DB, error) {
	var source venues.Source
	switch cfg.VenueSource {
	case cliparse.SourceFoursquare:
		fsq := venues.NewFoursquare(venues.FoursquareConfig{
			ClientID:     cfg.FoursquareClientID,
			ClientSecret: cfg.FoursquareClientSecret,
			BaseURL:      cfg.FoursquareBaseURL,
		})
		source = venues.NewGuarded(fsq, venues.GuardConfig{
			Rate:  cfg.UpstreamRate,
			Burst: cfg.UpstreamBurst,
		}, m)
	default:
		source = venues.NewMock(venues.WithMockClock(clock))
	}

	if !cfg.SearchCacheEnabled() {
		slog.Info("search cache disabled", "source", cfg.VenueSource, "ttl", cfg.CacheTTL)
		return source, nil, nil
	}

	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	cache := db.NewSearchCache(dbConn, clock)
	go purgeCache(ctx, cache, clock, cfg.CacheTTL)

	return venues.NewCached(source, cache, cfg.CacheTTL, m), dbConn, nil
}

// purgeCache drops expired search results once per TTL.
func purgeCache(ctx context.Context, cache *db.SearchCache, clock clockwork.Clock, ttl time.Duration) {
	ticker := clock.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			n, err := cache.Purge(ctx, ttl)
			if err != nil {
				slog.Warn("search cache purge failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("search cache purged", "rows", n)
			}
		}
	}
}
