// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package venues

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/danielhkuo/venue-vote/metrics"
	"github.com/danielhkuo/venue-vote/models"
)

type GuardConfig struct {
	// Rate is the sustained number of upstream searches per second.
	Rate  float64
	Burst int
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// Guarded protects an upstream Source with a rate limiter and a circuit
// breaker. The original venue API rate-limits aggressively, so every search
// waits for a token before it goes out.
type Guarded struct {
	next    Source
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

func NewGuarded(next Source, cfg GuardConfig, m *metrics.Metrics) *Guarded {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "venue-source",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		// The caller giving up is not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				"component", name,
				"from", from.String(),
				"to", to.String(),
			)
			m.BreakerState(stateToFloat(to))
		},
	})

	return &Guarded{
		next:    next,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		breaker: breaker,
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func (g *Guarded) SearchVenues(ctx context.Context, query string) ([]models.Venue, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return g.next.SearchVenues(ctx, query)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return result.([]models.Venue), nil
}

// State reports the breaker state.
func (g *Guarded) State() gobreaker.State {
	return g.breaker.State()
}
