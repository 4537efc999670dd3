// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package venues provides venue sources and decorators around them.

# Sources

Every source implements:

	SearchVenues(ctx context.Context, query string) ([]models.Venue, error)

Two concrete sources exist:

  - Foursquare: the Foursquare v2 API (search near a location, then one
    detail request per hit)
  - Mock: three random venues after a short delay, for local development

# Decorators

Decorators wrap any Source:

	var src venues.Source = venues.NewFoursquare(cfg)
	src = venues.NewGuarded(src, guardCfg, m)   // rate limit + circuit breaker
	src = venues.NewCached(src, cache, ttl, m)  // SQL-backed result cache

While the breaker is open, Guarded returns ErrUnavailable without calling
upstream.
*/
package venues
