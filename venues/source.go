// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package venues

import (
	"context"
	"errors"

	"github.com/danielhkuo/venue-vote/models"
)

var (
	ErrUnavailable = errors.New("venue source unavailable")
	ErrNotFound    = errors.New("venue not found")
)

// Source finds venues for a free-text query. Overlapping calls may complete
// in any order. Callers never pass an empty query.
type Source interface {
	SearchVenues(ctx context.Context, query string) ([]models.Venue, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context, query string) ([]models.Venue, error)

func (f SourceFunc) SearchVenues(ctx context.Context, query string) ([]models.Venue, error) {
	return f(ctx, query)
}
