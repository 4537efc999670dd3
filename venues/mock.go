// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package venues

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/venue-vote/models"
)

const (
	defaultMockDelay = 200 * time.Millisecond
	mockResultCount  = 3
)

// Mock returns randomly generated venues after a short delay. It ignores the
// query text and is meant for development without upstream credentials.
type Mock struct {
	clock clockwork.Clock
	delay time.Duration

	mu    sync.Mutex
	faker *gofakeit.Faker
}

type MockOption func(*Mock)

func WithMockClock(c clockwork.Clock) MockOption {
	return func(m *Mock) { m.clock = c }
}

func WithMockDelay(d time.Duration) MockOption {
	return func(m *Mock) { m.delay = d }
}

// WithMockSeed makes the generated venues deterministic. Seed 0 picks a
// random seed.
func WithMockSeed(seed uint64) MockOption {
	return func(m *Mock) { m.faker = gofakeit.New(seed) }
}

func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		clock: clockwork.NewRealClock(),
		delay: defaultMockDelay,
		faker: gofakeit.New(0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mock) SearchVenues(ctx context.Context, _ string) ([]models.Venue, error) {
	if m.delay > 0 {
		select {
		case <-m.clock.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Venue, mockResultCount)
	for i := range out {
		out[i] = m.randomVenue()
	}
	return out, nil
}

// randomVenue has a URL 80% of the time, a rating in [2, 9.5] 70% of the
// time and a single category 70% of the time.
func (m *Mock) randomVenue() models.Venue {
	v := models.Venue{
		ID:         uuid.NewString(),
		Name:       m.faker.Name(),
		Categories: []string{},
	}
	if m.chance(0.8) {
		u := m.faker.URL()
		v.URL = &u
	}
	if m.chance(0.7) {
		r := math.Round(m.faker.Float64Range(2, 9.5)*10) / 10
		v.Rating = &r
	}
	if m.chance(0.7) {
		v.Categories = []string{m.faker.Word()}
	}
	return v
}

func (m *Mock) chance(weight float64) bool {
	return m.faker.Float64() <= weight
}
