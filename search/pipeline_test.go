// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/venue-vote/metrics"
	"github.com/danielhkuo/venue-vote/models"
)

const (
	testWindow  = 500 * time.Millisecond
	testTimeout = 10 * time.Second
)

type call struct {
	term  string
	ctx   context.Context
	reply chan reply
}

type reply struct {
	venues []models.Venue
	err    error
}

func (c *call) resolve(venues ...models.Venue) {
	c.reply <- reply{venues: venues}
}

func (c *call) fail(err error) {
	c.reply <- reply{err: err}
}

// stubSource hands every search to the test, which decides when and how it
// completes. Unless honorCtx is set it ignores cancellation like a plain
// HTTP client would.
type stubSource struct {
	calls    chan *call
	honorCtx bool
}

func (s *stubSource) SearchVenues(ctx context.Context, term string) ([]models.Venue, error) {
	c := &call{term: term, ctx: ctx, reply: make(chan reply, 1)}
	s.calls <- c

	if s.honorCtx {
		select {
		case r := <-c.reply:
			return r.venues, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r := <-c.reply
	return r.venues, r.err
}

type harness struct {
	t       *testing.T
	clock   *clockwork.FakeClock
	inbox   chan Message
	source  *stubSource
	metrics *metrics.Metrics
	p       *Pipeline
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		t:       t,
		clock:   clockwork.NewFakeClock(),
		inbox:   make(chan Message, 8),
		source:  &stubSource{calls: make(chan *call, 8)},
		metrics: metrics.New(metrics.NewRegistry()),
	}
	h.p = New(h.source, h.inbox,
		WithClock(h.clock),
		WithDebounce(testWindow),
		WithFetchTimeout(testTimeout),
		WithMetrics(h.metrics),
	)
	t.Cleanup(h.p.Close)
	return h
}

// commit types text and lets the debounce window close.
func (h *harness) commit(text string) bool {
	h.t.Helper()
	h.p.SetQueryText(text)
	h.clock.Advance(testWindow)
	return h.handleNext()
}

func (h *harness) handleNext() bool {
	h.t.Helper()
	select {
	case msg := <-h.inbox:
		return h.p.Handle(msg)
	case <-time.After(time.Second):
		h.t.Fatal("timed out waiting for pipeline message")
		return false
	}
}

func (h *harness) expectQuiet() {
	h.t.Helper()
	select {
	case msg := <-h.inbox:
		h.t.Fatalf("unexpected message %T", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func (h *harness) nextCall() *call {
	h.t.Helper()
	select {
	case c := <-h.source.calls:
		return c
	case <-time.After(time.Second):
		h.t.Fatal("timed out waiting for search call")
		return nil
	}
}

func (h *harness) expectNoCall() {
	h.t.Helper()
	select {
	case c := <-h.source.calls:
		h.t.Fatalf("unexpected search for %q", c.term)
	case <-time.After(50 * time.Millisecond):
	}
}

func venue(id string) models.Venue {
	return models.Venue{ID: id, Name: "Venue " + id, Categories: []string{}}
}

func TestPipeline_StartsIdle(t *testing.T) {
	h := newHarness(t)

	snap := h.p.Snapshot()
	assert.Equal(t, models.StatusIdle, snap.Status)
	assert.Equal(t, "", snap.QueryText)
	assert.NotNil(t, snap.Venues)
	assert.Empty(t, snap.Venues)
}

func TestPipeline_SetQueryTextIsImmediate(t *testing.T) {
	h := newHarness(t)

	h.p.SetQueryText("tac")

	snap := h.p.Snapshot()
	assert.Equal(t, "tac", snap.QueryText)
	assert.Equal(t, models.StatusIdle, snap.Status)
	h.expectNoCall()
}

func TestPipeline_DebounceRestartsOnEveryKeystroke(t *testing.T) {
	h := newHarness(t)

	h.p.SetQueryText("p")
	h.clock.Advance(300 * time.Millisecond)
	h.p.SetQueryText("pi")
	h.clock.Advance(300 * time.Millisecond)
	h.expectQuiet()

	h.clock.Advance(200 * time.Millisecond)
	require.True(t, h.handleNext())

	c := h.nextCall()
	assert.Equal(t, "pi", c.term)
	h.expectNoCall()
}

func TestPipeline_AppliesFetchResult(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.commit("pizza"))
	snap := h.p.Snapshot()
	assert.Equal(t, models.StatusPending, snap.Status)
	assert.Nil(t, snap.Venues)

	h.nextCall().resolve(venue("1"), venue("2"))
	require.True(t, h.handleNext())

	snap = h.p.Snapshot()
	assert.Equal(t, models.StatusReady, snap.Status)
	assert.Equal(t, []models.Venue{venue("1"), venue("2")}, snap.Venues)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Searches.WithLabelValues(metrics.ResultOK)))
}

func TestPipeline_EmptyResultIsReady(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.commit("nothing here"))
	h.nextCall().resolve()
	require.True(t, h.handleNext())

	snap := h.p.Snapshot()
	assert.Equal(t, models.StatusReady, snap.Status)
	assert.NotNil(t, snap.Venues)
	assert.Empty(t, snap.Venues)
}

func TestPipeline_EmptyTermKeepsVenues(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.commit("sushi"))
	h.nextCall().resolve(venue("1"))
	require.True(t, h.handleNext())

	assert.False(t, h.commit(""))
	h.expectNoCall()

	snap := h.p.Snapshot()
	assert.Equal(t, "", snap.QueryText)
	assert.Equal(t, models.StatusReady, snap.Status)
	assert.Equal(t, []models.Venue{venue("1")}, snap.Venues)
}

func TestPipeline_BlankTermDoesNotFetch(t *testing.T) {
	h := newHarness(t)

	assert.False(t, h.commit("   "))
	h.expectNoCall()
	assert.Equal(t, models.StatusIdle, h.p.Snapshot().Status)
}

func TestPipeline_EmptyTermLetsPendingFetchLand(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.commit("ramen"))
	c := h.nextCall()
	assert.False(t, h.commit(""))

	c.resolve(venue("r"))
	require.True(t, h.handleNext())

	snap := h.p.Snapshot()
	assert.Equal(t, models.StatusReady, snap.Status)
	assert.Equal(t, []models.Venue{venue("r")}, snap.Venues)
}

func TestPipeline_RecommitAfterClearRefetches(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.commit("berlin"))
	h.nextCall().fail(errors.New("upstream down"))
	require.True(t, h.handleNext())

	assert.False(t, h.commit(""))
	h.expectNoCall()

	require.True(t, h.commit("berlin"))
	c := h.nextCall()
	assert.Equal(t, "berlin", c.term)
	assert.Equal(t, models.StatusPending, h.p.Snapshot().Status)

	c.resolve(venue("b1"))
	require.True(t, h.handleNext())
	assert.Equal(t, []models.Venue{venue("b1")}, h.p.Snapshot().Venues)
}

func TestPipeline_SameTermDoesNotRefetch(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.commit("pizza"))
	h.nextCall().resolve(venue("1"))
	require.True(t, h.handleNext())

	h.p.SetQueryText("pizzas")
	assert.False(t, h.commit("pizza"))
	h.expectNoCall()
	assert.Equal(t, models.StatusReady, h.p.Snapshot().Status)
}

func TestPipeline_StaleResultIsDiscarded(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.commit("a"))
	first := h.nextCall()
	require.True(t, h.commit("b"))
	second := h.nextCall()

	second.resolve(venue("b1"))
	require.True(t, h.handleNext())

	first.resolve(venue("a1"))
	assert.False(t, h.handleNext())

	snap := h.p.Snapshot()
	assert.Equal(t, models.StatusReady, snap.Status)
	assert.Equal(t, []models.Venue{venue("b1")}, snap.Venues)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.StaleResults))
}

func TestPipeline_StaleResultWhilePending(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.commit("a"))
	first := h.nextCall()
	require.True(t, h.commit("b"))
	second := h.nextCall()

	first.resolve(venue("a1"))
	assert.False(t, h.handleNext())
	assert.Equal(t, models.StatusPending, h.p.Snapshot().Status)

	second.resolve(venue("b1"))
	require.True(t, h.handleNext())
	assert.Equal(t, []models.Venue{venue("b1")}, h.p.Snapshot().Venues)
}

func TestPipeline_SupersededFetchIsCancelled(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.commit("a"))
	first := h.nextCall()
	require.True(t, h.commit("b"))
	second := h.nextCall()

	assert.ErrorIs(t, first.ctx.Err(), context.Canceled)
	assert.NoError(t, second.ctx.Err())
}

func TestPipeline_FailureBecomesEmptyReady(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.commit("tapas"))
	h.nextCall().fail(errors.New("connection reset"))
	require.True(t, h.handleNext())

	snap := h.p.Snapshot()
	assert.Equal(t, models.StatusReady, snap.Status)
	assert.NotNil(t, snap.Venues)
	assert.Empty(t, snap.Venues)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Searches.WithLabelValues(metrics.ResultError)))
}

func TestPipeline_FetchTimeout(t *testing.T) {
	h := newHarness(t)
	h.source.honorCtx = true

	require.True(t, h.commit("slow"))
	c := h.nextCall()

	h.clock.Advance(testTimeout)
	require.True(t, h.handleNext())

	assert.ErrorIs(t, c.ctx.Err(), context.DeadlineExceeded)
	snap := h.p.Snapshot()
	assert.Equal(t, models.StatusReady, snap.Status)
	assert.Empty(t, snap.Venues)
}

func TestPipeline_Close(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.commit("late"))
	c := h.nextCall()
	h.p.SetQueryText("later")

	h.p.Close()
	assert.ErrorIs(t, c.ctx.Err(), context.Canceled)

	c.resolve(venue("x"))
	h.clock.Advance(testWindow)
	h.expectQuiet()

	h.p.SetQueryText("ignored")
	assert.Equal(t, "later", h.p.Snapshot().QueryText)
	h.p.Close()
}
