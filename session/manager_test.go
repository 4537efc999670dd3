// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/venue-vote/metrics"
)

func newTestManager(t *testing.T) (*Manager, *clockwork.FakeClock, *metrics.Metrics) {
	t.Helper()

	clock := clockwork.NewFakeClock()
	m := metrics.New(metrics.NewRegistry())
	mgr := NewManager(Config{
		Source:   fixedSource(nil, nil),
		Clock:    clock,
		Metrics:  m,
		Debounce: testDebounce,
		IdleTTL:  2 * time.Hour,
	})
	t.Cleanup(mgr.Close)
	return mgr, clock, m
}

func TestManager_CreateGetDelete(t *testing.T) {
	mgr, _, m := newTestManager(t)

	s, err := mgr.Create()
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 1, mgr.Len())

	got, err := mgr.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	st, err := got.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s.ID(), st.SessionID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))

	require.NoError(t, mgr.Delete(s.ID()))
	assert.Equal(t, 0, mgr.Len())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SessionsActive))

	_, err = mgr.Get(s.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, mgr.Delete(s.ID()), ErrNotFound)

	_, err = s.State(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestManager_UniqueIDs(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	seen := map[string]bool{}
	for range 20 {
		s, err := mgr.Create()
		require.NoError(t, err)
		assert.False(t, seen[s.ID()], "duplicate id %s", s.ID())
		seen[s.ID()] = true
	}
	assert.Equal(t, 20, mgr.Len())
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	a, err := mgr.Create()
	require.NoError(t, err)
	b, err := mgr.Create()
	require.NoError(t, err)

	_, err = a.Execute(context.Background(), AddParticipant{})
	require.NoError(t, err)

	st, err := b.State(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st.Participants)
}

func TestManager_JanitorEvictsIdleSessions(t *testing.T) {
	mgr, clock, m := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mgr.RunJanitor(ctx)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	stale, err := mgr.Create()
	require.NoError(t, err)

	clock.Advance(time.Hour)

	fresh, err := mgr.Create()
	require.NoError(t, err)

	clock.Advance(time.Hour + janitorInterval)

	assert.Eventually(t, func() bool { return mgr.Len() == 1 }, time.Second, time.Millisecond)

	_, err = mgr.Get(stale.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = mgr.Get(fresh.ID())
	assert.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
}

func TestManager_ActivityKeepsSessionAlive(t *testing.T) {
	mgr, clock, _ := newTestManager(t)

	s, err := mgr.Create()
	require.NoError(t, err)

	clock.Advance(90 * time.Minute)
	_, err = s.State(context.Background())
	require.NoError(t, err)
	clock.Advance(90 * time.Minute)

	assert.Equal(t, 0, mgr.evictIdle())
	assert.Equal(t, 1, mgr.Len())

	clock.Advance(time.Hour)
	assert.Equal(t, 1, mgr.evictIdle())
	assert.Equal(t, 0, mgr.Len())
}

func TestManager_Close(t *testing.T) {
	mgr, _, m := newTestManager(t)

	s, err := mgr.Create()
	require.NoError(t, err)

	mgr.Close()

	assert.Equal(t, 0, mgr.Len())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SessionsActive))
	_, err = s.State(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	_, err = mgr.Create()
	assert.ErrorIs(t, err, ErrClosed)
}
