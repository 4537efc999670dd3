// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/venue-vote/cliparse"
	"github.com/danielhkuo/venue-vote/db"
	"github.com/danielhkuo/venue-vote/models"
	"github.com/danielhkuo/venue-vote/session"
	"github.com/danielhkuo/venue-vote/venues"
)

// SetupTestDB opens a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    ":memory:",
		DatabaseType:   db.TypeSQLite,
		VenueSource:    cliparse.SourceMock,
		DebounceWindow: 100 * time.Millisecond,
		FetchTimeout:   time.Second,
		CacheTTL:       time.Minute,
		SessionIdleTTL: time.Hour,
		UpstreamRate:   100,
		UpstreamBurst:  10,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// NewTestManager creates a session manager on a fake clock. Sessions are
// closed when the test ends.
func NewTestManager(t *testing.T, source venues.Source) (*session.Manager, *clockwork.FakeClock) {
	t.Helper()

	cfg := GetTestConfig()
	clock := clockwork.NewFakeClock()
	mgr := session.NewManager(session.Config{
		Source:       source,
		Clock:        clock,
		Debounce:     cfg.DebounceWindow,
		FetchTimeout: cfg.FetchTimeout,
		IdleTTL:      cfg.SessionIdleTTL,
	})
	t.Cleanup(mgr.Close)

	return mgr, clock
}

// StubSource answers searches from a fixed table and records every call
type StubSource struct {
	mu      sync.Mutex
	results map[string][]models.Venue
	err     error
	calls   []string
}

func NewStubSource(results map[string][]models.Venue) *StubSource {
	return &StubSource{results: results}
}

// Fail makes every following search return err
func (s *StubSource) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *StubSource) SearchVenues(ctx context.Context, query string) ([]models.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, query)
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.results[query]), nil
}

// Calls returns the queries searched so far
func (s *StubSource) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// Venue builds a venue with the given id and name
func Venue(id, name string) models.Venue {
	return models.Venue{ID: id, Name: name, Categories: []string{}}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
