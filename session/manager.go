// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultIdleTTL  = 2 * time.Hour
	janitorInterval = time.Minute
)

// Manager tracks live sessions by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config
	closed   bool
}

func NewManager(cfg Config) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
	}
}

// Create starts a new session with a fresh id.
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	s := New(uuid.NewString(), m.cfg)
	m.sessions[s.ID()] = s
	m.cfg.Metrics.SessionOpened()

	slog.Info("Session created", "session_id", s.ID())
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return s, nil
}

// Delete closes the session and forgets it.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}

	s.Close()
	m.cfg.Metrics.SessionClosed()
	slog.Info("Session deleted", "session_id", id)
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// RunJanitor closes sessions idle for longer than the configured TTL until
// ctx is cancelled.
func (m *Manager) RunJanitor(ctx context.Context) {
	ticker := m.cfg.Clock.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if n := m.evictIdle(); n > 0 {
				slog.Info("Evicted idle sessions", "count", n, "remaining", m.Len())
			}
		}
	}
}

func (m *Manager) evictIdle() int {
	now := m.cfg.Clock.Now()

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen()) > m.cfg.IdleTTL {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
		m.cfg.Metrics.SessionClosed()
		slog.Debug("Session expired", "session_id", s.ID())
	}
	return len(idle)
}

// Close closes every session. Create fails afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		m.cfg.Metrics.SessionClosed()
	}
}
