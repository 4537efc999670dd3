// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/venue-vote/session"
)

const (
	writeDeadline = 5 * time.Second
	pingInterval  = 30 * time.Second
	pongDeadline  = 60 * time.Second
	readLimit     = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Same policy as CORS
	},
}

type StreamHandler struct {
	sessions *session.Manager
	clock    clockwork.Clock
}

func NewStreamHandler(sessions *session.Manager, clock clockwork.Clock) *StreamHandler {
	return &StreamHandler{sessions: sessions, clock: clock}
}

// Stream handles GET /sessions/{id}/stream
//
// The current state is pushed right after the upgrade and again on every
// change. Clients only read; commands go through the JSON API.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}

	updates, cancel, err := s.Subscribe(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		slog.Warn("websocket upgrade failed", "session_id", s.ID(), "error", err)
		return
	}
	defer conn.Close()

	readDone := make(chan struct{})
	go h.readPump(conn, readDone)

	ticker := h.clock.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case state, ok := <-updates:
			if !ok {
				h.writeClose(conn, "session closed")
				return
			}
			h.setWriteDeadline(conn)
			if err := conn.WriteJSON(state); err != nil {
				slog.Debug("websocket write failed", "session_id", s.ID(), "error", err)
				return
			}

		case <-ticker.Chan():
			h.setWriteDeadline(conn)
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-readDone:
			return
		}
	}
}

// readPump handles pongs and close frames until the connection fails.
func (h *StreamHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(h.clock.Now().Add(pongDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(h.clock.Now().Add(pongDeadline))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHandler) setWriteDeadline(conn *websocket.Conn) {
	_ = conn.SetWriteDeadline(h.clock.Now().Add(writeDeadline))
}

func (h *StreamHandler) writeClose(conn *websocket.Conn, reason string) {
	h.setWriteDeadline(conn)
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, reason)
	_ = conn.WriteMessage(websocket.CloseMessage, msg)
}
