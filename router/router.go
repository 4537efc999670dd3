// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/venue-vote/handlers"
	"github.com/danielhkuo/venue-vote/metrics"
	"github.com/danielhkuo/venue-vote/middleware"
	"github.com/danielhkuo/venue-vote/session"
)

// NewRouter registers every endpoint. A nil registry leaves /metrics out.
func NewRouter(sessions *session.Manager, reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessions)
	streamHandler := handlers.NewStreamHandler(sessions, clockwork.NewRealClock())

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if reg != nil {
		mux.Handle("GET /metrics", metrics.Handler(reg))
	}

	// Session lifecycle
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("DELETE /sessions/{id}", middleware.WithLogging(sessionHandler.DeleteSession))
	mux.HandleFunc("PUT /sessions/{id}/query", middleware.WithLogging(sessionHandler.SetQuery))
	mux.HandleFunc("GET /sessions/{id}/stream", middleware.WithLogging(streamHandler.Stream))

	// Participants and votes
	mux.HandleFunc("POST /sessions/{id}/participants", middleware.WithLogging(sessionHandler.AddParticipant))
	mux.HandleFunc("DELETE /sessions/{id}/participants", middleware.WithLogging(sessionHandler.ResetParticipants))
	mux.HandleFunc("PATCH /sessions/{id}/participants/{pid}", middleware.WithLogging(sessionHandler.RenameParticipant))
	mux.HandleFunc("DELETE /sessions/{id}/participants/{pid}", middleware.WithLogging(sessionHandler.RemoveParticipant))
	mux.HandleFunc("PUT /sessions/{id}/participants/{pid}/vote", middleware.WithLogging(sessionHandler.Vote))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("venue-vote API v1"))
	})

	return mux
}
