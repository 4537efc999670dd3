// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/venue-vote/middleware"
	"github.com/danielhkuo/venue-vote/models"
	"github.com/danielhkuo/venue-vote/session"
)

type SessionHandler struct {
	sessions *session.Manager
}

func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create()
	if err != nil {
		slog.Error("failed to create session", "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Server is shutting down")
		return
	}

	state, err := s.State(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID: s.ID(),
		State:     state,
	})
}

// GetSession handles GET /sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	state, err := s.State(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, state)
}

// DeleteSession handles DELETE /sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.PathValue("id")); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetQuery handles PUT /sessions/{id}/query
func (h *SessionHandler) SetQuery(w http.ResponseWriter, r *http.Request) {
	var req models.SetQueryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.execute(w, r, session.SetQueryText{Text: req.Text})
}

// AddParticipant handles POST /sessions/{id}/participants
func (h *SessionHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	state, err := s.Execute(r.Context(), session.AddParticipant{})
	if err != nil {
		writeSessionError(w, err)
		return
	}

	// Participants are appended, so the new one is last.
	added := state.Participants[len(state.Participants)-1]

	middleware.JSONResponse(w, http.StatusCreated, models.AddParticipantResponse{
		ParticipantID: added.ID,
		State:         state,
	})
}

// ResetParticipants handles DELETE /sessions/{id}/participants
func (h *SessionHandler) ResetParticipants(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, session.ResetAllParticipants{})
}

// RenameParticipant handles PATCH /sessions/{id}/participants/{pid}
func (h *SessionHandler) RenameParticipant(w http.ResponseWriter, r *http.Request) {
	var req models.RenameParticipantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.execute(w, r, session.RenameParticipant{
		ID:   r.PathValue("pid"),
		Name: req.Name,
	})
}

// RemoveParticipant handles DELETE /sessions/{id}/participants/{pid}
func (h *SessionHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, session.RemoveParticipant{ID: r.PathValue("pid")})
}

// Vote handles PUT /sessions/{id}/participants/{pid}/vote
func (h *SessionHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.VenueID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "venue_id is required")
		return
	}

	h.execute(w, r, session.VoteFor{
		ParticipantID: r.PathValue("pid"),
		VenueID:       req.VenueID,
	})
}

func (h *SessionHandler) execute(w http.ResponseWriter, r *http.Request, cmd session.Command) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	state, err := s.Execute(r.Context(), cmd)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, state)
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, err)
		return nil, false
	}
	return s, true
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, session.ErrClosed):
		middleware.ErrorResponse(w, http.StatusGone, "Session closed")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Request cancelled")
	default:
		slog.Error("session request failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Session error")
	}
}
