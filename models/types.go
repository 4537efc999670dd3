// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Search status constants
const (
	StatusIdle    = "idle"
	StatusPending = "pending"
	StatusReady   = "ready"
)

type VenueID = string

type ParticipantID = string

// Domain types

// Venue is a search result from a venue source. Treat as immutable.
type Venue struct {
	ID         VenueID  `json:"id"`
	Name       string   `json:"name"`
	URL        *string  `json:"url"`
	Rating     *float64 `json:"rating"`
	Categories []string `json:"categories"`
}

// TalliedVenue is a Venue annotated with its vote count.
// Winner is set on at most one venue of a tally.
type TalliedVenue struct {
	Venue
	Votes  int  `json:"votes"`
	Winner bool `json:"winner"`
}

type Participant struct {
	ID       ParticipantID `json:"id"`
	Name     string        `json:"name"`
	VotedFor *VenueID      `json:"voted_for"`
}

// SessionState is the read model handed to clients.
// Venues is nil (JSON null) while a search is pending.
type SessionState struct {
	SessionID    string         `json:"session_id"`
	QueryText    string         `json:"query_text"`
	Status       string         `json:"status"`
	Venues       []TalliedVenue `json:"venues"`
	Participants []Participant  `json:"participants"`
}

// Request types

type SetQueryRequest struct {
	Text string `json:"text"`
}

type RenameParticipantRequest struct {
	Name string `json:"name"`
}

type VoteRequest struct {
	VenueID VenueID `json:"venue_id"`
}

// Response types

type CreateSessionResponse struct {
	SessionID string       `json:"session_id"`
	State     SessionState `json:"state"`
}

type AddParticipantResponse struct {
	ParticipantID ParticipantID `json:"participant_id"`
	State         SessionState  `json:"state"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
