// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Venue: a search result (id, name, optional url and rating, categories)
  - TalliedVenue: Venue plus votes and winner flag
  - Participant: id, name, optional voted_for venue id
  - SessionState: everything a client needs to render a session

# Request Types

  - SetQueryRequest: text
  - RenameParticipantRequest: name
  - VoteRequest: venue_id

# Response Types

  - CreateSessionResponse: session_id, state
  - AddParticipantResponse: participant_id, state
  - ErrorResponse: error, message

# Constants

Search status values:

	StatusIdle    = "idle"
	StatusPending = "pending"
	StatusReady   = "ready"

Optional fields (Venue.URL, Venue.Rating, Participant.VotedFor) are pointers
and encode as JSON null when absent.
*/
package models
