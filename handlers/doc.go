// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the venue-vote API.

# Handler Types

Each handler is a struct over the session manager:

  - SessionHandler: session lifecycle, query text, participants and votes
  - StreamHandler: WebSocket push of session state

	sessionHandler := handlers.NewSessionHandler(manager)
	streamHandler := handlers.NewStreamHandler(manager, clockwork.NewRealClock())

# Sessions

	POST   /sessions        → CreateSession (201, returns session_id)
	GET    /sessions/{id}   → GetSession
	DELETE /sessions/{id}   → DeleteSession (204)
	PUT    /sessions/{id}/query → SetQuery {"text": "..."}

Setting the query text returns immediately. The search runs after the
debounce window; watch status go from "pending" to "ready" through
GetSession or the stream.

# Participants

	POST   /sessions/{id}/participants            → AddParticipant (201)
	DELETE /sessions/{id}/participants            → ResetParticipants
	PATCH  /sessions/{id}/participants/{pid}      → RenameParticipant {"name": "..."}
	DELETE /sessions/{id}/participants/{pid}      → RemoveParticipant
	PUT    /sessions/{id}/participants/{pid}/vote → Vote {"venue_id": "..."}

Unknown participant ids are not an error: the command is a no-op and the
unchanged state is returned with 200.

# Stream

	GET /sessions/{id}/stream

Upgrades to a WebSocket and sends the full SessionState as JSON on connect
and after every change. Slow clients skip intermediate states. The server
pings every 30 seconds and closes with 1001 when the session goes away.

# Error Responses

	404 Not Found            unknown session
	410 Gone                 session closed while handling the request
	400 Bad Request          malformed body or missing venue_id
	503 Service Unavailable  request cancelled or server shutting down
*/
package handlers
