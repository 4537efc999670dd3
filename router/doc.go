// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the venue-vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(manager, registry)

# Endpoints

Operations:

	GET /health  - Liveness
	GET /metrics - Prometheus metrics
	GET /        - API banner

Sessions:

	POST   /sessions             - Create session
	GET    /sessions/{id}        - Current state
	DELETE /sessions/{id}        - Close session
	PUT    /sessions/{id}/query  - Set query text
	GET    /sessions/{id}/stream - WebSocket state stream

Participants:

	POST   /sessions/{id}/participants            - Add participant
	DELETE /sessions/{id}/participants            - Remove everyone
	PATCH  /sessions/{id}/participants/{pid}      - Rename
	DELETE /sessions/{id}/participants/{pid}      - Remove
	PUT    /sessions/{id}/participants/{pid}/vote - Vote for a venue

All session routes are wrapped with middleware.WithLogging.
*/
package router
