// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session runs voting sessions.

# Sessions

A Session owns one search.Pipeline and one vote.Store. A single goroutine
applies every command, pipeline message and subscription change, so neither
needs locking:

	s, err := manager.Create()
	st, err := s.Execute(ctx, session.SetQueryText{Text: "ramen"})
	st, err = s.Execute(ctx, session.AddParticipant{})
	st, err = s.Execute(ctx, session.VoteFor{ParticipantID: pid, VenueID: vid})

Whenever the venue result set changes, to pending or to a new ready list,
the session clears every vote before it tallies or publishes.

# Subscriptions

Subscribe returns a channel with a buffer of one. Each publish replaces any
state the subscriber has not read, so a slow reader only ever sees the
latest state and never blocks the session.

# Manager

Manager maps ids to sessions. RunJanitor closes sessions that have not
served a request within Config.IdleTTL. Sessions live in memory only and
are lost on restart.

# Errors

  - ErrNotFound: unknown session id
  - ErrClosed: session or manager already closed
*/
package session
