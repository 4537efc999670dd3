// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package vote holds the participant reducer and the vote tally.

# Actions

Participant state changes only through six actions:

	AddedParticipant{Participant}
	RemovedParticipant{ID}
	RenamedParticipant{ID, Name}
	Voted{ParticipantID, VenueID}
	ResetVotes{}
	ResetAll{}

Reduce is pure. Actions that name an unknown participant are no-ops and
return the input slice unchanged.

# Store

Store keeps the current list and the action log:

	store := vote.NewStore()
	p := store.Add()
	store.Dispatch(vote.Voted{ParticipantID: p.ID, VenueID: "v1"})

Replay(store.Log()) yields the same list as store.Participants(). Long logs
are compacted into one AddedParticipant per participant.

# Tally

	tallied := vote.Tally(venues, store.Participants())

Each venue gets its vote count. The winner flag is set only when exactly one
venue holds the highest count.
*/
package vote
