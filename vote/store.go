// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/danielhkuo/venue-vote/models"
)

// --- Action types ---

// Action is one of the six participant actions below. The set is closed:
// only this package can implement it.
type Action interface{ action() }

type AddedParticipant struct {
	Participant models.Participant
}

func (AddedParticipant) action() {}

type RemovedParticipant struct {
	ID models.ParticipantID
}

func (RemovedParticipant) action() {}

type RenamedParticipant struct {
	ID   models.ParticipantID
	Name string
}

func (RenamedParticipant) action() {}

type Voted struct {
	ParticipantID models.ParticipantID
	VenueID       models.VenueID
}

func (Voted) action() {}

// ResetVotes clears every vote but keeps ids, names and order.
type ResetVotes struct{}

func (ResetVotes) action() {}

// ResetAll empties the participant list.
type ResetAll struct{}

func (ResetAll) action() {}

// --- Reducer ---

// Reduce applies action to state and returns the new state. The input slice
// is never modified. Actions that change nothing (unknown id, duplicate add)
// return state itself.
func Reduce(state []models.Participant, action Action) []models.Participant {
	switch a := action.(type) {
	case AddedParticipant:
		if indexOf(state, a.Participant.ID) >= 0 {
			return state
		}
		next := make([]models.Participant, len(state), len(state)+1)
		copy(next, state)
		return append(next, a.Participant)

	case RemovedParticipant:
		i := indexOf(state, a.ID)
		if i < 0 {
			return state
		}
		return slices.Delete(slices.Clone(state), i, i+1)

	case RenamedParticipant:
		return update(state, a.ID, func(p *models.Participant) {
			p.Name = a.Name
		})

	case Voted:
		venueID := a.VenueID
		return update(state, a.ParticipantID, func(p *models.Participant) {
			p.VotedFor = &venueID
		})

	case ResetVotes:
		next := make([]models.Participant, len(state))
		for i, p := range state {
			p.VotedFor = nil
			next[i] = p
		}
		return next

	case ResetAll:
		return []models.Participant{}

	default:
		panic(fmt.Sprintf("vote: unhandled action %T", action))
	}
}

func indexOf(state []models.Participant, id models.ParticipantID) int {
	return slices.IndexFunc(state, func(p models.Participant) bool {
		return p.ID == id
	})
}

func update(state []models.Participant, id models.ParticipantID, fn func(*models.Participant)) []models.Participant {
	i := indexOf(state, id)
	if i < 0 {
		return state
	}
	next := slices.Clone(state)
	fn(&next[i])
	return next
}

// Replay rebuilds participant state from an action log.
func Replay(actions []Action) []models.Participant {
	state := []models.Participant{}
	for _, a := range actions {
		state = Reduce(state, a)
	}
	return state
}

// --- Store ---

const logCompactAt = 1024

// Store holds the current participant list and the log of actions that
// produced it. It is not safe for concurrent use.
type Store struct {
	state []models.Participant
	log   []Action
	newID func() string
}

func NewStore() *Store {
	return &Store{
		state: []models.Participant{},
		newID: uuid.NewString,
	}
}

// Dispatch applies an action and appends it to the log. Once the log passes
// logCompactAt entries it is replaced by one AddedParticipant per current
// participant, which replays to the same state.
func (s *Store) Dispatch(action Action) {
	s.state = Reduce(s.state, action)
	s.log = append(s.log, action)

	if len(s.log) > logCompactAt && len(s.log) > 2*len(s.state) {
		s.compact()
	}
}

func (s *Store) compact() {
	log := make([]Action, len(s.state))
	for i, p := range s.state {
		log[i] = AddedParticipant{Participant: p}
	}
	s.log = log
}

// Add creates a participant with a fresh id, an empty name and no vote.
func (s *Store) Add() models.Participant {
	p := models.Participant{ID: s.newID()}
	s.Dispatch(AddedParticipant{Participant: p})
	return p
}

// Participants returns the current list in insertion order. Callers must
// not modify it.
func (s *Store) Participants() []models.Participant {
	return s.state
}

func (s *Store) Log() []Action {
	return slices.Clone(s.log)
}
