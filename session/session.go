// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/venue-vote/logging"
	"github.com/danielhkuo/venue-vote/metrics"
	"github.com/danielhkuo/venue-vote/models"
	"github.com/danielhkuo/venue-vote/search"
	"github.com/danielhkuo/venue-vote/venues"
	"github.com/danielhkuo/venue-vote/vote"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session closed")
)

const (
	requestBuffer = 16
	inboxBuffer   = 16
)

// Config holds what every session needs. Zero durations fall back to the
// search package defaults.
type Config struct {
	Source       venues.Source
	Clock        clockwork.Clock
	Metrics      *metrics.Metrics
	Debounce     time.Duration
	FetchTimeout time.Duration
	IdleTTL      time.Duration
}

// Command is a presentation command. The set is closed.
type Command interface{ isCommand() }

type baseCommand struct{}

func (baseCommand) isCommand() {}

type SetQueryText struct {
	baseCommand
	Text string
}

type AddParticipant struct {
	baseCommand
}

type RemoveParticipant struct {
	baseCommand
	ID models.ParticipantID
}

type RenameParticipant struct {
	baseCommand
	ID   models.ParticipantID
	Name string
}

type VoteFor struct {
	baseCommand
	ParticipantID models.ParticipantID
	VenueID       models.VenueID
}

type ResetAllParticipants struct {
	baseCommand
}

// request is the internal message set of the session loop.
type request interface{ isRequest() }

type baseRequest struct{}

func (baseRequest) isRequest() {}

type executeReq struct {
	baseRequest
	command Command
	reply   chan models.SessionState
}

type stateReq struct {
	baseRequest
	reply chan models.SessionState
}

type subscribeReq struct {
	baseRequest
	ch chan models.SessionState
}

type unsubscribeReq struct {
	baseRequest
	ch chan models.SessionState
}

// Session is one voting room. A single goroutine owns its query pipeline,
// its participant store and its subscribers; everything else talks to it
// through messages.
type Session struct {
	id       string
	clock    clockwork.Clock
	metrics  *metrics.Metrics
	log      *slog.Logger
	reqCh    chan request
	inbox    chan search.Message
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	lastSeen atomic.Int64

	// Owned by run.
	pipeline    *search.Pipeline
	store       *vote.Store
	subscribers map[chan models.SessionState]struct{}
}

// New starts a session with the given id.
func New(id string, cfg Config) *Session {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	s := &Session{
		id:          id,
		clock:       cfg.Clock,
		metrics:     cfg.Metrics,
		log:         logging.WithSession(id),
		reqCh:       make(chan request, requestBuffer),
		inbox:       make(chan search.Message, inboxBuffer),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		store:       vote.NewStore(),
		subscribers: make(map[chan models.SessionState]struct{}),
	}

	opts := []search.Option{
		search.WithClock(cfg.Clock),
		search.WithMetrics(cfg.Metrics),
	}
	if cfg.Debounce > 0 {
		opts = append(opts, search.WithDebounce(cfg.Debounce))
	}
	if cfg.FetchTimeout > 0 {
		opts = append(opts, search.WithFetchTimeout(cfg.FetchTimeout))
	}
	s.pipeline = search.New(cfg.Source, s.inbox, opts...)

	s.touch()
	go s.run()
	return s
}

func (s *Session) ID() string {
	return s.id
}

// LastSeen reports when the session last served a request.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Execute applies cmd and returns the resulting state.
func (s *Session) Execute(ctx context.Context, cmd Command) (models.SessionState, error) {
	reply := make(chan models.SessionState, 1)
	if err := s.send(ctx, executeReq{command: cmd, reply: reply}); err != nil {
		return models.SessionState{}, err
	}
	return s.await(ctx, reply)
}

// State returns the current read model.
func (s *Session) State(ctx context.Context) (models.SessionState, error) {
	reply := make(chan models.SessionState, 1)
	if err := s.send(ctx, stateReq{reply: reply}); err != nil {
		return models.SessionState{}, err
	}
	return s.await(ctx, reply)
}

// Subscribe returns a channel that always holds the latest state. The
// current state is delivered immediately. The channel is closed after
// cancel is called or the session closes.
func (s *Session) Subscribe(ctx context.Context) (<-chan models.SessionState, func(), error) {
	ch := make(chan models.SessionState, 1)
	if err := s.send(ctx, subscribeReq{ch: ch}); err != nil {
		return nil, nil, err
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			select {
			case s.reqCh <- unsubscribeReq{ch: ch}:
			case <-s.done:
			}
		})
	}
	return ch, cancel, nil
}

// Close stops the session loop and its pipeline. It blocks until the loop
// has exited. Later calls return immediately.
func (s *Session) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Session) send(ctx context.Context, req request) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	select {
	case s.reqCh <- req:
		s.touch()
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) await(ctx context.Context, reply <-chan models.SessionState) (models.SessionState, error) {
	select {
	case st := <-reply:
		return st, nil
	case <-s.done:
		select {
		case st := <-reply:
			return st, nil
		default:
			return models.SessionState{}, ErrClosed
		}
	case <-ctx.Done():
		return models.SessionState{}, ctx.Err()
	}
}

func (s *Session) touch() {
	s.lastSeen.Store(s.clock.Now().UnixNano())
}

func (s *Session) run() {
	defer close(s.done)
	defer s.shutdown()

	for {
		select {
		case req := <-s.reqCh:
			s.handleRequest(req)

		case msg := <-s.inbox:
			if s.pipeline.Handle(msg) {
				// Votes never carry over to a different result set.
				s.store.Dispatch(vote.ResetVotes{})
				st := s.state()
				s.log.Debug("Venue set changed", "status", st.Status, "venues", len(st.Venues))
				s.publish(st)
			}

		case <-s.stop:
			return
		}
	}
}

func (s *Session) handleRequest(req request) {
	switch r := req.(type) {
	case executeReq:
		st := s.execute(r.command)
		r.reply <- st
	case stateReq:
		r.reply <- s.state()
	case subscribeReq:
		s.subscribers[r.ch] = struct{}{}
		deliver(r.ch, s.state())
	case unsubscribeReq:
		if _, ok := s.subscribers[r.ch]; ok {
			delete(s.subscribers, r.ch)
			close(r.ch)
		}
	default:
		panic(fmt.Sprintf("session: unhandled request %T", req))
	}
}

func (s *Session) execute(cmd Command) models.SessionState {
	var name string
	switch c := cmd.(type) {
	case SetQueryText:
		name = "set_query_text"
		s.pipeline.SetQueryText(c.Text)
	case AddParticipant:
		name = "add_participant"
		s.store.Add()
	case RemoveParticipant:
		name = "remove_participant"
		s.store.Dispatch(vote.RemovedParticipant{ID: c.ID})
	case RenameParticipant:
		name = "rename_participant"
		s.store.Dispatch(vote.RenamedParticipant{ID: c.ID, Name: c.Name})
	case VoteFor:
		name = "vote"
		s.store.Dispatch(vote.Voted{ParticipantID: c.ParticipantID, VenueID: c.VenueID})
	case ResetAllParticipants:
		name = "reset_all_participants"
		s.store.Dispatch(vote.ResetAll{})
	default:
		panic(fmt.Sprintf("session: unhandled command %T", cmd))
	}
	s.metrics.Command(name)

	st := s.state()
	s.publish(st)
	return st
}

func (s *Session) state() models.SessionState {
	snap := s.pipeline.Snapshot()
	participants := s.store.Participants()

	var tallied []models.TalliedVenue
	if snap.Status != models.StatusPending {
		tallied = vote.Tally(snap.Venues, participants)
	}

	return models.SessionState{
		SessionID:    s.id,
		QueryText:    snap.QueryText,
		Status:       snap.Status,
		Venues:       tallied,
		Participants: participants,
	}
}

func (s *Session) publish(st models.SessionState) {
	for ch := range s.subscribers {
		deliver(ch, st)
	}
}

// deliver replaces whatever the subscriber has not read yet. Only the
// session loop sends on subscriber channels, so the second send never
// blocks.
func deliver(ch chan models.SessionState, st models.SessionState) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- st:
	default:
	}
}

func (s *Session) shutdown() {
	s.pipeline.Close()
	for ch := range s.subscribers {
		close(ch)
	}
	clear(s.subscribers)
	s.log.Debug("Session loop stopped", "subscribers", len(s.subscribers))
}
