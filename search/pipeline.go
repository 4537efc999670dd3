// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/venue-vote/metrics"
	"github.com/danielhkuo/venue-vote/models"
	"github.com/danielhkuo/venue-vote/venues"
)

// Defaults
const (
	DefaultDebounce     = 500 * time.Millisecond
	DefaultFetchTimeout = 10 * time.Second
)

// Message is delivered on the owner's inbox when the debounce window closes
// or a fetch completes. The owner passes it back through Handle.
type Message interface{ message() }

type commitMsg struct {
	seq  uint64
	term string
}

type resultMsg struct {
	generation uint64
	venues     []models.Venue
	err        error
	started    time.Time
}

func (commitMsg) message() {}
func (resultMsg) message() {}

// Snapshot is the read model of a pipeline. Venues is nil while pending.
type Snapshot struct {
	QueryText string
	Status    string
	Venues    []models.Venue
}

// Pipeline turns raw query text into a venue list. It is not safe for
// concurrent use: every method must be called from the goroutine that reads
// the inbox.
type Pipeline struct {
	source       venues.Source
	clock        clockwork.Clock
	window       time.Duration
	fetchTimeout time.Duration
	metrics      *metrics.Metrics
	inbox        chan<- Message
	done         chan struct{}

	text       string
	term       string
	seq        uint64
	generation uint64
	status     string
	venues     []models.Venue
	timer      clockwork.Timer
	cancel     context.CancelFunc
	closed     bool
}

type Option func(*Pipeline)

func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) { p.window = d }
}

func WithFetchTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.fetchTimeout = d }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates an idle pipeline that posts its messages to inbox.
func New(source venues.Source, inbox chan<- Message, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:       source,
		clock:        clockwork.NewRealClock(),
		window:       DefaultDebounce,
		fetchTimeout: DefaultFetchTimeout,
		inbox:        inbox,
		done:         make(chan struct{}),
		status:       models.StatusIdle,
		venues:       []models.Venue{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetQueryText updates the displayed text and restarts the debounce window.
func (p *Pipeline) SetQueryText(text string) {
	if p.closed {
		return
	}
	p.text = text
	p.seq++
	seq := p.seq

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = p.clock.AfterFunc(p.window, func() {
		p.post(commitMsg{seq: seq, term: text})
	})
}

// Handle applies a message from the inbox. It reports whether the venue
// result set changed, either to pending or to a new ready list.
func (p *Pipeline) Handle(msg Message) bool {
	if p.closed {
		return false
	}

	switch m := msg.(type) {
	case commitMsg:
		return p.commit(m)
	case resultMsg:
		return p.apply(m)
	default:
		panic(fmt.Sprintf("search: unhandled message %T", msg))
	}
}

func (p *Pipeline) commit(m commitMsg) bool {
	// A later keystroke restarted the window after this timer fired.
	if m.seq != p.seq {
		return false
	}
	p.timer = nil

	if m.term == p.term {
		return false
	}

	// An empty commit starts no fetch and keeps the current venues, but it
	// is still the committed term, so retyping the previous one searches
	// again.
	if strings.TrimSpace(m.term) == "" {
		p.term = m.term
		return false
	}

	if p.cancel != nil {
		p.cancel()
	}

	p.term = m.term
	p.generation++
	p.status = models.StatusPending
	p.venues = nil

	ctx, cancel := clockwork.WithTimeout(context.Background(), p.clock, p.fetchTimeout)
	p.cancel = cancel
	go p.fetch(ctx, p.generation, m.term)

	slog.Debug("Search committed", "term", m.term, "generation", p.generation)
	return true
}

func (p *Pipeline) fetch(ctx context.Context, generation uint64, term string) {
	started := p.clock.Now()
	found, err := p.source.SearchVenues(ctx, term)
	p.post(resultMsg{
		generation: generation,
		venues:     found,
		err:        err,
		started:    started,
	})
}

func (p *Pipeline) apply(m resultMsg) bool {
	if m.generation != p.generation {
		p.metrics.StaleResult()
		slog.Debug("Discarded stale search result", "generation", m.generation, "current", p.generation)
		return false
	}

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	result := metrics.ResultOK
	found := slices.Clone(m.venues)
	if m.err != nil {
		slog.Warn("Venue search failed", "term", p.term, "error", m.err)
		result = metrics.ResultError
		found = nil
	}
	if found == nil {
		found = []models.Venue{}
	}
	p.metrics.SearchFinished(result, p.clock.Since(m.started))

	p.status = models.StatusReady
	p.venues = found
	return true
}

// Snapshot returns the current read model. The venue slice must not be
// modified.
func (p *Pipeline) Snapshot() Snapshot {
	return Snapshot{
		QueryText: p.text,
		Status:    p.status,
		Venues:    p.venues,
	}
}

// Close stops the debounce timer, cancels any fetch in flight and releases
// goroutines waiting to post to the inbox.
func (p *Pipeline) Close() {
	if p.closed {
		return
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	if p.cancel != nil {
		p.cancel()
	}
	close(p.done)
}

func (p *Pipeline) post(msg Message) {
	select {
	case <-p.done:
		return
	default:
	}
	select {
	case p.inbox <- msg:
	case <-p.done:
	}
}
