// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "venue_vote"

// Search results
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Cache lookups
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Metrics holds every series the service exports. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Searches            *prometheus.CounterVec
	SearchDuration      prometheus.Histogram
	StaleResults        prometheus.Counter
	CacheRequests       *prometheus.CounterVec
	CircuitBreakerState prometheus.Gauge
	SessionsActive      prometheus.Gauge
	Commands            *prometheus.CounterVec
}

// New creates and registers all metrics on the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of venue searches issued by sessions, by result.",
		}, []string{"result"}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of venue searches in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StaleResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_total",
			Help:      "Search results discarded because a newer search was committed.",
		}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Search cache lookups, by result.",
		}, []string{"result"}),
		CircuitBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Upstream circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of live voting sessions.",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Session commands executed, by command.",
		}, []string{"command"}),
	}

	reg.MustRegister(
		m.Searches,
		m.SearchDuration,
		m.StaleResults,
		m.CacheRequests,
		m.CircuitBreakerState,
		m.SessionsActive,
		m.Commands,
	)
	return m
}

func (m *Metrics) SearchFinished(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(result).Inc()
	m.SearchDuration.Observe(d.Seconds())
}

func (m *Metrics) StaleResult() {
	if m == nil {
		return
	}
	m.StaleResults.Inc()
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) BreakerState(state float64) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.Set(state)
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

func (m *Metrics) Command(name string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(name).Inc()
}
