// Package metrics exposes counters for the reconciliation engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder captures engine-level counters. Implementations must be safe for
// concurrent use.
type Recorder interface {
	IncRecomputeScheduled(kind string)
	IncRecomputeDispatched(kind string)
	IncRecomputeDropped(kind, cause string)
	IncMergeDecision(group, outcome string)
	IncFetchFailure(kind string)
}

// Noop implements Recorder without emitting anything.
type Noop struct{}

func (Noop) IncRecomputeScheduled(string)       {}
func (Noop) IncRecomputeDispatched(string)      {}
func (Noop) IncRecomputeDropped(string, string) {}
func (Noop) IncMergeDecision(string, string)    {}
func (Noop) IncFetchFailure(string)             {}

// Prom implements Recorder backed by Prometheus counters.
type Prom struct {
	registry            *prometheus.Registry
	recomputeScheduled  *prometheus.CounterVec
	recomputeDispatched *prometheus.CounterVec
	recomputeDropped    *prometheus.CounterVec
	mergeDecisions      *prometheus.CounterVec
	fetchFailures       *prometheus.CounterVec
}

// NewProm registers the engine counters under the given namespace.
func NewProm(namespace string) *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		recomputeScheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_scheduled_total",
			Help:      "Debounce timers armed, by kind",
		}, []string{"kind"}),
		recomputeDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_dispatched_total",
			Help:      "Recomputes actually dispatched, by kind",
		}, []string{"kind"}),
		recomputeDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_dropped_total",
			Help:      "Timer firings dropped, by kind and cause",
		}, []string{"kind", "cause"}),
		mergeDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_decisions_total",
			Help:      "Suggestion merge outcomes, by group and outcome",
		}, []string{"group", "outcome"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Collaborator fetch failures, by kind",
		}, []string{"kind"}),
	}
	p.registry.MustRegister(
		p.recomputeScheduled,
		p.recomputeDispatched,
		p.recomputeDropped,
		p.mergeDecisions,
		p.fetchFailures,
	)
	return p
}

func (p *Prom) IncRecomputeScheduled(kind string)  { p.recomputeScheduled.WithLabelValues(kind).Inc() }
func (p *Prom) IncRecomputeDispatched(kind string) { p.recomputeDispatched.WithLabelValues(kind).Inc() }
func (p *Prom) IncRecomputeDropped(kind, cause string) {
	p.recomputeDropped.WithLabelValues(kind, cause).Inc()
}
func (p *Prom) IncMergeDecision(group, outcome string) {
	p.mergeDecisions.WithLabelValues(group, outcome).Inc()
}
func (p *Prom) IncFetchFailure(kind string) { p.fetchFailures.WithLabelValues(kind).Inc() }

// Handler serves the registered counters.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
