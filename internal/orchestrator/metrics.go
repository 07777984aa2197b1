// Package orchestrator runs a complete dispatch request.
//
// This file implements the request level Prometheus collectors.
//
// EXPORTED METRICS:
//   - fanout_requests_total{group,result}: requests by result, one of "ok",
//     "pool_unavailable" or "error"
//   - fanout_measurement_failures_total{group,phase}: unreliable counter
//     reads, phase "before" or "after"
//
// Per-call outcomes are counted by the dispatch engine's own collectors.
package orchestrator

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds request level collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests            *prometheus.CounterVec
	measurementFailures *prometheus.CounterVec
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics returns metrics registered once with the global registry.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics registers the request collectors with reg and panics on
// conflicting registrations. A nil reg uses the default registerer.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fanout",
				Name:      "requests_total",
				Help:      "Dispatch requests by group and result.",
			},
			[]string{"group", "result"},
		),
		measurementFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fanout",
				Name:      "measurement_failures_total",
				Help:      "Unreliable counter reads by group and phase (before, after).",
			},
			[]string{"group", "phase"},
		),
	}
	reg.MustRegister(m.requests, m.measurementFailures)
	return m
}

func (m *Metrics) request(group, result string) {
	if m != nil {
		m.requests.WithLabelValues(group, result).Inc()
	}
}

func (m *Metrics) measurementFailure(group, phase string) {
	if m != nil {
		m.measurementFailures.WithLabelValues(group, phase).Inc()
	}
}
