// Package dispatch fans one action out across a batch of credentials.
//
// This file implements the Prometheus collectors of the dispatch engine,
// registered the same way as the orchestrator's request metrics.
//
// EXPORTED METRICS:
//   - fanout_dispatch_outcomes_total{group,code}: calls by outcome code
//   - fanout_dispatch_duration_seconds{group}: wall time of one batch
//   - fanout_dispatch_calls_in_flight: calls currently waiting on the remote
//
// The in-flight gauge covers every concurrent dispatch, so it shows how close
// the daemon runs to its --max-in-flight and --rate limits.
package dispatch

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the dispatch collectors. A nil *Metrics records nothing.
type Metrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics returns metrics registered once with the global registry.
// The daemon uses it; tests build their own with MustNewMetrics so that runs
// do not share counters.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics registers the dispatch collectors with reg and panics on
// conflicting registrations. Tests pass a fresh prometheus.NewRegistry().
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fanout",
				Subsystem: "dispatch",
				Name:      "outcomes_total",
				Help:      "Dispatched calls by group and outcome code.",
			},
			[]string{"group", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fanout",
				Subsystem: "dispatch",
				Name:      "duration_seconds",
				Help:      "Wall time to dispatch one batch.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"group"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "fanout",
				Subsystem: "dispatch",
				Name:      "calls_in_flight",
				Help:      "Remote calls currently in flight.",
			},
		),
	}
	reg.MustRegister(m.outcomes, m.duration, m.inFlight)
	return m
}

// observe records a finished batch: every outcome code, including zero
// counts, and its duration.
func (m *Metrics) observe(group string, report Report) {
	if m == nil {
		return
	}
	for code, n := range report.Counts {
		m.outcomes.WithLabelValues(group, code).Add(float64(n))
	}
	m.duration.WithLabelValues(group).Observe(report.Elapsed.Seconds())
}

func (m *Metrics) callStarted() {
	if m != nil {
		m.inFlight.Inc()
	}
}

func (m *Metrics) callDone() {
	if m != nil {
		m.inFlight.Dec()
	}
}
