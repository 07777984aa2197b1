// Package dispatch fans one action out across a batch of credentials.
//
// Every credential gets its own call with the same pre-encoded payload. Calls
// are isolated from each other: a failing call never cancels the rest, and
// the caller cancelling its context does not abort a batch already started.
// The engine waits for every call before reporting.
//
// CONCURRENCY MODEL:
//   - One errgroup goroutine per credential, optionally bounded by
//     MaxInFlight through errgroup.SetLimit
//   - Optional pacing with a token bucket (golang.org/x/time/rate) shared by
//     every dispatch of the engine
//   - Outcomes are written to a slice indexed by batch position, so no lock
//     is needed and the report keeps batch order
//
// OUTCOME CLASSIFICATION:
// The remote client classifies each call: 200 is a success, any other status
// is a rejection, a call past its deadline is a timeout, and a transport
// failure or a blank token is a transport error. The engine only counts
// them; nothing is retried.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/concave-dev/fanout/internal/credential"
	"github.com/concave-dev/fanout/internal/logging"
	"github.com/concave-dev/fanout/internal/remote"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Report summarizes one dispatch. Outcomes are in batch order.
//
// Counts always holds every outcome code, zero counts included, so
// consumers can rely on the keys being present. Failed is Attempted minus
// Succeeded.
type Report struct {
	Attempted int              `json:"attempted"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Counts    map[string]int   `json:"counts"`
	Outcomes  []remote.Outcome `json:"-"`
	Elapsed   time.Duration    `json:"elapsed_ns"`
}

// Engine dispatches batches through a remote client. It is safe for
// concurrent use; concurrent dispatches share only the rate limiter and the
// metrics.
type Engine struct {
	client  remote.Client
	cfg     *Config
	limiter *rate.Limiter
	metrics *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records outcomes and durations in m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an engine. A nil cfg uses DefaultConfig. When cfg.Rate
// is set the engine builds one limiter that paces every dispatch it runs.
func NewEngine(client remote.Client, cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dispatch config: %w", err)
	}

	e := &Engine{client: client, cfg: cfg}
	if cfg.Rate > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Dispatch sends payload once per credential in batch and waits for all
// calls. An empty batch returns a zero report without calling the client.
//
// The calls run on a context detached from ctx: cancelling ctx (for example
// a disconnecting HTTP caller) does not abort a batch that has started, and
// each call is bounded only by the client's per-call deadline. Values such
// as the trace span are still carried over.
func (e *Engine) Dispatch(ctx context.Context, group string, target uint64, batch []credential.Credential, payload []byte) Report {
	report := Report{Counts: make(map[string]int, len(remote.Codes))}
	for _, code := range remote.Codes {
		report.Counts[code.String()] = 0
	}
	if len(batch) == 0 {
		return report
	}

	// Calls outlive the caller; each one is bounded by the client's own deadline
	callCtx := context.WithoutCancel(ctx)

	start := time.Now()
	outcomes := make([]remote.Outcome, len(batch))

	var g errgroup.Group
	if e.cfg.MaxInFlight > 0 {
		g.SetLimit(e.cfg.MaxInFlight)
	}
	for i, cred := range batch {
		g.Go(func() error {
			if e.limiter != nil {
				// Cannot fail: callCtx is never cancelled and burst is at least 1
				_ = e.limiter.Wait(callCtx)
			}
			e.metrics.callStarted()
			defer e.metrics.callDone()

			outcomes[i] = e.client.Do(callCtx, remote.Call{
				Kind:       remote.KindAction,
				Group:      group,
				Credential: cred,
				Payload:    payload,
			}).Outcome
			return nil
		})
	}
	_ = g.Wait()

	report.Attempted = len(batch)
	report.Outcomes = outcomes
	report.Elapsed = time.Since(start)
	for _, o := range outcomes {
		report.Counts[o.Code.String()]++
		if o.OK() {
			report.Succeeded++
		}
	}
	report.Failed = report.Attempted - report.Succeeded

	e.metrics.observe(group, report)
	logging.Info("Dispatched %d calls for %d in %s: %d succeeded, %d failed (took %v)",
		report.Attempted, target, group, report.Succeeded, report.Failed, report.Elapsed.Round(time.Millisecond))
	return report
}
