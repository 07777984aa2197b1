// Package orchestrator runs a complete dispatch request: it loads the group's
// pools, reads the counter, fans the action out over a selected batch, reads
// the counter again and reports the observed delta.
//
// Only a missing pool fails a request. Unreliable counter reads and failed
// calls are reported in the response instead.
//
// REQUEST FLOW:
//  1. Load the dispatch pool; empty fails with PoolUnavailableError
//  2. Load the measurement pool; its first entry reads the counter
//  3. Read the counter (before)
//  4. Select a batch from the dispatch pool
//  5. Encode the action once and dispatch it across the batch
//  6. Read the counter again (after)
//  7. Compute the delta and assemble the response
//
// The before read, the dispatch and the after read run strictly in order,
// so the after read observes every call of the batch. Each request gets a
// short hex id that prefixes its log lines and tags its trace span.
//
// OBSERVABILITY:
// Requests are traced as a "fanout.execute" span with child spans for both
// counter reads and the dispatch. Results and measurement failures are
// counted by the collectors in metrics.go.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/concave-dev/fanout/internal/credential"
	"github.com/concave-dev/fanout/internal/dispatch"
	"github.com/concave-dev/fanout/internal/logging"
	"github.com/concave-dev/fanout/internal/measure"
	"github.com/concave-dev/fanout/internal/remote"
	"github.com/concave-dev/fanout/internal/selector"
	"github.com/concave-dev/fanout/internal/telemetry"
	"github.com/concave-dev/fanout/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// UnknownName is reported when the target's display name is not known.
const UnknownName = "N/A"

// Request is one dispatch request.
type Request struct {
	Target uint64        // Target identifier passed to the remote action
	Group  string        // Group whose pools are used; normalized by Execute
	Mode   selector.Mode // Batch selection policy
}

// Response is the outcome of a dispatch request, returned as the "data" of
// the API's success envelope.
//
// TargetID and Name come from the after reading when it is reliable and
// carries them; otherwise TargetID is the requested target and Name is
// UnknownName. Status is serialized as its numeric code.
type Response struct {
	RequestID      string          `json:"request_id"`
	Delta          int64           `json:"delta"`
	After          int64           `json:"after"`
	Before         int64           `json:"before"`
	TargetID       uint64          `json:"target_id"`
	Name           string          `json:"name"`
	Status         measure.Status  `json:"status"`
	Group          string          `json:"group"`
	Mode           string          `json:"mode"`
	BatchSize      int             `json:"batch_size"`
	Dispatch       dispatch.Report `json:"dispatch"`
	BeforeReliable bool            `json:"before_reliable"`
	AfterReliable  bool            `json:"after_reliable"`
	Note           string          `json:"note"`
}

// PoolStatus describes one group's pools for diagnostics. Cursor is the
// rotation cursor of the group, zero until it first rotates.
type PoolStatus struct {
	Group       string `json:"group"`
	Pool        string `json:"pool"`
	Dispatch    int    `json:"dispatch"`
	Measurement int    `json:"measurement"`
	Cursor      int    `json:"cursor"`
}

// Config wires the service to its collaborators. Every field is required.
type Config struct {
	Provider credential.Provider
	Router   *credential.Router
	Selector *selector.Selector
	Reader   *measure.Reader
	Engine   *dispatch.Engine
	Codec    remote.Codec
}

// Validate checks that every collaborator is set.
func (c *Config) Validate() error {
	switch {
	case c.Provider == nil:
		return fmt.Errorf("provider cannot be nil")
	case c.Router == nil:
		return fmt.Errorf("router cannot be nil")
	case c.Selector == nil:
		return fmt.Errorf("selector cannot be nil")
	case c.Reader == nil:
		return fmt.Errorf("reader cannot be nil")
	case c.Engine == nil:
		return fmt.Errorf("engine cannot be nil")
	case c.Codec == nil:
		return fmt.Errorf("codec cannot be nil")
	}
	return nil
}

// Service executes dispatch requests. It holds no per-request state; the
// only shared mutable state is the selector's cursors.
type Service struct {
	cfg     Config
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records request results in m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a service.
func New(cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid orchestrator config: %w", err)
	}
	s := &Service{cfg: cfg, tracer: telemetry.Tracer()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Execute runs one request end to end.
//
// The returned error is always a *PoolUnavailableError or an action encoding
// failure; both mean nothing was dispatched. Once the dispatch has started
// Execute always returns a response, even when every call failed or both
// counter reads were unreliable.
//
// When the after read fails, its count falls back to the before count so
// the status degrades to Unchanged instead of reporting a drop to zero.
func (s *Service) Execute(ctx context.Context, req Request) (*Response, error) {
	group := credential.NormalizeGroup(req.Group)

	// An empty id still lets the request run; it only loses log correlation
	requestID, err := utils.GenerateID()
	if err != nil {
		logging.Warn("Failed to generate request id: %v", err)
	}

	ctx, span := s.tracer.Start(ctx, "fanout.execute", trace.WithAttributes(
		attribute.String("fanout.request_id", requestID),
		attribute.String("fanout.group", group),
		attribute.Int64("fanout.target", int64(req.Target)),
		attribute.String("fanout.mode", req.Mode.String()),
	))
	defer span.End()

	pool, measurementCred, err := s.loadPools(ctx, group)
	if err != nil {
		s.metrics.request(group, "pool_unavailable")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.Warn("[%s] Rejecting request for %d in %s: %v", requestID, req.Target, group, err)
		return nil, err
	}
	logging.Info("[%s] Total credentials available for %s: %d", requestID, group, len(pool))

	// Step 1: baseline counter read
	before := s.read(ctx, "before", group, req.Target, measurementCred)

	// Step 2: select the batch, advancing the group cursor in rotating mode
	batch := s.cfg.Selector.SelectBatch(group, pool, req.Mode)
	logging.Info("[%s] Using %s batch of %d credentials for %s", requestID, req.Mode, len(batch), group)

	// Step 3: fan the action out; the payload is shared by every call
	var report dispatch.Report
	if len(batch) > 0 {
		payload, err := s.cfg.Codec.EncodeAction(req.Target, group)
		if err != nil {
			s.metrics.request(group, "error")
			span.RecordError(err)
			span.SetStatus(codes.Error, "encode action")
			return nil, fmt.Errorf("encode action: %w", err)
		}

		dctx, dspan := s.tracer.Start(ctx, "fanout.dispatch", trace.WithAttributes(
			attribute.Int("fanout.batch_size", len(batch)),
		))
		report = s.cfg.Engine.Dispatch(dctx, group, req.Target, batch, payload)
		dspan.SetAttributes(
			attribute.Int("fanout.succeeded", report.Succeeded),
			attribute.Int("fanout.failed", report.Failed),
		)
		dspan.End()
	} else {
		logging.Warn("[%s] Skipping dispatch for %d in %s: empty batch", requestID, req.Target, group)
	}

	// Step 4: second counter read, then the delta
	after := s.read(ctx, "after", group, req.Target, measurementCred)
	afterCount := after.Count
	if !after.Reliable {
		// Degrade to Unchanged rather than reporting a drop to zero
		afterCount = before.Count
	}

	delta, status := measure.ComputeDelta(before.Count, afterCount)

	resp := &Response{
		RequestID:      requestID,
		Delta:          delta,
		After:          afterCount,
		Before:         before.Count,
		TargetID:       req.Target,
		Name:           UnknownName,
		Status:         status,
		Group:          group,
		Mode:           req.Mode.String(),
		BatchSize:      len(batch),
		Dispatch:       report,
		BeforeReliable: before.Reliable,
		AfterReliable:  after.Reliable,
	}
	if after.Reliable {
		// A reply without an account id keeps the requested identity
		if after.AccountID != 0 {
			resp.TargetID = after.AccountID
		}
		if after.Name != "" {
			resp.Name = after.Name
		}
	}
	resp.Note = note(resp)

	span.SetAttributes(
		attribute.Int64("fanout.delta", delta),
		attribute.String("fanout.status", status.String()),
	)
	s.metrics.request(group, "ok")
	logging.Success("[%s] Target %d in %s: %d -> %d (%s)", requestID, req.Target, group, before.Count, afterCount, status)
	return resp, nil
}

// loadPools returns the dispatch pool and the measurement credential. The
// dispatch pool is loaded first, so a group without either pool is reported
// as missing its dispatch pool.
func (s *Service) loadPools(ctx context.Context, group string) ([]credential.Credential, credential.Credential, error) {
	pool := s.cfg.Provider.LoadPool(ctx, group, credential.Dispatch)
	if len(pool) == 0 {
		return nil, credential.Credential{}, &PoolUnavailableError{Group: group, Purpose: credential.Dispatch}
	}

	measurement := s.cfg.Provider.LoadPool(ctx, group, credential.Measurement)
	if len(measurement) == 0 {
		return nil, credential.Credential{}, &PoolUnavailableError{Group: group, Purpose: credential.Measurement}
	}
	return pool, measurement[0], nil
}

// read performs one counter read. Failures yield a zero, unreliable reading.
func (s *Service) read(ctx context.Context, phase, group string, target uint64, cred credential.Credential) measure.Reading {
	ctx, span := s.tracer.Start(ctx, "fanout.measure."+phase)
	defer span.End()

	reading, err := s.cfg.Reader.ReadCounter(ctx, group, target, cred)
	if err != nil {
		s.metrics.measurementFailure(group, phase)
		span.RecordError(err)
		logging.Warn("Could not reliably read the %s counter for %d in %s", phase, target, group)
		return measure.Reading{}
	}
	span.SetAttributes(attribute.Int64("fanout.count", reading.Count))
	return reading
}

func note(resp *Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Used the measurement credential for counter reads and a %s batch of %d credentials for dispatch.",
		resp.Mode, resp.BatchSize)
	switch {
	case !resp.BeforeReliable && !resp.AfterReliable:
		b.WriteString(" Both counter reads failed; the delta is not meaningful.")
	case !resp.BeforeReliable:
		b.WriteString(" The before counter read failed and was counted as 0.")
	case !resp.AfterReliable:
		b.WriteString(" The after counter read failed; the before value was reused.")
	}
	return b.String()
}

// PoolInfo reports pool sizes and rotation cursors for every known group.
func (s *Service) PoolInfo(ctx context.Context) []PoolStatus {
	groups := s.cfg.Router.Groups()
	info := make([]PoolStatus, 0, len(groups))
	for _, group := range groups {
		info = append(info, PoolStatus{
			Group:       group,
			Pool:        s.cfg.Router.Pool(group),
			Dispatch:    len(s.cfg.Provider.LoadPool(ctx, group, credential.Dispatch)),
			Measurement: len(s.cfg.Provider.LoadPool(ctx, group, credential.Measurement)),
			Cursor:      s.cfg.Selector.Cursor(group),
		})
	}
	return info
}

// ReloadPools drops cached pools so the next request reads fresh data. It
// reports false when the provider does not cache.
func (s *Service) ReloadPools() bool {
	purger, ok := s.cfg.Provider.(interface{ Purge() })
	if !ok {
		return false
	}
	purger.Purge()
	logging.Info("Credential pool cache purged")
	return true
}
