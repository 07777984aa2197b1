package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/concave-dev/fanout/internal/credential"
	"github.com/concave-dev/fanout/internal/remote"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func batchOf(tokens ...string) []credential.Credential {
	batch := make([]credential.Credential, len(tokens))
	for i, tok := range tokens {
		batch[i] = credential.Credential{Token: tok}
	}
	return batch
}

func newEngine(t *testing.T, client remote.Client, cfg *Config, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(client, cfg, opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

// TestDispatch_EmptyBatch tests that nothing is sent for an empty batch
func TestDispatch_EmptyBatch(t *testing.T) {
	var calls atomic.Int32
	client := remote.ClientFunc(func(ctx context.Context, call remote.Call) remote.Result {
		calls.Add(1)
		return remote.Result{Outcome: remote.StatusOutcome(200)}
	})

	report := newEngine(t, client, nil).Dispatch(context.Background(), "BR", 1, nil, []byte("p"))
	if report.Attempted != 0 || report.Succeeded != 0 || report.Failed != 0 {
		t.Errorf("report = %+v, want zero attempts", report)
	}
	if calls.Load() != 0 {
		t.Errorf("client called %d times, want 0", calls.Load())
	}
}

// TestDispatch_TimeoutAndSuccess tests that a slow call does not stop others
func TestDispatch_TimeoutAndSuccess(t *testing.T) {
	client := remote.ClientFunc(func(ctx context.Context, call remote.Call) remote.Result {
		if call.Credential.Token == "slow" {
			ctx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
			defer cancel()
			<-ctx.Done()
			return remote.Result{Outcome: remote.Outcome{Code: remote.TimedOut, Err: ctx.Err()}}
		}
		return remote.Result{Outcome: remote.StatusOutcome(200)}
	})

	engine := newEngine(t, client, nil)
	done := make(chan Report, 1)
	go func() {
		done <- engine.Dispatch(context.Background(), "BR", 1, batchOf("slow", "fast"), nil)
	}()

	select {
	case report := <-done:
		if report.Attempted != 2 || report.Succeeded != 1 || report.Failed != 1 {
			t.Errorf("report = %+v, want 2 attempted, 1 succeeded", report)
		}
		if report.Outcomes[0].Code != remote.TimedOut || report.Outcomes[1].Code != remote.Success {
			t.Errorf("outcomes = %v, want [timeout success] in batch order", report.Outcomes)
		}
		if report.Counts["timeout"] != 1 || report.Counts["success"] != 1 || report.Counts["rejected"] != 0 {
			t.Errorf("counts = %v", report.Counts)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Dispatch() did not terminate")
	}
}

// TestDispatch_OutcomeClasses tests tallies for every outcome code
func TestDispatch_OutcomeClasses(t *testing.T) {
	client := remote.ClientFunc(func(ctx context.Context, call remote.Call) remote.Result {
		switch call.Credential.Token {
		case "ok":
			return remote.Result{Outcome: remote.StatusOutcome(200)}
		case "denied":
			return remote.Result{Outcome: remote.StatusOutcome(403)}
		case "":
			return remote.Result{Outcome: remote.Outcome{Code: remote.TransportError, Err: remote.ErrEmptyCredential}}
		default:
			return remote.Result{Outcome: remote.Outcome{Code: remote.TransportError}}
		}
	})

	report := newEngine(t, client, nil).Dispatch(context.Background(), "IND", 9, batchOf("ok", "denied", "", "down", "ok"), nil)
	if report.Attempted != 5 || report.Succeeded != 2 || report.Failed != 3 {
		t.Errorf("report = %+v", report)
	}
	want := map[string]int{"success": 2, "rejected": 1, "timeout": 0, "transport_error": 2}
	for code, n := range want {
		if report.Counts[code] != n {
			t.Errorf("Counts[%s] = %d, want %d", code, report.Counts[code], n)
		}
	}
	if report.Outcomes[1].Status != 403 {
		t.Errorf("rejected outcome status = %d, want 403", report.Outcomes[1].Status)
	}
}

// TestDispatch_DetachedFromCaller tests that caller cancellation does not
// reach in-flight calls
func TestDispatch_DetachedFromCaller(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := remote.ClientFunc(func(ctx context.Context, call remote.Call) remote.Result {
		if ctx.Err() != nil {
			return remote.Result{Outcome: remote.Outcome{Code: remote.TransportError, Err: ctx.Err()}}
		}
		return remote.Result{Outcome: remote.StatusOutcome(200)}
	})

	report := newEngine(t, client, nil).Dispatch(ctx, "BR", 1, batchOf("a", "b", "c"), nil)
	if report.Succeeded != 3 {
		t.Errorf("succeeded = %d, want 3 despite cancelled caller", report.Succeeded)
	}
}

// TestDispatch_MaxInFlight tests the concurrency bound
func TestDispatch_MaxInFlight(t *testing.T) {
	var (
		mu      sync.Mutex
		current int
		peak    int
	)
	client := remote.ClientFunc(func(ctx context.Context, call remote.Call) remote.Result {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
		return remote.Result{Outcome: remote.StatusOutcome(200)}
	})

	tokens := make([]string, 20)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("t%d", i)
	}

	cfg := DefaultConfig()
	cfg.MaxInFlight = 3
	report := newEngine(t, client, cfg).Dispatch(context.Background(), "BR", 1, batchOf(tokens...), nil)

	if report.Succeeded != 20 {
		t.Errorf("succeeded = %d, want 20", report.Succeeded)
	}
	if peak > 3 {
		t.Errorf("peak concurrency = %d, want at most 3", peak)
	}
}

// TestDispatch_Rate tests that pacing spreads call starts over time and that
// every call still completes
func TestDispatch_Rate(t *testing.T) {
	var mu sync.Mutex
	var starts []time.Time
	client := remote.ClientFunc(func(ctx context.Context, call remote.Call) remote.Result {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()
		return remote.Result{Outcome: remote.StatusOutcome(200)}
	})

	// 20 calls/s with a burst of 1: five calls need at least 4 * 50ms
	cfg := &Config{Rate: 20, Burst: 1}
	engine := newEngine(t, client, cfg)

	done := make(chan Report, 1)
	go func() {
		done <- engine.Dispatch(context.Background(), "BR", 1, batchOf("a", "b", "c", "d", "e"), nil)
	}()

	var report Report
	select {
	case report = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Dispatch() did not finish")
	}

	if report.Attempted != 5 || report.Succeeded != 5 {
		t.Errorf("report = %+v, want 5 attempted and succeeded", report)
	}
	if report.Elapsed < 180*time.Millisecond {
		t.Errorf("Elapsed = %v, want at least ~200ms of pacing", report.Elapsed)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(starts) != 5 {
		t.Fatalf("client called %d times, want 5", len(starts))
	}
	first, last := starts[0], starts[0]
	for _, ts := range starts {
		if ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}
	if spread := last.Sub(first); spread < 180*time.Millisecond {
		t.Errorf("call starts spread over %v, want at least ~200ms", spread)
	}
}

// TestDispatch_Metrics tests that outcomes are recorded per group and code
func TestDispatch_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := MustNewMetrics(reg)

	client := remote.ClientFunc(func(ctx context.Context, call remote.Call) remote.Result {
		if call.Credential.Token == "bad" {
			return remote.Result{Outcome: remote.StatusOutcome(500)}
		}
		return remote.Result{Outcome: remote.StatusOutcome(200)}
	})

	e := newEngine(t, client, nil, WithMetrics(metrics))
	e.Dispatch(context.Background(), "BR", 1, batchOf("a", "b", "bad"), nil)

	if got := testutil.ToFloat64(metrics.outcomes.WithLabelValues("BR", "success")); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.outcomes.WithLabelValues("BR", "rejected")); got != 1 {
		t.Errorf("rejected count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.inFlight); got != 0 {
		t.Errorf("in-flight gauge = %v after dispatch, want 0", got)
	}
}

// TestConfig_Validate tests dispatch config validation
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", *DefaultConfig(), false},
		{"paced", Config{Rate: 50, Burst: 10}, false},
		{"negative in-flight", Config{MaxInFlight: -1}, true},
		{"negative rate", Config{Rate: -1}, true},
		{"rate without burst", Config{Rate: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_WorstCase tests the upper bound on one dispatch's duration
func TestConfig_WorstCase(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		batch int
		want  time.Duration
	}{
		{"empty batch", *DefaultConfig(), 0, 0},
		{"unbounded", *DefaultConfig(), 100, 10 * time.Second},
		{"waves", Config{MaxInFlight: 10}, 100, 100 * time.Second},
		{"partial wave", Config{MaxInFlight: 30}, 100, 40 * time.Second},
		{"paced", Config{Rate: 10, Burst: 1}, 100, 10*time.Second + 9900*time.Millisecond},
		{"burst covers batch", Config{Rate: 10, Burst: 100}, 100, 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.WorstCase(tt.batch, 10*time.Second); got != tt.want {
				t.Errorf("WorstCase(%d, 10s) = %v, want %v", tt.batch, got, tt.want)
			}
		})
	}
}
