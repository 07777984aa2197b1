package telemetry

import (
	"context"
	"testing"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := Setup(context.Background(), "fanoutd", "test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so nothing is exported
	shutdown, err := Setup(context.Background(), "fanoutd", "test", "http://192.0.2.1:4318")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, span := Tracer().Start(context.Background(), "test-span")
	if !span.SpanContext().IsValid() {
		t.Error("expected a recording span once a provider is installed")
	}
	span.End()

	// Nothing was exported, so shutdown has nothing to flush
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = shutdown(ctx)
}
