// Package telemetry sets up OpenTelemetry tracing for fanoutd.
//
// Tracing is disabled unless an OTLP/HTTP endpoint is configured with
// --otel-endpoint or FANOUT_OTEL_ENDPOINT. Packages create spans through
// Tracer() unconditionally; without Setup the global provider is a no-op, so
// the instrumented code paths are identical with and without tracing.
//
// TRACE LAYOUT:
//   - fanout.execute: one dispatch request, tagged with request id, group,
//     target, mode, delta and status
//   - fanout.measure.before / fanout.measure.after: the counter reads
//   - fanout.dispatch: the batch fan-out, tagged with batch size and results
//
// Spans are batched and exported in the background; the shutdown function
// returned by Setup flushes them when the daemon stops.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used for fanout spans.
const TracerName = "github.com/concave-dev/fanout"

// Setup installs a global tracer provider exporting to an OTLP/HTTP endpoint.
//
// Tracing is opt-in: with an empty endpoint Setup registers nothing and
// returns a no-op shutdown function. The returned shutdown flushes pending
// spans and should be deferred by the caller.
func Setup(ctx context.Context, serviceName, version, endpoint string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Tracer returns the fanout tracer from the global provider. Before Setup, or
// when tracing is disabled, spans are no-ops.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
