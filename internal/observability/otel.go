package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer returns the tracer used for operation spans.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// InitTracer sets up an OTel trace provider with OTLP HTTP exporter.
// The exporter reads the standard OTEL_EXPORTER_OTLP_* variables.
// Returns a shutdown function that should be deferred.
func InitTracer(ctx context.Context, serviceName, version string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("otel: create exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("otel: create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	slog.Info("OpenTelemetry tracing initialized", "service", serviceName)
	return tp.Shutdown, nil
}

// Setup initializes tracing when enabled and returns a shutdown func that
// is always safe to call.
func Setup(ctx context.Context, enabled bool, serviceName, version string) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !enabled {
		return noop
	}
	shutdown, err := InitTracer(ctx, serviceName, version)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
		return noop
	}
	return shutdown
}
