package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/bcompare-mcp/bcompare-go"

// Metrics holds OTel metric instruments for comparison operations.
type Metrics struct {
	Operations      metric.Int64Counter
	Failures        metric.Int64Counter
	ProcessDuration metric.Float64Histogram
}

// NewMetrics creates the instruments on mp. A nil mp uses the global
// provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	operations, err := meter.Int64Counter("bcompare.operations",
		metric.WithDescription("Completed operations by outcome"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter("bcompare.failures",
		metric.WithDescription("Operations that produced no usable outcome"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("bcompare.process.duration_seconds",
		metric.WithDescription("Wall time of comparison executable runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		Operations:      operations,
		Failures:        failures,
		ProcessDuration: duration,
	}, nil
}

// RecordOutcome records an operation that produced an outcome.
func (m *Metrics) RecordOutcome(ctx context.Context, op, outcome string) {
	if m == nil {
		return
	}
	m.Operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordFailure records an operation that failed with the given kind.
func (m *Metrics) RecordFailure(ctx context.Context, op, kind string) {
	if m == nil {
		return
	}
	m.Failures.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("kind", kind),
		),
	)
}

// RecordProcess records how long one tool run took.
func (m *Metrics) RecordProcess(ctx context.Context, op string, d time.Duration) {
	if m == nil {
		return
	}
	m.ProcessDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("op", op)),
	)
}
