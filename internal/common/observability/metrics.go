package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records OpenTelemetry metrics exported through Prometheus.
// A zero value is safe to use and records nothing.
type Observability struct {
	meterProvider *metric.MeterProvider
	queryCounter  otelmetric.Int64Counter
	queryDuration otelmetric.Float64Histogram
	jobCounter    otelmetric.Int64Counter
}

// New wires a meter provider for serviceName. On exporter failure it
// returns a no-op instance and the error.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	queryCounter, _ := meter.Int64Counter(
		"risk.queries",
		otelmetric.WithDescription("Risk queries processed"),
	)
	queryDuration, _ := meter.Float64Histogram(
		"risk.query.duration",
		otelmetric.WithDescription("Risk query processing duration"),
		otelmetric.WithUnit("ms"),
	)
	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	return &Observability{
		meterProvider: provider,
		queryCounter:  queryCounter,
		queryDuration: queryDuration,
		jobCounter:    jobCounter,
	}, nil
}

// RecordQuery counts one engine query and its latency.
func (o *Observability) RecordQuery(ctx context.Context, mode, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	)
	if o.queryCounter != nil {
		o.queryCounter.Add(ctx, 1, attrs)
	}
	if o.queryDuration != nil {
		o.queryDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}

// RecordJobProcessed counts one Zeebe job by task type and status.
func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
