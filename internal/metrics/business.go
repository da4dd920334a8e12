package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records what the sync engine did, as opposed to how the
// local API was called.
type BusinessMetrics interface {
	// RecordOperation counts one use case call. domain is "queue", "rewards",
	// "payment" or "subscription"; status is "success" or "error".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records how long one use case call took.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordMutationOutcome counts how a processor run disposed of one pending
	// mutation: submitted, already_applied, retried, exhausted, purged,
	// rejected or skipped.
	RecordMutationOutcome(ctx context.Context, kind, outcome string)

	// RecordQueueRun records one processor pass over a snapshot of size items.
	RecordQueueRun(ctx context.Context, kind string, size int, duration time.Duration)
}

var (
	queueRunSizeBuckets     = []float64{1, 2, 5, 10, 25, 50, 100, 250}
	queueRunDurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120}
)

type businessMetrics struct {
	operations       metric.Int64Counter
	operationLatency metric.Float64Histogram
	outcomes         metric.Int64Counter
	runSize          metric.Int64Histogram
	runDuration      metric.Float64Histogram
}

// NewBusinessMetrics creates the sync engine instruments, each named
// <namespace>_<metric>.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)
	b := &businessMetrics{}
	var err error

	if b.operations, err = meter.Int64Counter(
		metricName(namespace, "operations_total"),
		metric.WithDescription("Use case calls by domain, operation and status"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	if b.operationLatency, err = meter.Float64Histogram(
		metricName(namespace, "operation_duration_seconds"),
		metric.WithDescription("Use case call latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create operation histogram: %w", err)
	}

	if b.outcomes, err = meter.Int64Counter(
		metricName(namespace, "mutation_outcomes_total"),
		metric.WithDescription("Pending mutations disposed of by processor runs"),
		metric.WithUnit("{mutation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mutation outcome counter: %w", err)
	}

	if b.runSize, err = meter.Int64Histogram(
		metricName(namespace, "queue_run_size"),
		metric.WithDescription("Pending mutations in the snapshot of a processor run"),
		metric.WithUnit("{mutation}"),
		metric.WithExplicitBucketBoundaries(queueRunSizeBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create queue run size histogram: %w", err)
	}

	if b.runDuration, err = meter.Float64Histogram(
		metricName(namespace, "queue_run_duration_seconds"),
		metric.WithDescription("Wall time of a processor run"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(queueRunDurationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create queue run duration histogram: %w", err)
	}

	return b, nil
}

func operationAttrs(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttrs(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.operationLatency.Record(ctx, duration.Seconds(), operationAttrs(domain, operation, status))
}

func (b *businessMetrics) RecordMutationOutcome(ctx context.Context, kind, outcome string) {
	b.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

func (b *businessMetrics) RecordQueueRun(ctx context.Context, kind string, size int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	b.runSize.Record(ctx, int64(size), attrs)
	b.runDuration.Record(ctx, duration.Seconds(), attrs)
}

// NoOpBusinessMetrics discards everything; used when METRICS_ENABLED is false.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics returns a NoOpBusinessMetrics.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (n *NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}

func (n *NoOpBusinessMetrics) RecordMutationOutcome(context.Context, string, string) {}

func (n *NoOpBusinessMetrics) RecordQueueRun(context.Context, string, int, time.Duration) {}
