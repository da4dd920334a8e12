package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectMetric(t *testing.T, reader sdkmetric.Reader, name string) metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return metricdata.Metrics{}
}

func newTestBusinessMetrics(t *testing.T) (BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	bm, err := NewBusinessMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), "rewardsync")
	require.NoError(t, err)
	return bm, reader
}

func TestBusinessMetrics_Operations(t *testing.T) {
	bm, reader := newTestBusinessMetrics(t)
	ctx := context.Background()

	bm.RecordOperation(ctx, "queue", "enqueue_answer", "success")
	bm.RecordOperation(ctx, "queue", "enqueue_answer", "success")
	bm.RecordOperation(ctx, "queue", "enqueue_answer", "error")
	bm.RecordOperation(ctx, "payment", "payment_initiate", "success")

	operations := collectMetric(t, reader, "rewardsync_operations_total")
	assert.Equal(t, int64(2), int64Point(t, operations,
		attribute.String("domain", "queue"),
		attribute.String("operation", "enqueue_answer"),
		attribute.String("status", "success"),
	))
	assert.Equal(t, int64(1), int64Point(t, operations,
		attribute.String("domain", "queue"),
		attribute.String("operation", "enqueue_answer"),
		attribute.String("status", "error"),
	))
	assert.Equal(t, int64(1), int64Point(t, operations,
		attribute.String("domain", "payment"),
		attribute.String("operation", "payment_initiate"),
		attribute.String("status", "success"),
	))
}

func TestBusinessMetrics_Durations(t *testing.T) {
	bm, reader := newTestBusinessMetrics(t)
	ctx := context.Background()

	bm.RecordDuration(ctx, "subscription", "status_get", 40*time.Millisecond, "success")
	bm.RecordDuration(ctx, "subscription", "status_get", 60*time.Millisecond, "success")

	latency := collectMetric(t, reader, "rewardsync_operation_duration_seconds")
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.InDelta(t, 0.1, hist.DataPoints[0].Sum, 1e-9)
}

func TestBusinessMetrics_MutationOutcomes(t *testing.T) {
	bm, reader := newTestBusinessMetrics(t)
	ctx := context.Background()

	bm.RecordMutationOutcome(ctx, "MEDIA_UPLOAD", "retried")
	bm.RecordMutationOutcome(ctx, "MEDIA_UPLOAD", "retried")
	bm.RecordMutationOutcome(ctx, "MEDIA_UPLOAD", "submitted")
	bm.RecordMutationOutcome(ctx, "ANSWER_SUBMISSION", "purged")

	outcomes := collectMetric(t, reader, "rewardsync_mutation_outcomes_total")
	assert.Equal(t, int64(2), int64Point(t, outcomes,
		attribute.String("kind", "MEDIA_UPLOAD"), attribute.String("outcome", "retried")))
	assert.Equal(t, int64(1), int64Point(t, outcomes,
		attribute.String("kind", "MEDIA_UPLOAD"), attribute.String("outcome", "submitted")))
	assert.Equal(t, int64(1), int64Point(t, outcomes,
		attribute.String("kind", "ANSWER_SUBMISSION"), attribute.String("outcome", "purged")))
}

func TestBusinessMetrics_QueueRuns(t *testing.T) {
	bm, reader := newTestBusinessMetrics(t)
	ctx := context.Background()

	bm.RecordQueueRun(ctx, "MEDIA_UPLOAD", 3, 2*time.Second)
	bm.RecordQueueRun(ctx, "MEDIA_UPLOAD", 1, 500*time.Millisecond)

	size, ok := collectMetric(t, reader, "rewardsync_queue_run_size").Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, size.DataPoints, 1)
	assert.Equal(t, uint64(2), size.DataPoints[0].Count)
	assert.Equal(t, int64(4), size.DataPoints[0].Sum)
	assert.Equal(t, queueRunSizeBuckets, size.DataPoints[0].Bounds)

	duration, ok := collectMetric(t, reader, "rewardsync_queue_run_duration_seconds").Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, duration.DataPoints, 1)
	kind, _ := duration.DataPoints[0].Attributes.Value("kind")
	assert.Equal(t, "MEDIA_UPLOAD", kind.AsString())
	assert.InDelta(t, 2.5, duration.DataPoints[0].Sum, 1e-9)
}

func TestBusinessMetrics_ExportedThroughProvider(t *testing.T) {
	provider, err := NewProvider("rewardsync")
	require.NoError(t, err)
	defer func() { assert.NoError(t, provider.Shutdown(context.Background())) }()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), provider.Namespace())
	require.NoError(t, err)
	bm.RecordOperation(context.Background(), "rewards", "session_complete", "success")
	bm.RecordQueueRun(context.Background(), "ANSWER_SUBMISSION", 2, 300*time.Millisecond)

	output := scrape(t, provider)
	assert.Regexp(t, `rewardsync_operations_total\{[^}]*domain="rewards"[^}]*operation="session_complete"[^}]*\} 1`, output)
	assert.Regexp(t, `rewardsync_queue_run_duration_seconds_bucket\{[^}]*kind="ANSWER_SUBMISSION"[^}]*le="0.5"[^}]*\} 1`, output)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	noOp := NewNoOpBusinessMetrics()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		noOp.RecordOperation(ctx, "queue", "enqueue_answer", "success")
		noOp.RecordDuration(ctx, "payment", "payment_initiate", 100*time.Millisecond, "error")
		noOp.RecordMutationOutcome(ctx, "ANSWER_SUBMISSION", "submitted")
		noOp.RecordQueueRun(ctx, "ANSWER_SUBMISSION", 3, time.Second)
	})
}
