package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/rewardsync/internal/metrics"
	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
)

// enqueueUseCaseWithMetrics decorates EnqueueUseCase with metrics instrumentation.
type enqueueUseCaseWithMetrics struct {
	next    EnqueueUseCase
	metrics metrics.BusinessMetrics
}

// NewEnqueueUseCaseWithMetrics wraps an EnqueueUseCase with metrics recording.
func NewEnqueueUseCaseWithMetrics(useCase EnqueueUseCase, m metrics.BusinessMetrics) EnqueueUseCase {
	return &enqueueUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// EnqueueAnswer records metrics for answer enqueue operations.
func (e *enqueueUseCaseWithMetrics) EnqueueAnswer(
	ctx context.Context,
	input *AnswerInput,
) (*queueDomain.PendingMutation, error) {
	start := time.Now()
	m, err := e.next.EnqueueAnswer(ctx, input)
	e.record(ctx, "enqueue_answer", start, err)
	return m, err
}

// EnqueueUpload records metrics for upload enqueue operations.
func (e *enqueueUseCaseWithMetrics) EnqueueUpload(
	ctx context.Context,
	input *UploadInput,
) (*queueDomain.PendingMutation, error) {
	start := time.Now()
	m, err := e.next.EnqueueUpload(ctx, input)
	e.record(ctx, "enqueue_upload", start, err)
	return m, err
}

// List records metrics for queue list operations.
func (e *enqueueUseCaseWithMetrics) List(
	ctx context.Context,
	kind queueDomain.Kind,
) ([]*queueDomain.PendingMutation, error) {
	start := time.Now()
	mutations, err := e.next.List(ctx, kind)
	e.record(ctx, "queue_list", start, err)
	return mutations, err
}

// Get records metrics for single mutation lookups.
func (e *enqueueUseCaseWithMetrics) Get(
	ctx context.Context,
	kind queueDomain.Kind,
	id uuid.UUID,
) (*queueDomain.PendingMutation, error) {
	start := time.Now()
	m, err := e.next.Get(ctx, kind, id)
	e.record(ctx, "queue_get", start, err)
	return m, err
}

func (e *enqueueUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "queue", operation, status)
	e.metrics.RecordDuration(ctx, "queue", operation, time.Since(start), status)
}
