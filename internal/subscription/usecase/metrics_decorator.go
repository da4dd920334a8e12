package usecase

import (
	"context"
	"time"

	"github.com/allisson/rewardsync/internal/metrics"
	subscriptionDomain "github.com/allisson/rewardsync/internal/subscription/domain"
)

// statusUseCaseWithMetrics decorates StatusUseCase with metrics instrumentation.
type statusUseCaseWithMetrics struct {
	next    StatusUseCase
	metrics metrics.BusinessMetrics
}

// NewStatusUseCaseWithMetrics wraps a StatusUseCase with metrics recording.
func NewStatusUseCaseWithMetrics(useCase StatusUseCase, m metrics.BusinessMetrics) StatusUseCase {
	return &statusUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Get records metrics for status queries.
func (s *statusUseCaseWithMetrics) Get(
	ctx context.Context,
	userID string,
) (*subscriptionDomain.UnifiedStatus, error) {
	start := time.Now()
	status, err := s.next.Get(ctx, userID)

	result := "success"
	if err != nil {
		result = "error"
	}
	s.metrics.RecordOperation(ctx, "subscription", "status_get", result)
	s.metrics.RecordDuration(ctx, "subscription", "status_get", time.Since(start), result)

	return status, err
}

// Invalidate records cache invalidations.
func (s *statusUseCaseWithMetrics) Invalidate(userID string) {
	s.next.Invalidate(userID)
	s.metrics.RecordOperation(context.Background(), "subscription", "status_invalidate", "success")
}
