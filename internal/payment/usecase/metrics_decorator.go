package usecase

import (
	"context"
	"time"

	"github.com/allisson/rewardsync/internal/metrics"
	paymentDomain "github.com/allisson/rewardsync/internal/payment/domain"
)

// paymentUseCaseWithMetrics decorates PaymentUseCase with metrics instrumentation.
type paymentUseCaseWithMetrics struct {
	next    PaymentUseCase
	metrics metrics.BusinessMetrics
}

// NewPaymentUseCaseWithMetrics wraps a PaymentUseCase with metrics recording.
func NewPaymentUseCaseWithMetrics(useCase PaymentUseCase, m metrics.BusinessMetrics) PaymentUseCase {
	return &paymentUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Initiate records metrics for payment initiation.
func (p *paymentUseCaseWithMetrics) Initiate(
	ctx context.Context,
	input *paymentDomain.InitiateInput,
) (*paymentDomain.Attempt, error) {
	start := time.Now()
	attempt, err := p.next.Initiate(ctx, input)
	p.record(ctx, "payment_initiate", start, err)
	return attempt, err
}

// Get records metrics for attempt lookups.
func (p *paymentUseCaseWithMetrics) Get(ctx context.Context, paymentID string) (*paymentDomain.Attempt, error) {
	start := time.Now()
	attempt, err := p.next.Get(ctx, paymentID)
	p.record(ctx, "payment_get", start, err)
	return attempt, err
}

// Refresh records metrics for manual status checks.
func (p *paymentUseCaseWithMetrics) Refresh(
	ctx context.Context,
	paymentID string,
) (*paymentDomain.StatusResult, error) {
	start := time.Now()
	status, err := p.next.Refresh(ctx, paymentID)
	p.record(ctx, "payment_refresh", start, err)
	return status, err
}

// Close stops the wrapped use case.
func (p *paymentUseCaseWithMetrics) Close() {
	p.next.Close()
}

func (p *paymentUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "payment", operation, status)
	p.metrics.RecordDuration(ctx, "payment", operation, time.Since(start), status)
}
