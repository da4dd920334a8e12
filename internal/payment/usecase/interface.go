// Package usecase runs payment attempts: initiation, status polling and settlement.
package usecase

import (
	"context"

	paymentDomain "github.com/allisson/rewardsync/internal/payment/domain"
)

// Gateway is the backend payment API.
type Gateway interface {
	InitiatePayment(
		ctx context.Context,
		userID string,
		req *paymentDomain.InitiateRequest,
	) (*paymentDomain.InitiateResult, error)
	GetPaymentStatus(ctx context.Context, paymentID string) (*paymentDomain.StatusResult, error)
}

// SubscriptionInvalidator drops a user's cached subscription status.
type SubscriptionInvalidator interface {
	Invalidate(userID string)
}

// PaymentUseCase manages payment attempts of the current user.
type PaymentUseCase interface {
	// Initiate starts a payment and polls it in the background until it settles or times out.
	Initiate(ctx context.Context, input *paymentDomain.InitiateInput) (*paymentDomain.Attempt, error)

	// Get returns a snapshot of an attempt of the current user.
	Get(ctx context.Context, paymentID string) (*paymentDomain.Attempt, error)

	// Refresh asks the backend for the status of an attempt without touching a settled attempt.
	// A successful remote status invalidates the cached subscription.
	Refresh(ctx context.Context, paymentID string) (*paymentDomain.StatusResult, error)

	// Close stops every poller and waits for it to exit.
	Close()
}
