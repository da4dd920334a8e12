// Package usecase merges the two subscription sources into one premium status and caches it per user.
package usecase

import (
	"context"

	subscriptionDomain "github.com/allisson/rewardsync/internal/subscription/domain"
)

// SourceClient queries both billing channels.
type SourceClient interface {
	GetPlatformSubscription(ctx context.Context, userID string) (*subscriptionDomain.SourceStatus, error)
	GetCarrierSubscription(ctx context.Context, userID string) (*subscriptionDomain.SourceStatus, error)
}

// StatusUseCase serves the unified subscription status.
type StatusUseCase interface {
	// Get returns the unified status of userID, from cache when fresh.
	Get(ctx context.Context, userID string) (*subscriptionDomain.UnifiedStatus, error)

	// Invalidate drops the cached status of userID so the next Get refetches both sources.
	Invalidate(userID string)
}
