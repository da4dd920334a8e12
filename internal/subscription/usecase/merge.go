package usecase

import (
	"math"
	"time"

	subscriptionDomain "github.com/allisson/rewardsync/internal/subscription/domain"
)

const day = 24 * time.Hour

// Merge combines the platform status a and the carrier status b into one premium status.
// When both are active the later expiration decides the reported source and expiration;
// a nil expiration never expires and outranks any date. Equal expirations keep a.
func Merge(a, b subscriptionDomain.SourceStatus, now time.Time) subscriptionDomain.UnifiedStatus {
	var (
		source     subscriptionDomain.Source
		expiration *time.Time
	)

	switch {
	case a.IsActive && b.IsActive:
		source, expiration = subscriptionDomain.SourcePlatform, a.ExpirationDate
		if expiresLater(b.ExpirationDate, a.ExpirationDate) {
			source, expiration = subscriptionDomain.SourceCarrier, b.ExpirationDate
		}
	case a.IsActive:
		source, expiration = subscriptionDomain.SourcePlatform, a.ExpirationDate
	case b.IsActive:
		source, expiration = subscriptionDomain.SourceCarrier, b.ExpirationDate
	default:
		return subscriptionDomain.UnifiedStatus{Source: subscriptionDomain.SourceNone}
	}

	return subscriptionDomain.UnifiedStatus{
		IsActive:       true,
		Source:         source,
		ExpirationDate: expiration,
		RemainingDays:  RemainingDays(expiration, now),
	}
}

// RemainingDays returns the whole days left until expiration, rounded up and never negative.
// A grant without expiration reports zero.
func RemainingDays(expiration *time.Time, now time.Time) int {
	if expiration == nil {
		return 0
	}
	left := expiration.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(float64(left) / float64(day)))
}

// expiresLater reports whether x outlives y.
func expiresLater(x, y *time.Time) bool {
	if y == nil {
		return false
	}
	if x == nil {
		return true
	}
	return x.After(*y)
}
