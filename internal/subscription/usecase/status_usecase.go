package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/allisson/rewardsync/internal/errors"
	subscriptionDomain "github.com/allisson/rewardsync/internal/subscription/domain"
)

type cacheEntry struct {
	status    subscriptionDomain.UnifiedStatus
	fetchedAt time.Time
}

// statusUseCase implements StatusUseCase.
type statusUseCase struct {
	client SourceClient
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	group singleflight.Group

	mu          sync.Mutex
	cache       map[string]cacheEntry
	generations map[string]uint64
}

// NewStatusUseCase creates a new StatusUseCase caching each user's status for ttl.
func NewStatusUseCase(client SourceClient, ttl time.Duration, logger *slog.Logger) StatusUseCase {
	return newStatusUseCase(client, ttl, logger, time.Now)
}

func newStatusUseCase(
	client SourceClient,
	ttl time.Duration,
	logger *slog.Logger,
	now func() time.Time,
) *statusUseCase {
	return &statusUseCase{
		client:      client,
		ttl:         ttl,
		logger:      logger,
		now:         now,
		cache:       make(map[string]cacheEntry),
		generations: make(map[string]uint64),
	}
}

// Get returns the cached status or fetches both sources. Concurrent misses for the same
// user share one fetch.
func (s *statusUseCase) Get(ctx context.Context, userID string) (*subscriptionDomain.UnifiedStatus, error) {
	if userID == "" {
		return nil, errors.ErrUnauthorized
	}

	s.mu.Lock()
	entry, ok := s.cache[userID]
	generation := s.generations[userID]
	s.mu.Unlock()

	// Remaining days are derived from the clock, not cached.
	if ok && s.now().Sub(entry.fetchedAt) < s.ttl {
		status := s.refreshed(entry.status)
		return &status, nil
	}

	result, err, _ := s.group.Do(userID, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), userID, generation)
	})
	if err != nil {
		return nil, err
	}

	status := result.(subscriptionDomain.UnifiedStatus)
	return &status, nil
}

// Invalidate drops the cached status. A fetch already in flight will not repopulate the cache.
func (s *statusUseCase) Invalidate(userID string) {
	s.mu.Lock()
	delete(s.cache, userID)
	s.generations[userID]++
	s.mu.Unlock()

	s.group.Forget(userID)
}

func (s *statusUseCase) fetch(
	ctx context.Context,
	userID string,
	generation uint64,
) (subscriptionDomain.UnifiedStatus, error) {
	var (
		platform, carrier       subscriptionDomain.SourceStatus
		platformErr, carrierErr error
		g                       errgroup.Group
	)

	g.Go(func() error {
		status, err := s.client.GetPlatformSubscription(ctx, userID)
		if err != nil {
			platformErr = err
			return nil
		}
		platform = *status
		return nil
	})
	g.Go(func() error {
		status, err := s.client.GetCarrierSubscription(ctx, userID)
		if err != nil {
			carrierErr = err
			return nil
		}
		carrier = *status
		return nil
	})
	_ = g.Wait()

	if platformErr != nil && carrierErr != nil {
		return subscriptionDomain.UnifiedStatus{}, errors.Wrapf(
			subscriptionDomain.ErrSourceUnavailable,
			"platform: %v; carrier: %v", platformErr, carrierErr,
		)
	}

	now := s.now()
	status := Merge(platform, carrier, now)

	if platformErr != nil || carrierErr != nil {
		// A partial answer is served but never cached.
		s.logger.Warn("subscription source unavailable",
			slog.String("user_id", userID),
			slog.Any("platform_error", platformErr),
			slog.Any("carrier_error", carrierErr),
		)
		return status, nil
	}

	s.mu.Lock()
	if s.generations[userID] == generation {
		s.cache[userID] = cacheEntry{status: status, fetchedAt: now}
	}
	s.mu.Unlock()

	return status, nil
}

func (s *statusUseCase) refreshed(status subscriptionDomain.UnifiedStatus) subscriptionDomain.UnifiedStatus {
	if status.IsActive {
		status.RemainingDays = RemainingDays(status.ExpirationDate, s.now())
	}
	return status
}
