package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/rewardsync/internal/errors"
	"github.com/allisson/rewardsync/internal/metrics"
	subscriptionDomain "github.com/allisson/rewardsync/internal/subscription/domain"
	"github.com/allisson/rewardsync/internal/subscription/usecase/mocks"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStatusUseCase(client SourceClient, clock *fakeClock) *statusUseCase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newStatusUseCase(client, time.Minute, logger, clock.Now)
}

func TestStatusUseCase_Get(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	expiration := start.Add(3 * day)

	t.Run("FetchesBothSourcesAndCaches", func(t *testing.T) {
		clock := &fakeClock{now: start}
		client := &mocks.MockSourceClient{}
		uc := newTestStatusUseCase(client, clock)

		client.On("GetPlatformSubscription", mock.Anything, "user-1").
			Return(&subscriptionDomain.SourceStatus{}, nil).Once()
		client.On("GetCarrierSubscription", mock.Anything, "user-1").
			Return(&subscriptionDomain.SourceStatus{IsActive: true, ExpirationDate: &expiration}, nil).Once()

		status, err := uc.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, subscriptionDomain.SourceCarrier, status.Source)
		assert.Equal(t, 3, status.RemainingDays)

		clock.Advance(30 * time.Second)
		status, err = uc.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, status.IsActive)

		client.AssertExpectations(t)
	})

	t.Run("ExpiredEntryIsRefetched", func(t *testing.T) {
		clock := &fakeClock{now: start}
		client := &mocks.MockSourceClient{}
		uc := newTestStatusUseCase(client, clock)

		client.On("GetPlatformSubscription", mock.Anything, "user-1").
			Return(&subscriptionDomain.SourceStatus{}, nil).Twice()
		client.On("GetCarrierSubscription", mock.Anything, "user-1").
			Return(&subscriptionDomain.SourceStatus{}, nil).Twice()

		_, err := uc.Get(ctx, "user-1")
		require.NoError(t, err)

		clock.Advance(2 * time.Minute)
		_, err = uc.Get(ctx, "user-1")
		require.NoError(t, err)

		client.AssertExpectations(t)
	})

	t.Run("InvalidateForcesRefetch", func(t *testing.T) {
		clock := &fakeClock{now: start}
		client := &mocks.MockSourceClient{}
		uc := newTestStatusUseCase(client, clock)

		client.On("GetPlatformSubscription", mock.Anything, "user-1").
			Return(&subscriptionDomain.SourceStatus{}, nil).Once()
		client.On("GetCarrierSubscription", mock.Anything, "user-1").
			Return(&subscriptionDomain.SourceStatus{}, nil).Once()

		status, err := uc.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, status.IsActive)

		uc.Invalidate("user-1")

		client.On("GetPlatformSubscription", mock.Anything, "user-1").
			Return(&subscriptionDomain.SourceStatus{IsActive: true, ExpirationDate: &expiration}, nil).Once()
		client.On("GetCarrierSubscription", mock.Anything, "user-1").
			Return(&subscriptionDomain.SourceStatus{}, nil).Once()

		status, err = uc.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, status.IsActive)
		assert.Equal(t, subscriptionDomain.SourcePlatform, status.Source)

		client.AssertExpectations(t)
	})

	t.Run("PartialFailureIsServedButNotCached", func(t *testing.T) {
		clock := &fakeClock{now: start}
		client := &mocks.MockSourceClient{}
		uc := newTestStatusUseCase(client, clock)

		client.On("GetPlatformSubscription", mock.Anything, "user-1").
			Return(&subscriptionDomain.SourceStatus{IsActive: true, ExpirationDate: &expiration}, nil).Twice()
		client.On("GetCarrierSubscription", mock.Anything, "user-1").
			Return(nil, subscriptionDomain.ErrSourceUnavailable).Twice()

		status, err := uc.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, status.IsActive)

		_, err = uc.Get(ctx, "user-1")
		require.NoError(t, err)

		client.AssertExpectations(t)
	})

	t.Run("BothSourcesFail", func(t *testing.T) {
		clock := &fakeClock{now: start}
		client := &mocks.MockSourceClient{}
		uc := newTestStatusUseCase(client, clock)

		client.On("GetPlatformSubscription", mock.Anything, "user-1").
			Return(nil, errors.New("platform timeout")).Once()
		client.On("GetCarrierSubscription", mock.Anything, "user-1").
			Return(nil, errors.New("carrier refused")).Once()

		_, err := uc.Get(ctx, "user-1")
		assert.ErrorIs(t, err, subscriptionDomain.ErrSourceUnavailable)
		assert.ErrorIs(t, err, errors.ErrUnavailable)
		assert.ErrorContains(t, err, "platform: platform timeout; carrier: carrier refused")
	})

	t.Run("SignedOut", func(t *testing.T) {
		uc := newTestStatusUseCase(&mocks.MockSourceClient{}, &fakeClock{now: start})

		_, err := uc.Get(ctx, "")
		assert.ErrorIs(t, err, errors.ErrUnauthorized)
	})
}

func TestStatusUseCase_ConcurrentMissesShareFetch(t *testing.T) {
	client := &mocks.MockSourceClient{}
	release := make(chan time.Time)

	client.On("GetPlatformSubscription", mock.Anything, "user-1").
		WaitUntil(release).
		Return(&subscriptionDomain.SourceStatus{}, nil).Once()
	client.On("GetCarrierSubscription", mock.Anything, "user-1").
		Return(&subscriptionDomain.SourceStatus{}, nil).Once()

	uc := newTestStatusUseCase(client, &fakeClock{now: time.Now()})

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Get(context.Background(), "user-1")
			assert.NoError(t, err)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	client.AssertExpectations(t)
}

func TestStatusUseCaseWithMetrics(t *testing.T) {
	inner := &mocks.MockStatusUseCase{}
	uc := NewStatusUseCaseWithMetrics(inner, metrics.NewNoOpBusinessMetrics())

	expected := &subscriptionDomain.UnifiedStatus{Source: subscriptionDomain.SourceNone}
	inner.On("Get", mock.Anything, "user-1").Return(expected, nil).Once()
	inner.On("Invalidate", "user-1").Once()

	status, err := uc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, expected, status)

	uc.Invalidate("user-1")
	inner.AssertExpectations(t)
}
