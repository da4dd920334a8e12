package http

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/allisson/rewardsync/internal/identity"
)

const (
	// anonymousKey buckets requests made while signed out.
	anonymousKey = "-"

	rateLimiterPruneInterval = 5 * time.Minute
	rateLimiterIdleTTL       = time.Hour
)

// rateLimiterStore holds per-user rate limiters. Idle limiters are pruned on access.
type rateLimiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*rateLimiterEntry
	rps       float64
	burst     int
	lastPrune time.Time
	now       func() time.Time
}

// rateLimiterEntry holds a rate limiter and its last access time.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimitMiddleware throttles requests per signed-in user with a token bucket.
// It guards the routes that queue work so a misbehaving shell cannot flood the queue.
//
// Returns:
//   - 429 Too Many Requests: Rate limit exceeded (includes Retry-After header)
//   - Continues: Request allowed within rate limit
func RateLimitMiddleware(rps float64, burst int, provider identity.Provider, logger *slog.Logger) gin.HandlerFunc {
	store := newRateLimiterStore(rps, burst, time.Now)

	return func(c *gin.Context) {
		key := provider.CurrentUserID()
		if key == "" {
			key = anonymousKey
		}

		limiter := store.getLimiter(key)

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(math.Ceil(reservation.Delay().Seconds()))
			reservation.Cancel()

			logger.Debug("rate limit exceeded",
				slog.String("user_id", key),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please retry after the specified delay.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func newRateLimiterStore(rps float64, burst int, now func() time.Time) *rateLimiterStore {
	if burst <= 0 {
		burst = 1
	}
	return &rateLimiterStore{
		limiters:  make(map[string]*rateLimiterEntry),
		rps:       rps,
		burst:     burst,
		lastPrune: now(),
		now:       now,
	}
}

// getLimiter retrieves or creates the limiter of key.
func (s *rateLimiterStore) getLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastPrune) >= rateLimiterPruneInterval {
		s.prune(now.Add(-rateLimiterIdleTTL))
		s.lastPrune = now
	}

	if entry, ok := s.limiters[key]; ok {
		entry.lastAccess = now
		return entry.limiter
	}

	entry := &rateLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: now,
	}
	s.limiters[key] = entry
	return entry.limiter
}

// prune removes limiters not accessed since threshold.
func (s *rateLimiterStore) prune(threshold time.Time) {
	for key, entry := range s.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(s.limiters, key)
		}
	}
}
