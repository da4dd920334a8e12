package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/allisson/rewardsync/internal/identity"
)

func newRateLimitedRouter(rps float64, burst int, session *identity.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := gin.New()
	router.Use(RateLimitMiddleware(rps, burst, session, logger))
	router.POST("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func post(router *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", nil))
	return w
}

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	router := newRateLimitedRouter(10.0, 20, identity.NewSession("user-1"))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, post(router).Code)
	}
}

func TestRateLimitMiddleware_BlocksRequestsExceedingLimit(t *testing.T) {
	router := newRateLimitedRouter(1.0, 2, identity.NewSession("user-1"))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, post(router).Code)
	}

	w := post(router)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestRateLimitMiddleware_SeparateBucketPerUser(t *testing.T) {
	session := identity.NewSession("user-1")
	router := newRateLimitedRouter(1.0, 1, session)

	assert.Equal(t, http.StatusOK, post(router).Code)
	assert.Equal(t, http.StatusTooManyRequests, post(router).Code)

	session.Switch("user-2")
	assert.Equal(t, http.StatusOK, post(router).Code)

	session.SignOut()
	assert.Equal(t, http.StatusOK, post(router).Code)
	assert.Equal(t, http.StatusTooManyRequests, post(router).Code)
}

func TestRateLimiterStore_PrunesIdleLimiters(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newRateLimiterStore(1, 1, func() time.Time { return now })

	store.getLimiter("idle")
	now = now.Add(30 * time.Minute)
	store.getLimiter("active")
	assert.Len(t, store.limiters, 2)

	now = now.Add(45 * time.Minute)
	store.getLimiter("active")

	assert.Len(t, store.limiters, 1)
	assert.Contains(t, store.limiters, "active")
}
