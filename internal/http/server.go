// Package http provides the local HTTP API the app shell talks to.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/rewardsync/internal/config"
	"github.com/allisson/rewardsync/internal/metrics"
	paymentHTTP "github.com/allisson/rewardsync/internal/payment/http"
	queueHTTP "github.com/allisson/rewardsync/internal/queue/http"
	rewardsHTTP "github.com/allisson/rewardsync/internal/rewards/http"
	subscriptionHTTP "github.com/allisson/rewardsync/internal/subscription/http"
)

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers every route of the local API.
func (s *Server) SetupRouter(
	cfg *config.Config,
	queueHandler *queueHTTP.QueueHandler,
	rewardsHandler *rewardsHTTP.RewardsHandler,
	paymentHandler *paymentHTTP.PaymentHandler,
	subscriptionHandler *subscriptionHTTP.SubscriptionHandler,
	deviceHandler *DeviceHandler,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsEnabled && metricsProvider != nil {
		apiMetrics, err := metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsProvider.Namespace())
		if err != nil {
			s.logger.Warn("api metrics disabled", slog.Any("error", err))
		} else {
			router.Use(apiMetrics)
		}
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// Routes that queue work or reach the payment backend are throttled per user
	throttle := func(c *gin.Context) { c.Next() }
	if cfg.RateLimitEnabled {
		throttle = RateLimitMiddleware(
			cfg.RateLimitRequestsPerSec,
			cfg.RateLimitBurst,
			deviceHandler.session,
			s.logger,
		)
	}

	v1 := router.Group("/v1")
	{
		v1.POST("/answers", throttle, queueHandler.EnqueueAnswerHandler)
		v1.POST("/uploads", throttle, queueHandler.EnqueueUploadHandler)
		v1.GET("/queues/:kind", queueHandler.ListHandler)
		v1.GET("/queues/:kind/items/:id", queueHandler.GetHandler)
		v1.POST("/queues/:kind/process", queueHandler.ProcessHandler)

		v1.POST("/sessions", rewardsHandler.StartSessionHandler)
		v1.GET("/sessions/:id", rewardsHandler.GetSessionHandler)
		v1.POST("/sessions/:id/complete", rewardsHandler.CompleteSessionHandler)
		v1.GET("/wallet", rewardsHandler.WalletHandler)
		v1.GET("/history", rewardsHandler.HistoryHandler)

		v1.POST("/payments", throttle, paymentHandler.InitiateHandler)
		v1.GET("/payments/:id", paymentHandler.GetHandler)
		v1.POST("/payments/:id/refresh", paymentHandler.RefreshHandler)

		v1.GET("/subscription", subscriptionHandler.GetHandler)

		v1.GET("/connectivity", deviceHandler.GetConnectivityHandler)
		v1.PUT("/connectivity", deviceHandler.SetConnectivityHandler)
		v1.GET("/identity", deviceHandler.GetIdentityHandler)
		v1.PUT("/identity", deviceHandler.SwitchIdentityHandler)
		v1.DELETE("/identity", deviceHandler.SignOutHandler)
		v1.GET("/notifications", deviceHandler.NotificationsHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready once the local database answers.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}
	status := http.StatusOK

	if s.db == nil {
		components["database"] = "error"
		status = http.StatusServiceUnavailable
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			components["database"] = "error"
			status = http.StatusServiceUnavailable
		}
	}

	result := "ready"
	if status != http.StatusOK {
		result = "not_ready"
	}
	c.JSON(status, gin.H{"status": result, "components": components})
}
