// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/rewardsync/internal/config"
	"github.com/allisson/rewardsync/internal/connectivity"
	cryptoService "github.com/allisson/rewardsync/internal/crypto/service"
	"github.com/allisson/rewardsync/internal/database"
	"github.com/allisson/rewardsync/internal/http"
	"github.com/allisson/rewardsync/internal/identity"
	mediaService "github.com/allisson/rewardsync/internal/media/service"
	"github.com/allisson/rewardsync/internal/metrics"
	"github.com/allisson/rewardsync/internal/notification"
	paymentHTTP "github.com/allisson/rewardsync/internal/payment/http"
	paymentUseCase "github.com/allisson/rewardsync/internal/payment/usecase"
	queueHTTP "github.com/allisson/rewardsync/internal/queue/http"
	queueUseCase "github.com/allisson/rewardsync/internal/queue/usecase"
	remoteService "github.com/allisson/rewardsync/internal/remote/service"
	rewardsHTTP "github.com/allisson/rewardsync/internal/rewards/http"
	rewardsUseCase "github.com/allisson/rewardsync/internal/rewards/usecase"
	subscriptionHTTP "github.com/allisson/rewardsync/internal/subscription/http"
	subscriptionUseCase "github.com/allisson/rewardsync/internal/subscription/usecase"
)

// notificationFeedCapacity bounds the notifications kept for the UI between drains.
const notificationFeedCapacity = 100

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Managers
	txManager database.TxManager

	// Device state
	connectivitySignal *connectivity.Signal
	identitySession    *identity.Session
	notificationFeed   *notification.Feed

	// Services
	remoteClient      *remoteService.Client
	mediaStorage      *mediaService.Storage
	payloadCipher     cryptoService.PayloadCipher
	connectivityProbe *connectivity.Prober

	// Repositories
	pendingMutationRepository queueUseCase.PendingMutationRepository
	historyRepository         rewardsUseCase.HistoryRepository
	sessionRepository         rewardsUseCase.SessionRepository
	walletRepository          rewardsUseCase.WalletRepository

	// Use Cases
	queueService        *queueUseCase.QueueService
	queueScheduler      *queueUseCase.Scheduler
	enqueueUseCase      queueUseCase.EnqueueUseCase
	sessionUseCase      rewardsUseCase.SessionUseCase
	walletUseCase       rewardsUseCase.WalletUseCase
	paymentUseCase      paymentUseCase.PaymentUseCase
	subscriptionUseCase subscriptionUseCase.StatusUseCase

	// Handlers
	queueHandler        *queueHTTP.QueueHandler
	rewardsHandler      *rewardsHTTP.RewardsHandler
	paymentHandler      *paymentHTTP.PaymentHandler
	subscriptionHandler *subscriptionHTTP.SubscriptionHandler
	deviceHandler       *http.DeviceHandler

	// Servers and Workers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                            sync.Mutex
	loggerInit                    sync.Once
	dbInit                        sync.Once
	txManagerInit                 sync.Once
	metricsProviderInit           sync.Once
	businessMetricsInit           sync.Once
	connectivitySignalInit        sync.Once
	identitySessionInit           sync.Once
	notificationFeedInit          sync.Once
	remoteClientInit              sync.Once
	mediaStorageInit              sync.Once
	payloadCipherInit             sync.Once
	connectivityProbeInit         sync.Once
	pendingMutationRepositoryInit sync.Once
	historyRepositoryInit         sync.Once
	sessionRepositoryInit         sync.Once
	walletRepositoryInit          sync.Once
	queueServiceInit              sync.Once
	queueSchedulerInit            sync.Once
	enqueueUseCaseInit            sync.Once
	sessionUseCaseInit            sync.Once
	walletUseCaseInit             sync.Once
	paymentUseCaseInit            sync.Once
	subscriptionUseCaseInit       sync.Once
	queueHandlerInit              sync.Once
	rewardsHandlerInit            sync.Once
	paymentHandlerInit            sync.Once
	subscriptionHandlerInit       sync.Once
	deviceHandlerInit             sync.Once
	httpServerInit                sync.Once
	metricsServerInit             sync.Once
	initErrors                    map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// A no-op recorder is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// ConnectivitySignal returns the device connectivity signal. The device starts offline
// until the prober or the shell reports otherwise.
func (c *Container) ConnectivitySignal() *connectivity.Signal {
	c.connectivitySignalInit.Do(func() {
		c.connectivitySignal = connectivity.NewSignal(false)
	})
	return c.connectivitySignal
}

// IdentitySession returns the authenticated identity of the device. It starts signed out.
func (c *Container) IdentitySession() *identity.Session {
	c.identitySessionInit.Do(func() {
		c.identitySession = identity.NewSession("")
	})
	return c.identitySession
}

// NotificationFeed returns the notification sink shared by every processor and the payment poller.
func (c *Container) NotificationFeed() *notification.Feed {
	c.notificationFeedInit.Do(func() {
		c.notificationFeed = notification.NewFeed(notificationFeedCapacity, c.Logger())
	})
	return c.notificationFeed
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// DeviceHandler returns the HTTP handler for connectivity, identity and notifications.
func (c *Container) DeviceHandler() *http.DeviceHandler {
	c.deviceHandlerInit.Do(func() {
		c.deviceHandler = http.NewDeviceHandler(
			c.ConnectivitySignal(),
			c.IdentitySession(),
			c.NotificationFeed(),
			c.Logger(),
		)
	})
	return c.deviceHandler
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP server if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Stop payment pollers before the database goes away
	if c.paymentUseCase != nil {
		c.paymentUseCase.Close()
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.mediaStorage != nil {
		if err := c.mediaStorage.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("media storage close: %w", err))
		}
	}

	if closer, ok := c.payloadCipher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("payload keeper close: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initMetricsProvider creates the OpenTelemetry provider with the Prometheus exporter.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	queueHandler, err := c.QueueHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue handler for http server: %w", err)
	}

	rewardsHandler, err := c.RewardsHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get rewards handler for http server: %w", err)
	}

	paymentHandler, err := c.PaymentHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get payment handler for http server: %w", err)
	}

	subscriptionHandler, err := c.SubscriptionHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription handler for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(
		c.config,
		queueHandler,
		rewardsHandler,
		paymentHandler,
		subscriptionHandler,
		c.DeviceHandler(),
		metricsProvider,
	)

	return server, nil
}

// initMetricsServer creates the Prometheus metrics server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
