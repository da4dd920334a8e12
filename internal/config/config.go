// Package config provides application configuration through environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the local API will bind to.
	ServerHost string
	// ServerPort is the port number the local API will listen on.
	ServerPort int

	// DBDriver is the database driver to use ("sqlite", "postgres" or "mysql").
	DBDriver string
	// DBConnectionString is the connection string for the database.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// CORSEnabled indicates whether CORS is enabled for the local API.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// RateLimitEnabled throttles the local API routes that queue work, per signed-in user.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the sustained request rate allowed per user.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size allowed per user.
	RateLimitBurst int

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// BackendBaseURL is the base URL of the rewards backend API.
	BackendBaseURL string
	// BackendTimeout bounds every backend request.
	BackendTimeout time.Duration
	// BackendRateLimitRequestsPerSec throttles outbound backend calls. Zero disables throttling.
	BackendRateLimitRequestsPerSec float64
	// BackendRateLimitBurst is the burst size for outbound throttling.
	BackendRateLimitBurst int

	// ConnectivityProbeInterval is how often the backend health endpoint is probed.
	// Zero disables probing; connectivity is then only reported through the local API.
	ConnectivityProbeInterval time.Duration

	// QueueMaxRetries is the attempt budget of a pending mutation.
	QueueMaxRetries int
	// QueueSweepInterval runs the processors periodically while online. Zero disables it.
	QueueSweepInterval time.Duration

	// PaymentPollInterval is the delay between payment status polls.
	PaymentPollInterval time.Duration
	// PaymentTimeout is the wall-clock limit of a pending payment.
	PaymentTimeout time.Duration

	// SubscriptionCacheTTL is how long a unified subscription status is cached per user.
	SubscriptionCacheTTL time.Duration

	// MediaBucketURL is the gocloud.dev bucket URL uploads are written to (e.g., "s3://bucket", "mem://").
	MediaBucketURL string

	// PayloadKeeperURI is the gocloud.dev secrets keeper URI used to encrypt queued payloads at rest.
	PayloadKeeperURI string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "127.0.0.1"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Database configuration
		DBDriver: env.GetString("DB_DRIVER", "sqlite"),
		DBConnectionString: env.GetString(
			"DB_CONNECTION_STRING",
			"file:rewardsync.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 1),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 1),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Rate limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 5.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 10),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "rewardsync"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// Backend
		BackendBaseURL:                 env.GetString("BACKEND_BASE_URL", "http://localhost:9000"),
		BackendTimeout:                 env.GetDuration("BACKEND_TIMEOUT_SECONDS", 30, time.Second),
		BackendRateLimitRequestsPerSec: env.GetFloat64("BACKEND_RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		BackendRateLimitBurst:          env.GetInt("BACKEND_RATE_LIMIT_BURST", 20),

		// Connectivity
		ConnectivityProbeInterval: env.GetDuration("CONNECTIVITY_PROBE_INTERVAL_SECONDS", 15, time.Second),

		// Queue
		QueueMaxRetries:    env.GetInt("QUEUE_MAX_RETRIES", 3),
		QueueSweepInterval: env.GetDuration("QUEUE_SWEEP_INTERVAL_SECONDS", 0, time.Second),

		// Payments
		PaymentPollInterval: env.GetDuration("PAYMENT_POLL_INTERVAL_SECONDS", 3, time.Second),
		PaymentTimeout:      env.GetDuration("PAYMENT_TIMEOUT_SECONDS", 300, time.Second),

		// Subscriptions
		SubscriptionCacheTTL: env.GetDuration("SUBSCRIPTION_CACHE_TTL_SECONDS", 300, time.Second),

		// Media
		MediaBucketURL: env.GetString("MEDIA_BUCKET_URL", "mem://"),

		// Payload encryption
		PayloadKeeperURI: env.GetString("PAYLOAD_KEEPER_URI", ""),
	}
}

// Validate rejects settings the sync engine cannot run with.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.MetricsPort,
			validation.Min(0),
			validation.Max(65535),
			validation.When(c.MetricsEnabled && c.MetricsPort != 0,
				validation.NotIn(c.ServerPort).Error("must differ from SERVER_PORT")),
		),
		validation.Field(&c.DBDriver, validation.Required, validation.In("sqlite", "mysql", "postgres")),
		validation.Field(&c.DBConnectionString, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.BackendBaseURL, validation.Required),
		validation.Field(&c.BackendTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.QueueMaxRetries, validation.Required, validation.Min(1)),
		validation.Field(&c.QueueSweepInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.PaymentPollInterval, validation.Required, validation.Min(100*time.Millisecond)),
		validation.Field(&c.PaymentTimeout,
			validation.Required,
			validation.Min(c.PaymentPollInterval).Exclusive().Error("must be longer than PAYMENT_POLL_INTERVAL_SECONDS"),
		),
		validation.Field(&c.MediaBucketURL, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
