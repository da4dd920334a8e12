package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/rewardsync/internal/app"
	"github.com/allisson/rewardsync/internal/config"
)

// RunServer runs the sync engine on this device: the local API, the metrics
// listener, the queue scheduler and the connectivity prober. It returns after
// SIGINT or SIGTERM, or once any of them fails, when every part has stopped
// and the servers have drained within DBConnMaxLifetime.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger().With(slog.String("version", version))
	defer closeContainer(container, logger)

	api, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	scheduler, err := container.QueueScheduler(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize queue scheduler: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("queue scheduler: %w", err)
		}
		return nil
	})

	// Without a probe URL connectivity only changes through PUT /v1/connectivity.
	if prober := container.ConnectivityProber(); prober != nil {
		g.Go(func() error {
			if err := prober.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("connectivity prober stopped", slog.Any("error", err))
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := api.Start(ctx); err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Start(ctx); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("stopping rewardsync", slog.Any("cause", context.Cause(ctx)))

		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
		defer cancel()

		var errs []error
		if err := api.Shutdown(drainCtx); err != nil {
			errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(drainCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	logger.Info("rewardsync started")
	return g.Wait()
}
