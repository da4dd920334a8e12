package connectivity

import (
	"context"
	"log/slog"
	"time"
)

// HealthChecker reports whether the backend is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Prober periodically pings the backend and feeds the result into a Signal.
type Prober struct {
	checker  HealthChecker
	signal   *Signal
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewProber creates a Prober. Each ping is bounded by timeout.
func NewProber(checker HealthChecker, signal *Signal, interval, timeout time.Duration, logger *slog.Logger) *Prober {
	return &Prober{
		checker:  checker,
		signal:   signal,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Probe pings once and updates the signal.
func (p *Prober) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.checker.Ping(ctx)
	online := err == nil

	if p.signal.Set(online) && p.logger != nil {
		p.logger.Info("connectivity changed",
			slog.Bool("online", online),
			slog.Any("error", err),
		)
	}

	return online
}

// Run probes immediately and then on every interval until ctx is cancelled.
func (p *Prober) Run(ctx context.Context) error {
	if p.logger != nil {
		p.logger.Info("starting connectivity prober", slog.Duration("interval", p.interval))
	}

	p.Probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if p.logger != nil {
				p.logger.Info("stopping connectivity prober")
			}
			return ctx.Err()
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}
