package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/rewardsync/internal/connectivity"
	cryptoService "github.com/allisson/rewardsync/internal/crypto/service"
	mediaService "github.com/allisson/rewardsync/internal/media/service"
	remoteService "github.com/allisson/rewardsync/internal/remote/service"
)

// RemoteClient returns the backend API client.
func (c *Container) RemoteClient() *remoteService.Client {
	c.remoteClientInit.Do(func() {
		c.remoteClient = remoteService.NewClient(remoteService.Config{
			BaseURL:           c.config.BackendBaseURL,
			Timeout:           c.config.BackendTimeout,
			RequestsPerSecond: c.config.BackendRateLimitRequestsPerSec,
			Burst:             c.config.BackendRateLimitBurst,
		})
	})
	return c.remoteClient
}

// MediaStorage returns the bucket uploads are written to.
func (c *Container) MediaStorage(ctx context.Context) (*mediaService.Storage, error) {
	var err error
	c.mediaStorageInit.Do(func() {
		c.mediaStorage, err = mediaService.OpenStorage(ctx, c.config.MediaBucketURL)
		if err != nil {
			c.initErrors["mediaStorage"] = fmt.Errorf("failed to open media storage: %w", err)
		}
	})
	if storedErr, exists := c.initErrors["mediaStorage"]; exists {
		return nil, storedErr
	}
	return c.mediaStorage, nil
}

// PayloadCipher returns the cipher protecting queued payloads at rest.
func (c *Container) PayloadCipher(ctx context.Context) (cryptoService.PayloadCipher, error) {
	var err error
	c.payloadCipherInit.Do(func() {
		c.payloadCipher, err = c.initPayloadCipher(ctx)
		if err != nil {
			c.initErrors["payloadCipher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["payloadCipher"]; exists {
		return nil, storedErr
	}
	return c.payloadCipher, nil
}

// ConnectivityProber returns the backend health prober, or nil when probing is disabled.
func (c *Container) ConnectivityProber() *connectivity.Prober {
	c.connectivityProbeInit.Do(func() {
		if c.config.ConnectivityProbeInterval <= 0 {
			return
		}
		timeout := c.config.BackendTimeout
		if timeout <= 0 || timeout > c.config.ConnectivityProbeInterval {
			timeout = c.config.ConnectivityProbeInterval
		}
		c.connectivityProbe = connectivity.NewProber(
			c.RemoteClient(),
			c.ConnectivitySignal(),
			c.config.ConnectivityProbeInterval,
			timeout,
			c.Logger(),
		)
	})
	return c.connectivityProbe
}

// initPayloadCipher opens the configured keeper. Without one, payloads are stored as is.
func (c *Container) initPayloadCipher(ctx context.Context) (cryptoService.PayloadCipher, error) {
	if c.config.PayloadKeeperURI == "" {
		c.Logger().Warn("no payload keeper configured, queued payloads are stored unencrypted")
		return cryptoService.PlaintextCipher{}, nil
	}

	keeper, err := cryptoService.NewKeeperOpener().Open(ctx, c.config.PayloadKeeperURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open payload keeper: %w", err)
	}

	c.Logger().Info("payload encryption enabled", slog.String("keeper", cryptoService.RedactKeeperURI(c.config.PayloadKeeperURI)))
	return cryptoService.NewKeeperCipher(keeper), nil
}

