package app

import (
	"fmt"

	paymentHTTP "github.com/allisson/rewardsync/internal/payment/http"
	paymentUseCase "github.com/allisson/rewardsync/internal/payment/usecase"
	subscriptionHTTP "github.com/allisson/rewardsync/internal/subscription/http"
	subscriptionUseCase "github.com/allisson/rewardsync/internal/subscription/usecase"
)

// SubscriptionUseCase returns the unified subscription status use case.
func (c *Container) SubscriptionUseCase() (subscriptionUseCase.StatusUseCase, error) {
	var err error
	c.subscriptionUseCaseInit.Do(func() {
		c.subscriptionUseCase, err = c.initSubscriptionUseCase()
		if err != nil {
			c.initErrors["subscriptionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["subscriptionUseCase"]; exists {
		return nil, storedErr
	}
	return c.subscriptionUseCase, nil
}

// PaymentUseCase returns the payment use case. Its pollers are stopped by Shutdown.
func (c *Container) PaymentUseCase() (paymentUseCase.PaymentUseCase, error) {
	var err error
	c.paymentUseCaseInit.Do(func() {
		c.paymentUseCase, err = c.initPaymentUseCase()
		if err != nil {
			c.initErrors["paymentUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["paymentUseCase"]; exists {
		return nil, storedErr
	}
	return c.paymentUseCase, nil
}

// SubscriptionHandler returns the HTTP handler for the unified subscription status.
func (c *Container) SubscriptionHandler() (*subscriptionHTTP.SubscriptionHandler, error) {
	var err error
	c.subscriptionHandlerInit.Do(func() {
		c.subscriptionHandler, err = c.initSubscriptionHandler()
		if err != nil {
			c.initErrors["subscriptionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["subscriptionHandler"]; exists {
		return nil, storedErr
	}
	return c.subscriptionHandler, nil
}

// PaymentHandler returns the HTTP handler for payment operations.
func (c *Container) PaymentHandler() (*paymentHTTP.PaymentHandler, error) {
	var err error
	c.paymentHandlerInit.Do(func() {
		c.paymentHandler, err = c.initPaymentHandler()
		if err != nil {
			c.initErrors["paymentHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["paymentHandler"]; exists {
		return nil, storedErr
	}
	return c.paymentHandler, nil
}

// initSubscriptionUseCase creates the status use case over the backend client.
func (c *Container) initSubscriptionUseCase() (subscriptionUseCase.StatusUseCase, error) {
	baseUseCase := subscriptionUseCase.NewStatusUseCase(
		c.RemoteClient(),
		c.config.SubscriptionCacheTTL,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for subscription use case: %w", err)
		}
		return subscriptionUseCase.NewStatusUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initPaymentUseCase creates the payment use case. A successful payment invalidates the
// cached subscription status of the payer.
func (c *Container) initPaymentUseCase() (paymentUseCase.PaymentUseCase, error) {
	statusUseCase, err := c.SubscriptionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription use case for payment use case: %w", err)
	}

	baseUseCase := paymentUseCase.NewPaymentUseCase(
		c.RemoteClient(),
		c.IdentitySession(),
		statusUseCase,
		c.NotificationFeed(),
		paymentUseCase.Config{
			PollInterval: c.config.PaymentPollInterval,
			Timeout:      c.config.PaymentTimeout,
		},
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			baseUseCase.Close()
			return nil, fmt.Errorf("failed to get business metrics for payment use case: %w", err)
		}
		return paymentUseCase.NewPaymentUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initSubscriptionHandler creates the subscription HTTP handler.
func (c *Container) initSubscriptionHandler() (*subscriptionHTTP.SubscriptionHandler, error) {
	statusUseCase, err := c.SubscriptionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription use case for subscription handler: %w", err)
	}

	return subscriptionHTTP.NewSubscriptionHandler(statusUseCase, c.IdentitySession(), c.Logger()), nil
}

// initPaymentHandler creates the payment HTTP handler.
func (c *Container) initPaymentHandler() (*paymentHTTP.PaymentHandler, error) {
	useCase, err := c.PaymentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get payment use case for payment handler: %w", err)
	}

	return paymentHTTP.NewPaymentHandler(useCase, c.Logger()), nil
}
