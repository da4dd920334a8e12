package app

import (
	"context"
	"fmt"

	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
	queueHTTP "github.com/allisson/rewardsync/internal/queue/http"
	queueRepository "github.com/allisson/rewardsync/internal/queue/repository"
	queueService "github.com/allisson/rewardsync/internal/queue/service"
	queueUseCase "github.com/allisson/rewardsync/internal/queue/usecase"
)

// PendingMutationRepository returns the pending mutation repository based on database driver.
func (c *Container) PendingMutationRepository() (queueUseCase.PendingMutationRepository, error) {
	var err error
	c.pendingMutationRepositoryInit.Do(func() {
		c.pendingMutationRepository, err = c.initPendingMutationRepository()
		if err != nil {
			c.initErrors["pendingMutationRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pendingMutationRepository"]; exists {
		return nil, storedErr
	}
	return c.pendingMutationRepository, nil
}

// QueueService returns the persisted queue shared by every processor.
func (c *Container) QueueService(ctx context.Context) (*queueUseCase.QueueService, error) {
	var err error
	c.queueServiceInit.Do(func() {
		c.queueService, err = c.initQueueService(ctx)
		if err != nil {
			c.initErrors["queueService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["queueService"]; exists {
		return nil, storedErr
	}
	return c.queueService, nil
}

// QueueScheduler returns the scheduler owning the answer and upload processors.
func (c *Container) QueueScheduler(ctx context.Context) (*queueUseCase.Scheduler, error) {
	var err error
	c.queueSchedulerInit.Do(func() {
		c.queueScheduler, err = c.initQueueScheduler(ctx)
		if err != nil {
			c.initErrors["queueScheduler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["queueScheduler"]; exists {
		return nil, storedErr
	}
	return c.queueScheduler, nil
}

// EnqueueUseCase returns the enqueue use case.
func (c *Container) EnqueueUseCase(ctx context.Context) (queueUseCase.EnqueueUseCase, error) {
	var err error
	c.enqueueUseCaseInit.Do(func() {
		c.enqueueUseCase, err = c.initEnqueueUseCase(ctx)
		if err != nil {
			c.initErrors["enqueueUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["enqueueUseCase"]; exists {
		return nil, storedErr
	}
	return c.enqueueUseCase, nil
}

// QueueHandler returns the HTTP handler for queue operations.
func (c *Container) QueueHandler() (*queueHTTP.QueueHandler, error) {
	var err error
	c.queueHandlerInit.Do(func() {
		c.queueHandler, err = c.initQueueHandler()
		if err != nil {
			c.initErrors["queueHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["queueHandler"]; exists {
		return nil, storedErr
	}
	return c.queueHandler, nil
}

// initPendingMutationRepository creates the pending mutation repository based on the database driver.
func (c *Container) initPendingMutationRepository() (queueUseCase.PendingMutationRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for pending mutation repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return queueRepository.NewPostgreSQLPendingMutationRepository(db), nil
	case "mysql", "sqlite":
		return queueRepository.NewMySQLPendingMutationRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initQueueService creates the persisted queue with payload encryption.
func (c *Container) initQueueService(ctx context.Context) (*queueUseCase.QueueService, error) {
	repo, err := c.PendingMutationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get pending mutation repository for queue service: %w", err)
	}

	cipher, err := c.PayloadCipher(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get payload cipher for queue service: %w", err)
	}

	return queueUseCase.NewQueueService(repo, cipher, c.Logger()), nil
}

// initQueueScheduler builds one processor per kind and the scheduler driving them.
func (c *Container) initQueueScheduler(ctx context.Context) (*queueUseCase.Scheduler, error) {
	store, err := c.QueueService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue service for queue scheduler: %w", err)
	}

	storage, err := c.MediaStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get media storage for queue scheduler: %w", err)
	}

	answerReconciler, err := c.AnswerReconciler()
	if err != nil {
		return nil, fmt.Errorf("failed to get answer reconciler for queue scheduler: %w", err)
	}

	uploadReconciler, err := c.UploadReconciler()
	if err != nil {
		return nil, fmt.Errorf("failed to get upload reconciler for queue scheduler: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for queue scheduler: %w", err)
	}

	client := c.RemoteClient()
	session := c.IdentitySession()
	feed := c.NotificationFeed()
	logger := c.Logger()

	processors := []queueUseCase.QueueProcessor{
		queueUseCase.NewProcessor(queueUseCase.ProcessorConfig{
			Kind:       queueDomain.KindAnswerSubmission,
			Store:      store,
			Identity:   session,
			Submitter:  queueService.NewAnswerSubmitter(client),
			Reconciler: answerReconciler,
			Notifier:   feed,
			Metrics:    businessMetrics,
			MaxRetries: c.config.QueueMaxRetries,
			Logger:     logger,
		}),
		queueUseCase.NewProcessor(queueUseCase.ProcessorConfig{
			Kind:       queueDomain.KindMediaUpload,
			Store:      store,
			Identity:   session,
			Submitter:  queueService.NewUploadSubmitter(storage, client),
			Reconciler: uploadReconciler,
			Notifier:   feed,
			Metrics:    businessMetrics,
			MaxRetries: c.config.QueueMaxRetries,
			Logger:     logger,
		}),
	}

	return queueUseCase.NewScheduler(
		queueUseCase.SchedulerConfig{SweepInterval: c.config.QueueSweepInterval},
		processors,
		c.ConnectivitySignal(),
		session,
		store,
		logger,
	), nil
}

// initEnqueueUseCase creates the enqueue use case.
func (c *Container) initEnqueueUseCase(ctx context.Context) (queueUseCase.EnqueueUseCase, error) {
	store, err := c.QueueService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue service for enqueue use case: %w", err)
	}

	baseUseCase := queueUseCase.NewEnqueueUseCase(store, c.IdentitySession())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for enqueue use case: %w", err)
		}
		return queueUseCase.NewEnqueueUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initQueueHandler creates the queue HTTP handler.
func (c *Container) initQueueHandler() (*queueHTTP.QueueHandler, error) {
	ctx := context.Background()

	enqueueUseCase, err := c.EnqueueUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get enqueue use case for queue handler: %w", err)
	}

	scheduler, err := c.QueueScheduler(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue scheduler for queue handler: %w", err)
	}

	return queueHTTP.NewQueueHandler(enqueueUseCase, scheduler, c.Logger()), nil
}
