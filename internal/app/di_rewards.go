package app

import (
	"fmt"

	rewardsHTTP "github.com/allisson/rewardsync/internal/rewards/http"
	rewardsRepository "github.com/allisson/rewardsync/internal/rewards/repository"
	rewardsUseCase "github.com/allisson/rewardsync/internal/rewards/usecase"
)

// HistoryRepository returns the history ledger repository based on database driver.
func (c *Container) HistoryRepository() (rewardsUseCase.HistoryRepository, error) {
	var err error
	c.historyRepositoryInit.Do(func() {
		c.historyRepository, err = c.initHistoryRepository()
		if err != nil {
			c.initErrors["historyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["historyRepository"]; exists {
		return nil, storedErr
	}
	return c.historyRepository, nil
}

// SessionRepository returns the quiz session repository based on database driver.
func (c *Container) SessionRepository() (rewardsUseCase.SessionRepository, error) {
	var err error
	c.sessionRepositoryInit.Do(func() {
		c.sessionRepository, err = c.initSessionRepository()
		if err != nil {
			c.initErrors["sessionRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionRepository"]; exists {
		return nil, storedErr
	}
	return c.sessionRepository, nil
}

// WalletRepository returns the wallet repository based on database driver.
func (c *Container) WalletRepository() (rewardsUseCase.WalletRepository, error) {
	var err error
	c.walletRepositoryInit.Do(func() {
		c.walletRepository, err = c.initWalletRepository()
		if err != nil {
			c.initErrors["walletRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["walletRepository"]; exists {
		return nil, storedErr
	}
	return c.walletRepository, nil
}

// AnswerReconciler returns the reconciler applied after a confirmed answer.
func (c *Container) AnswerReconciler() (*rewardsUseCase.AnswerReconciler, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for answer reconciler: %w", err)
	}

	historyRepo, err := c.HistoryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get history repository for answer reconciler: %w", err)
	}

	sessionRepo, err := c.SessionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get session repository for answer reconciler: %w", err)
	}

	walletRepo, err := c.WalletRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet repository for answer reconciler: %w", err)
	}

	return rewardsUseCase.NewAnswerReconciler(txManager, historyRepo, sessionRepo, walletRepo, c.Logger()), nil
}

// UploadReconciler returns the reconciler applied after a confirmed upload.
func (c *Container) UploadReconciler() (*rewardsUseCase.UploadReconciler, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for upload reconciler: %w", err)
	}

	historyRepo, err := c.HistoryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get history repository for upload reconciler: %w", err)
	}

	walletRepo, err := c.WalletRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet repository for upload reconciler: %w", err)
	}

	return rewardsUseCase.NewUploadReconciler(txManager, historyRepo, walletRepo), nil
}

// SessionUseCase returns the quiz session use case.
func (c *Container) SessionUseCase() (rewardsUseCase.SessionUseCase, error) {
	var err error
	c.sessionUseCaseInit.Do(func() {
		c.sessionUseCase, err = c.initSessionUseCase()
		if err != nil {
			c.initErrors["sessionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionUseCase"]; exists {
		return nil, storedErr
	}
	return c.sessionUseCase, nil
}

// WalletUseCase returns the wallet use case.
func (c *Container) WalletUseCase() (rewardsUseCase.WalletUseCase, error) {
	var err error
	c.walletUseCaseInit.Do(func() {
		c.walletUseCase, err = c.initWalletUseCase()
		if err != nil {
			c.initErrors["walletUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["walletUseCase"]; exists {
		return nil, storedErr
	}
	return c.walletUseCase, nil
}

// RewardsHandler returns the HTTP handler for sessions, wallet and history.
func (c *Container) RewardsHandler() (*rewardsHTTP.RewardsHandler, error) {
	var err error
	c.rewardsHandlerInit.Do(func() {
		c.rewardsHandler, err = c.initRewardsHandler()
		if err != nil {
			c.initErrors["rewardsHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rewardsHandler"]; exists {
		return nil, storedErr
	}
	return c.rewardsHandler, nil
}

// initHistoryRepository creates the history repository based on the database driver.
func (c *Container) initHistoryRepository() (rewardsUseCase.HistoryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for history repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return rewardsRepository.NewPostgreSQLHistoryRepository(db), nil
	case "mysql", "sqlite":
		return rewardsRepository.NewMySQLHistoryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSessionRepository creates the session repository based on the database driver.
func (c *Container) initSessionRepository() (rewardsUseCase.SessionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for session repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return rewardsRepository.NewPostgreSQLSessionRepository(db), nil
	case "mysql", "sqlite":
		return rewardsRepository.NewMySQLSessionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initWalletRepository creates the wallet repository based on the database driver.
func (c *Container) initWalletRepository() (rewardsUseCase.WalletRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for wallet repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return rewardsRepository.NewPostgreSQLWalletRepository(db), nil
	case "mysql", "sqlite":
		return rewardsRepository.NewMySQLWalletRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSessionUseCase creates the session use case.
func (c *Container) initSessionUseCase() (rewardsUseCase.SessionUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for session use case: %w", err)
	}

	sessionRepo, err := c.SessionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get session repository for session use case: %w", err)
	}

	return rewardsUseCase.NewSessionUseCase(txManager, sessionRepo), nil
}

// initWalletUseCase creates the wallet use case.
func (c *Container) initWalletUseCase() (rewardsUseCase.WalletUseCase, error) {
	historyRepo, err := c.HistoryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get history repository for wallet use case: %w", err)
	}

	walletRepo, err := c.WalletRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet repository for wallet use case: %w", err)
	}

	return rewardsUseCase.NewWalletUseCase(historyRepo, walletRepo), nil
}

// initRewardsHandler creates the rewards HTTP handler.
func (c *Container) initRewardsHandler() (*rewardsHTTP.RewardsHandler, error) {
	sessionUseCase, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for rewards handler: %w", err)
	}

	walletUseCase, err := c.WalletUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet use case for rewards handler: %w", err)
	}

	return rewardsHTTP.NewRewardsHandler(sessionUseCase, walletUseCase, c.IdentitySession(), c.Logger()), nil
}
