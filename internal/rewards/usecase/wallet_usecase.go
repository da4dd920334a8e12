package usecase

import (
	"context"
	"errors"

	rewardsDomain "github.com/allisson/rewardsync/internal/rewards/domain"
)

type walletUseCase struct {
	historyRepo HistoryRepository
	walletRepo  WalletRepository
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(historyRepo HistoryRepository, walletRepo WalletRepository) WalletUseCase {
	return &walletUseCase{
		historyRepo: historyRepo,
		walletRepo:  walletRepo,
	}
}

// Balance returns the user's wallet.
func (w *walletUseCase) Balance(ctx context.Context, userID string) (*rewardsDomain.Wallet, error) {
	wallet, err := w.walletRepo.Get(ctx, userID)
	if errors.Is(err, rewardsDomain.ErrWalletNotFound) {
		return &rewardsDomain.Wallet{UserID: userID}, nil
	}
	return wallet, err
}

// History returns the user's history ledger.
func (w *walletUseCase) History(
	ctx context.Context,
	userID string,
	q rewardsDomain.HistoryQuery,
) ([]*rewardsDomain.HistoryEntry, error) {
	return w.historyRepo.ListByUser(ctx, userID, q)
}
