package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/rewardsync/internal/database"
	apperrors "github.com/allisson/rewardsync/internal/errors"
	rewardsDomain "github.com/allisson/rewardsync/internal/rewards/domain"
)

// MySQLWalletRepository handles wallet persistence for MySQL and sqlite.
type MySQLWalletRepository struct {
	db *sql.DB
}

// NewMySQLWalletRepository creates a new MySQLWalletRepository.
func NewMySQLWalletRepository(db *sql.DB) *MySQLWalletRepository {
	return &MySQLWalletRepository{db: db}
}

// Get retrieves the wallet of userID.
func (r *MySQLWalletRepository) Get(ctx context.Context, userID string) (*rewardsDomain.Wallet, error) {
	querier := database.GetTx(ctx, r.db)

	var w rewardsDomain.Wallet
	err := querier.QueryRowContext(ctx, `SELECT user_id, balance, updated_at FROM wallets WHERE user_id = ?`, userID).
		Scan(&w.UserID, &w.Balance, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rewardsDomain.ErrWalletNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get wallet")
	}
	return &w, nil
}

// HasCredit reports whether mutationID already credited a wallet.
func (r *MySQLWalletRepository) HasCredit(ctx context.Context, mutationID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	var count int
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM wallet_credits WHERE mutation_id = ?`,
		uuidBytes(mutationID)).Scan(&count)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check wallet credit")
	}
	return count > 0, nil
}

// Credit records the credit for mutationID and adds amount to the balance.
// It must run inside a transaction so the credit row and the balance move together.
func (r *MySQLWalletRepository) Credit(
	ctx context.Context,
	userID string,
	mutationID uuid.UUID,
	amount int64,
	at time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	_, err := querier.ExecContext(ctx,
		`INSERT INTO wallet_credits (mutation_id, user_id, amount, created_at) VALUES (?, ?, ?, ?)`,
		uuidBytes(mutationID), userID, amount, at)
	if err != nil {
		return apperrors.Wrap(err, "failed to create wallet credit")
	}

	result, err := querier.ExecContext(ctx,
		`UPDATE wallets SET balance = balance + ?, updated_at = ? WHERE user_id = ?`, amount, at, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update wallet")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows > 0 {
		return nil
	}

	_, err = querier.ExecContext(ctx, `INSERT INTO wallets (user_id, balance, updated_at) VALUES (?, ?, ?)`,
		userID, amount, at)
	if err != nil {
		return apperrors.Wrap(err, "failed to create wallet")
	}
	return nil
}
