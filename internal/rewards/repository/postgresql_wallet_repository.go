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

// PostgreSQLWalletRepository handles wallet persistence for PostgreSQL.
type PostgreSQLWalletRepository struct {
	db *sql.DB
}

// NewPostgreSQLWalletRepository creates a new PostgreSQLWalletRepository.
func NewPostgreSQLWalletRepository(db *sql.DB) *PostgreSQLWalletRepository {
	return &PostgreSQLWalletRepository{db: db}
}

// Get retrieves the wallet of userID.
func (r *PostgreSQLWalletRepository) Get(ctx context.Context, userID string) (*rewardsDomain.Wallet, error) {
	querier := database.GetTx(ctx, r.db)

	var w rewardsDomain.Wallet
	err := querier.QueryRowContext(ctx, `SELECT user_id, balance, updated_at FROM wallets WHERE user_id = $1`, userID).
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
func (r *PostgreSQLWalletRepository) HasCredit(ctx context.Context, mutationID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	var exists bool
	err := querier.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM wallet_credits WHERE mutation_id = $1)`, mutationID).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check wallet credit")
	}
	return exists, nil
}

// Credit records the credit for mutationID and adds amount to the balance in one upsert.
func (r *PostgreSQLWalletRepository) Credit(
	ctx context.Context,
	userID string,
	mutationID uuid.UUID,
	amount int64,
	at time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	_, err := querier.ExecContext(ctx,
		`INSERT INTO wallet_credits (mutation_id, user_id, amount, created_at) VALUES ($1, $2, $3, $4)`,
		mutationID, userID, amount, at)
	if err != nil {
		return apperrors.Wrap(err, "failed to create wallet credit")
	}

	query := `INSERT INTO wallets (user_id, balance, updated_at) VALUES ($1, $2, $3)
			  ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at`

	if _, err := querier.ExecContext(ctx, query, userID, amount, at); err != nil {
		return apperrors.Wrap(err, "failed to update wallet")
	}
	return nil
}
