// Package repository provides data persistence implementations for pending mutations.
// PostgreSQL uses native UUID columns; the MySQL implementation stores ids as BINARY(16)
// and also serves sqlite, which accepts the same placeholder dialect.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/rewardsync/internal/database"
	apperrors "github.com/allisson/rewardsync/internal/errors"
	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
)

// PostgreSQLPendingMutationRepository handles pending mutation persistence for PostgreSQL.
type PostgreSQLPendingMutationRepository struct {
	db *sql.DB
}

// NewPostgreSQLPendingMutationRepository creates a new PostgreSQLPendingMutationRepository.
func NewPostgreSQLPendingMutationRepository(db *sql.DB) *PostgreSQLPendingMutationRepository {
	return &PostgreSQLPendingMutationRepository{db: db}
}

// Create inserts a new pending mutation.
func (r *PostgreSQLPendingMutationRepository) Create(ctx context.Context, m *queueDomain.PendingMutation) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO pending_mutations (id, kind, owner_user_id, payload, retry_count, last_error, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(ctx, query, m.ID, m.Kind, m.OwnerUserID, m.Payload,
		m.RetryCount, m.LastError, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create pending mutation")
	}
	return nil
}

// Get retrieves a pending mutation by id.
func (r *PostgreSQLPendingMutationRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*queueDomain.PendingMutation, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, kind, owner_user_id, payload, retry_count, last_error, created_at, updated_at
			  FROM pending_mutations
			  WHERE id = $1`

	var m queueDomain.PendingMutation
	err := querier.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Kind, &m.OwnerUserID, &m.Payload,
		&m.RetryCount, &m.LastError, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, queueDomain.ErrMutationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get pending mutation")
	}

	return &m, nil
}

// ListByKind returns every pending mutation of a kind in FIFO order.
func (r *PostgreSQLPendingMutationRepository) ListByKind(
	ctx context.Context,
	kind queueDomain.Kind,
) ([]*queueDomain.PendingMutation, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, kind, owner_user_id, payload, retry_count, last_error, created_at, updated_at
			  FROM pending_mutations
			  WHERE kind = $1
			  ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pending mutations")
	}
	defer rows.Close() //nolint:errcheck

	var mutations []*queueDomain.PendingMutation
	for rows.Next() {
		var m queueDomain.PendingMutation
		if err := rows.Scan(&m.ID, &m.Kind, &m.OwnerUserID, &m.Payload,
			&m.RetryCount, &m.LastError, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan pending mutation")
		}
		mutations = append(mutations, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate pending mutations")
	}

	return mutations, nil
}

// Update persists retry bookkeeping. Owner and payload are immutable after creation.
func (r *PostgreSQLPendingMutationRepository) Update(ctx context.Context, m *queueDomain.PendingMutation) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE pending_mutations
			  SET retry_count = $1, last_error = $2, updated_at = $3
			  WHERE id = $4`

	result, err := querier.ExecContext(ctx, query, m.RetryCount, m.LastError, m.UpdatedAt, m.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update pending mutation")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return queueDomain.ErrMutationNotFound
	}
	return nil
}

// Delete removes a pending mutation. Deleting a missing id is not an error.
func (r *PostgreSQLPendingMutationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM pending_mutations WHERE id = $1`, id); err != nil {
		return apperrors.Wrap(err, "failed to delete pending mutation")
	}
	return nil
}

// DeleteByOwner removes every pending mutation created by ownerUserID.
func (r *PostgreSQLPendingMutationRepository) DeleteByOwner(ctx context.Context, ownerUserID string) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM pending_mutations WHERE owner_user_id = $1`, ownerUserID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete pending mutations by owner")
	}
	return result.RowsAffected()
}
