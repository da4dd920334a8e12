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

// MySQLPendingMutationRepository handles pending mutation persistence for MySQL and sqlite.
type MySQLPendingMutationRepository struct {
	db *sql.DB
}

// NewMySQLPendingMutationRepository creates a new MySQLPendingMutationRepository.
func NewMySQLPendingMutationRepository(db *sql.DB) *MySQLPendingMutationRepository {
	return &MySQLPendingMutationRepository{db: db}
}

// Create inserts a new pending mutation.
func (r *MySQLPendingMutationRepository) Create(ctx context.Context, m *queueDomain.PendingMutation) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO pending_mutations (id, kind, owner_user_id, payload, retry_count, last_error, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	// Convert UUID to bytes for BINARY(16)
	idBytes, err := m.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal pending mutation id")
	}

	_, err = querier.ExecContext(ctx, query, idBytes, m.Kind, m.OwnerUserID, m.Payload,
		m.RetryCount, m.LastError, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create pending mutation")
	}
	return nil
}

// Get retrieves a pending mutation by id.
func (r *MySQLPendingMutationRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*queueDomain.PendingMutation, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, kind, owner_user_id, payload, retry_count, last_error, created_at, updated_at
			  FROM pending_mutations
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal pending mutation id")
	}

	m, err := scanMySQLPendingMutation(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, queueDomain.ErrMutationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get pending mutation")
	}
	return m, nil
}

// ListByKind returns every pending mutation of a kind in FIFO order.
func (r *MySQLPendingMutationRepository) ListByKind(
	ctx context.Context,
	kind queueDomain.Kind,
) ([]*queueDomain.PendingMutation, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, kind, owner_user_id, payload, retry_count, last_error, created_at, updated_at
			  FROM pending_mutations
			  WHERE kind = ?
			  ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pending mutations")
	}
	defer rows.Close() //nolint:errcheck

	var mutations []*queueDomain.PendingMutation
	for rows.Next() {
		m, err := scanMySQLPendingMutation(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan pending mutation")
		}
		mutations = append(mutations, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate pending mutations")
	}

	return mutations, nil
}

// Update persists retry bookkeeping. Owner and payload are immutable after creation.
func (r *MySQLPendingMutationRepository) Update(ctx context.Context, m *queueDomain.PendingMutation) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE pending_mutations
			  SET retry_count = ?, last_error = ?, updated_at = ?
			  WHERE id = ?`

	idBytes, err := m.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal pending mutation id")
	}

	result, err := querier.ExecContext(ctx, query, m.RetryCount, m.LastError, m.UpdatedAt, idBytes)
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
func (r *MySQLPendingMutationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal pending mutation id")
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM pending_mutations WHERE id = ?`, idBytes); err != nil {
		return apperrors.Wrap(err, "failed to delete pending mutation")
	}
	return nil
}

// DeleteByOwner removes every pending mutation created by ownerUserID.
func (r *MySQLPendingMutationRepository) DeleteByOwner(ctx context.Context, ownerUserID string) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM pending_mutations WHERE owner_user_id = ?`, ownerUserID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete pending mutations by owner")
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLPendingMutation(row rowScanner) (*queueDomain.PendingMutation, error) {
	var m queueDomain.PendingMutation
	var idBytes []byte

	if err := row.Scan(&idBytes, &m.Kind, &m.OwnerUserID, &m.Payload,
		&m.RetryCount, &m.LastError, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}

	// Convert bytes back to UUID
	if err := m.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, err
	}

	return &m, nil
}
