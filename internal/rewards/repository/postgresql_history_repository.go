package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/rewardsync/internal/database"
	apperrors "github.com/allisson/rewardsync/internal/errors"
	rewardsDomain "github.com/allisson/rewardsync/internal/rewards/domain"
)

// PostgreSQLHistoryRepository handles history persistence for PostgreSQL.
type PostgreSQLHistoryRepository struct {
	db *sql.DB
}

// NewPostgreSQLHistoryRepository creates a new PostgreSQLHistoryRepository.
func NewPostgreSQLHistoryRepository(db *sql.DB) *PostgreSQLHistoryRepository {
	return &PostgreSQLHistoryRepository{db: db}
}

// Create appends a history entry.
func (r *PostgreSQLHistoryRepository) Create(ctx context.Context, entry *rewardsDomain.HistoryEntry) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO reward_history (id, user_id, mutation_id, kind, reference_id, outcome, points, recorded_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(ctx, query, entry.ID, entry.UserID, entry.MutationID,
		entry.Kind, entry.ReferenceID, entry.Outcome, entry.Points, entry.RecordedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create history entry")
	}
	return nil
}

// ExistsByMutationID reports whether mutationID was already recorded.
func (r *PostgreSQLHistoryRepository) ExistsByMutationID(ctx context.Context, mutationID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	var exists bool
	err := querier.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reward_history WHERE mutation_id = $1)`, mutationID).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check history entry")
	}
	return exists, nil
}

// ListByUser returns a window of the user's history in the order q asks for.
func (r *PostgreSQLHistoryRepository) ListByUser(
	ctx context.Context,
	userID string,
	q rewardsDomain.HistoryQuery,
) ([]*rewardsDomain.HistoryEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, mutation_id, kind, reference_id, outcome, points, recorded_at
			  FROM reward_history
			  WHERE user_id = $1
			  ORDER BY ` + q.OrderBy() + `
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, userID, q.Limit, q.Offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list history entries")
	}
	defer rows.Close() //nolint:errcheck

	entries := make([]*rewardsDomain.HistoryEntry, 0)
	for rows.Next() {
		var entry rewardsDomain.HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.MutationID, &entry.Kind, &entry.ReferenceID,
			&entry.Outcome, &entry.Points, &entry.RecordedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan history entry")
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate history entries")
	}
	return entries, nil
}
