// Package repository provides data persistence for the locally derived rewards state.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/rewardsync/internal/database"
	apperrors "github.com/allisson/rewardsync/internal/errors"
	rewardsDomain "github.com/allisson/rewardsync/internal/rewards/domain"
)

// MySQLHistoryRepository handles history persistence for MySQL and sqlite.
type MySQLHistoryRepository struct {
	db *sql.DB
}

// NewMySQLHistoryRepository creates a new MySQLHistoryRepository.
func NewMySQLHistoryRepository(db *sql.DB) *MySQLHistoryRepository {
	return &MySQLHistoryRepository{db: db}
}

// Create appends a history entry.
func (r *MySQLHistoryRepository) Create(ctx context.Context, entry *rewardsDomain.HistoryEntry) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO reward_history (id, user_id, mutation_id, kind, reference_id, outcome, points, recorded_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, uuidBytes(entry.ID), entry.UserID, uuidBytes(entry.MutationID),
		entry.Kind, entry.ReferenceID, entry.Outcome, entry.Points, entry.RecordedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create history entry")
	}
	return nil
}

// ExistsByMutationID reports whether mutationID was already recorded.
func (r *MySQLHistoryRepository) ExistsByMutationID(ctx context.Context, mutationID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	var count int
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM reward_history WHERE mutation_id = ?`,
		uuidBytes(mutationID)).Scan(&count)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check history entry")
	}
	return count > 0, nil
}

// ListByUser returns a window of the user's history in the order q asks for.
func (r *MySQLHistoryRepository) ListByUser(
	ctx context.Context,
	userID string,
	q rewardsDomain.HistoryQuery,
) ([]*rewardsDomain.HistoryEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, mutation_id, kind, reference_id, outcome, points, recorded_at
			  FROM reward_history
			  WHERE user_id = ?
			  ORDER BY ` + q.OrderBy() + `
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, userID, q.Limit, q.Offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list history entries")
	}
	defer rows.Close() //nolint:errcheck

	entries := make([]*rewardsDomain.HistoryEntry, 0)
	for rows.Next() {
		var entry rewardsDomain.HistoryEntry
		var id, mutationID []byte
		if err := rows.Scan(&id, &entry.UserID, &mutationID, &entry.Kind, &entry.ReferenceID,
			&entry.Outcome, &entry.Points, &entry.RecordedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan history entry")
		}
		if err := entry.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal history entry id")
		}
		if err := entry.MutationID.UnmarshalBinary(mutationID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal mutation id")
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate history entries")
	}
	return entries, nil
}

// uuidBytes converts a UUID to its BINARY(16) form.
func uuidBytes(id uuid.UUID) []byte {
	b, _ := id.MarshalBinary()
	return b
}
