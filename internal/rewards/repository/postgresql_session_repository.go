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

// PostgreSQLSessionRepository handles quiz session persistence for PostgreSQL.
type PostgreSQLSessionRepository struct {
	db *sql.DB
}

// NewPostgreSQLSessionRepository creates a new PostgreSQLSessionRepository.
func NewPostgreSQLSessionRepository(db *sql.DB) *PostgreSQLSessionRepository {
	return &PostgreSQLSessionRepository{db: db}
}

// Create inserts a new quiz session.
func (r *PostgreSQLSessionRepository) Create(ctx context.Context, s *rewardsDomain.QuizSession) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO quiz_sessions (id, user_id, quiz_id, status, answered_count, correct_count, points, started_at, completed_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(ctx, query, s.ID, s.UserID, s.QuizID, s.Status,
		s.AnsweredCount, s.CorrectCount, s.Points, s.StartedAt, s.CompletedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create quiz session")
	}
	return nil
}

// Get retrieves a quiz session by id.
func (r *PostgreSQLSessionRepository) Get(ctx context.Context, id uuid.UUID) (*rewardsDomain.QuizSession, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, quiz_id, status, answered_count, correct_count, points, started_at, completed_at
			  FROM quiz_sessions
			  WHERE id = $1`

	return scanPostgreSQLSession(querier.QueryRowContext(ctx, query, id))
}

// GetActiveByQuiz returns the user's active session for quizID.
func (r *PostgreSQLSessionRepository) GetActiveByQuiz(
	ctx context.Context,
	userID, quizID string,
) (*rewardsDomain.QuizSession, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, quiz_id, status, answered_count, correct_count, points, started_at, completed_at
			  FROM quiz_sessions
			  WHERE user_id = $1 AND quiz_id = $2 AND status = $3
			  ORDER BY started_at DESC
			  LIMIT 1`

	return scanPostgreSQLSession(querier.QueryRowContext(ctx, query, userID, quizID, rewardsDomain.SessionActive))
}

// Update persists status, counters and completion time.
func (r *PostgreSQLSessionRepository) Update(ctx context.Context, s *rewardsDomain.QuizSession) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE quiz_sessions
			  SET status = $1, answered_count = $2, correct_count = $3, points = $4, completed_at = $5
			  WHERE id = $6`

	result, err := querier.ExecContext(ctx, query, s.Status, s.AnsweredCount, s.CorrectCount, s.Points,
		s.CompletedAt, s.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update quiz session")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return rewardsDomain.ErrSessionNotFound
	}
	return nil
}

// HasAnswer reports whether mutationID was already applied to the session.
func (r *PostgreSQLSessionRepository) HasAnswer(ctx context.Context, sessionID, mutationID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	var exists bool
	err := querier.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM quiz_session_answers WHERE session_id = $1 AND mutation_id = $2)`,
		sessionID, mutationID).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check session answer")
	}
	return exists, nil
}

// RecordAnswer marks mutationID as applied to the session.
func (r *PostgreSQLSessionRepository) RecordAnswer(
	ctx context.Context,
	sessionID, mutationID uuid.UUID,
	recordedAt time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	_, err := querier.ExecContext(ctx,
		`INSERT INTO quiz_session_answers (session_id, mutation_id, recorded_at) VALUES ($1, $2, $3)`,
		sessionID, mutationID, recordedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to record session answer")
	}
	return nil
}

func scanPostgreSQLSession(row *sql.Row) (*rewardsDomain.QuizSession, error) {
	var s rewardsDomain.QuizSession
	var completedAt sql.NullTime

	err := row.Scan(&s.ID, &s.UserID, &s.QuizID, &s.Status, &s.AnsweredCount, &s.CorrectCount,
		&s.Points, &s.StartedAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rewardsDomain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get quiz session")
	}

	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}
	return &s, nil
}
