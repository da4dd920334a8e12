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

// MySQLSessionRepository handles quiz session persistence for MySQL and sqlite.
type MySQLSessionRepository struct {
	db *sql.DB
}

// NewMySQLSessionRepository creates a new MySQLSessionRepository.
func NewMySQLSessionRepository(db *sql.DB) *MySQLSessionRepository {
	return &MySQLSessionRepository{db: db}
}

// Create inserts a new quiz session.
func (r *MySQLSessionRepository) Create(ctx context.Context, s *rewardsDomain.QuizSession) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO quiz_sessions (id, user_id, quiz_id, status, answered_count, correct_count, points, started_at, completed_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, uuidBytes(s.ID), s.UserID, s.QuizID, s.Status,
		s.AnsweredCount, s.CorrectCount, s.Points, s.StartedAt, s.CompletedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create quiz session")
	}
	return nil
}

// Get retrieves a quiz session by id.
func (r *MySQLSessionRepository) Get(ctx context.Context, id uuid.UUID) (*rewardsDomain.QuizSession, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, quiz_id, status, answered_count, correct_count, points, started_at, completed_at
			  FROM quiz_sessions
			  WHERE id = ?`

	return scanMySQLSession(querier.QueryRowContext(ctx, query, uuidBytes(id)))
}

// GetActiveByQuiz returns the user's active session for quizID.
func (r *MySQLSessionRepository) GetActiveByQuiz(
	ctx context.Context,
	userID, quizID string,
) (*rewardsDomain.QuizSession, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, quiz_id, status, answered_count, correct_count, points, started_at, completed_at
			  FROM quiz_sessions
			  WHERE user_id = ? AND quiz_id = ? AND status = ?
			  ORDER BY started_at DESC
			  LIMIT 1`

	return scanMySQLSession(querier.QueryRowContext(ctx, query, userID, quizID, rewardsDomain.SessionActive))
}

// Update persists status, counters and completion time.
func (r *MySQLSessionRepository) Update(ctx context.Context, s *rewardsDomain.QuizSession) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE quiz_sessions
			  SET status = ?, answered_count = ?, correct_count = ?, points = ?, completed_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, s.Status, s.AnsweredCount, s.CorrectCount, s.Points,
		s.CompletedAt, uuidBytes(s.ID))
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
func (r *MySQLSessionRepository) HasAnswer(ctx context.Context, sessionID, mutationID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	var count int
	err := querier.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quiz_session_answers WHERE session_id = ? AND mutation_id = ?`,
		uuidBytes(sessionID), uuidBytes(mutationID)).Scan(&count)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check session answer")
	}
	return count > 0, nil
}

// RecordAnswer marks mutationID as applied to the session.
func (r *MySQLSessionRepository) RecordAnswer(
	ctx context.Context,
	sessionID, mutationID uuid.UUID,
	recordedAt time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	_, err := querier.ExecContext(ctx,
		`INSERT INTO quiz_session_answers (session_id, mutation_id, recorded_at) VALUES (?, ?, ?)`,
		uuidBytes(sessionID), uuidBytes(mutationID), recordedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to record session answer")
	}
	return nil
}

func scanMySQLSession(row *sql.Row) (*rewardsDomain.QuizSession, error) {
	var s rewardsDomain.QuizSession
	var id []byte
	var completedAt sql.NullTime

	err := row.Scan(&id, &s.UserID, &s.QuizID, &s.Status, &s.AnsweredCount, &s.CorrectCount,
		&s.Points, &s.StartedAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rewardsDomain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get quiz session")
	}

	if err := s.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal quiz session id")
	}
	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}
	return &s, nil
}
