package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a quiz session.
type SessionStatus string

const (
	SessionIdle      SessionStatus = "IDLE"
	SessionActive    SessionStatus = "ACTIVE"
	SessionCompleted SessionStatus = "COMPLETED"
)

// QuizSession aggregates the answers given during one run through a quiz.
type QuizSession struct {
	ID            uuid.UUID
	UserID        string
	QuizID        string
	Status        SessionStatus
	AnsweredCount int
	CorrectCount  int
	Points        int64
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// NewQuizSession starts an active session for userID.
func NewQuizSession(userID, quizID string) *QuizSession {
	return &QuizSession{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    userID,
		QuizID:    quizID,
		Status:    SessionActive,
		StartedAt: time.Now().UTC(),
	}
}

// IsActive reports whether the session still accepts answers.
func (s *QuizSession) IsActive() bool {
	return s.Status == SessionActive
}

// Apply counts one confirmed answer.
func (s *QuizSession) Apply(correct bool, points int64) {
	s.AnsweredCount++
	if correct {
		s.CorrectCount++
	}
	s.Points += points
}

// Complete closes the session.
func (s *QuizSession) Complete(at time.Time) {
	s.Status = SessionCompleted
	s.CompletedAt = &at
}
