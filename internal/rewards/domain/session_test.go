package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuizSession(t *testing.T) {
	s := NewQuizSession("user-1", "quiz-1")
	assert.True(t, s.IsActive())
	assert.Equal(t, "user-1", s.UserID)

	s.Apply(true, 10)
	s.Apply(false, 0)
	assert.Equal(t, 2, s.AnsweredCount)
	assert.Equal(t, 1, s.CorrectCount)
	assert.Equal(t, int64(10), s.Points)

	at := time.Now().UTC()
	s.Complete(at)
	assert.False(t, s.IsActive())
	assert.Equal(t, SessionCompleted, s.Status)
	assert.Equal(t, &at, s.CompletedAt)
}
