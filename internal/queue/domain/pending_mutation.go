// Package domain defines the pending mutation queue entities and errors.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxRetries is the attempt budget of a pending mutation.
const DefaultMaxRetries = 3

// Kind identifies which processor owns a pending mutation.
type Kind string

const (
	KindAnswerSubmission Kind = "ANSWER_SUBMISSION"
	KindMediaUpload      Kind = "MEDIA_UPLOAD"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindAnswerSubmission || k == KindMediaUpload
}

// Label is the user-facing noun for the kind.
func (k Kind) Label() string {
	switch k {
	case KindAnswerSubmission:
		return "answer"
	case KindMediaUpload:
		return "upload"
	default:
		return "change"
	}
}

// ParseKind accepts a kind or its label.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindAnswerSubmission, KindMediaUpload} {
		if s == string(k) || s == k.Label() {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

// PendingMutation is a user-initiated change that could not be confirmed synchronously.
// Its ID doubles as the idempotency key sent to the backend.
type PendingMutation struct {
	ID          uuid.UUID
	Kind        Kind
	OwnerUserID string
	Payload     []byte
	RetryCount  int
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPendingMutation creates a mutation owned by ownerUserID with a time-ordered id.
func NewPendingMutation(kind Kind, ownerUserID string, payload []byte) *PendingMutation {
	now := time.Now().UTC()
	return &PendingMutation{
		ID:          uuid.Must(uuid.NewV7()),
		Kind:        kind,
		OwnerUserID: ownerUserID,
		Payload:     payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Exhausted reports whether the mutation has used its whole attempt budget.
func (m *PendingMutation) Exhausted(maxRetries int) bool {
	return m.RetryCount >= maxRetries
}

// OwnedBy reports whether userID created the mutation.
func (m *PendingMutation) OwnedBy(userID string) bool {
	return userID != "" && m.OwnerUserID == userID
}

// RecordAttempt counts an attempt before it is made.
func (m *PendingMutation) RecordAttempt() {
	m.RetryCount++
	m.UpdatedAt = time.Now().UTC()
}

// RecordFailure stores the error of the last attempt.
func (m *PendingMutation) RecordFailure(err error) {
	msg := err.Error()
	m.LastError = &msg
	m.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy so snapshots are not affected by later writes.
func (m *PendingMutation) Clone() *PendingMutation {
	c := *m
	c.Payload = append([]byte(nil), m.Payload...)
	if m.LastError != nil {
		msg := *m.LastError
		c.LastError = &msg
	}
	return &c
}
