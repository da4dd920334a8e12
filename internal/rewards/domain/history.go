// Package domain defines the locally derived rewards state: history ledger, quiz sessions and wallet.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Outcome describes the confirmed result a history entry records.
type Outcome string

const (
	OutcomeCorrect   Outcome = "CORRECT"
	OutcomeIncorrect Outcome = "INCORRECT"
	OutcomeUploaded  Outcome = "UPLOADED"
)

// HistoryQuery selects a window of one user's history.
type HistoryQuery struct {
	Offset      int
	Limit       int
	OldestFirst bool
}

// OrderBy returns the ORDER BY terms for the query. Entries recorded at the same instant
// keep a stable order through the id.
func (q HistoryQuery) OrderBy() string {
	if q.OldestFirst {
		return "recorded_at ASC, id ASC"
	}
	return "recorded_at DESC, id DESC"
}

// HistoryEntry is an immutable record of one confirmed mutation.
// MutationID is unique, which makes the ledger safe to append to more than once.
type HistoryEntry struct {
	ID          uuid.UUID
	UserID      string
	MutationID  uuid.UUID
	Kind        string
	ReferenceID string
	Outcome     Outcome
	Points      int64
	RecordedAt  time.Time
}
