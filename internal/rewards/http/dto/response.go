package dto

import (
	"time"

	rewardsDomain "github.com/allisson/rewardsync/internal/rewards/domain"
)

// SessionResponse represents a quiz session in API responses.
type SessionResponse struct {
	ID            string     `json:"id"`
	QuizID        string     `json:"quiz_id"`
	Status        string     `json:"status"`
	AnsweredCount int        `json:"answered_count"`
	CorrectCount  int        `json:"correct_count"`
	Points        int64      `json:"points"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// WalletResponse represents a wallet balance.
type WalletResponse struct {
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEntryResponse represents one ledger entry.
type HistoryEntryResponse struct {
	ID          string    `json:"id"`
	MutationID  string    `json:"mutation_id"`
	Kind        string    `json:"kind"`
	ReferenceID string    `json:"reference_id"`
	Outcome     string    `json:"outcome"`
	Points      int64     `json:"points"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// ListHistoryResponse represents a page of the history ledger.
type ListHistoryResponse struct {
	Data []HistoryEntryResponse `json:"data"`
}

// MapSessionToResponse converts a domain session to an API response.
func MapSessionToResponse(s *rewardsDomain.QuizSession) SessionResponse {
	return SessionResponse{
		ID:            s.ID.String(),
		QuizID:        s.QuizID,
		Status:        string(s.Status),
		AnsweredCount: s.AnsweredCount,
		CorrectCount:  s.CorrectCount,
		Points:        s.Points,
		StartedAt:     s.StartedAt,
		CompletedAt:   s.CompletedAt,
	}
}

// MapWalletToResponse converts a domain wallet to an API response.
func MapWalletToResponse(w *rewardsDomain.Wallet) WalletResponse {
	return WalletResponse{
		UserID:    w.UserID,
		Balance:   w.Balance,
		UpdatedAt: w.UpdatedAt,
	}
}

// MapHistoryToListResponse converts ledger entries to a list response.
func MapHistoryToListResponse(entries []*rewardsDomain.HistoryEntry) ListHistoryResponse {
	data := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		data = append(data, HistoryEntryResponse{
			ID:          e.ID.String(),
			MutationID:  e.MutationID.String(),
			Kind:        e.Kind,
			ReferenceID: e.ReferenceID,
			Outcome:     string(e.Outcome),
			Points:      e.Points,
			RecordedAt:  e.RecordedAt,
		})
	}
	return ListHistoryResponse{Data: data}
}
