package dto

import (
	"time"

	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
)

// PendingMutationResponse represents a queued mutation in API responses. The payload is not exposed.
type PendingMutationResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	RetryCount int       `json:"retry_count"`
	LastError  *string   `json:"last_error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListPendingMutationsResponse represents the pending mutations of one kind.
type ListPendingMutationsResponse struct {
	Data []PendingMutationResponse `json:"data"`
}

// ProcessQueueResponse reports what is left after a processor run.
type ProcessQueueResponse struct {
	Kind    string `json:"kind"`
	Pending int    `json:"pending"`
}

// MapPendingMutationToResponse converts a domain mutation to an API response.
func MapPendingMutationToResponse(m *queueDomain.PendingMutation) PendingMutationResponse {
	return PendingMutationResponse{
		ID:         m.ID.String(),
		Kind:       string(m.Kind),
		RetryCount: m.RetryCount,
		LastError:  m.LastError,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// MapPendingMutationsToListResponse converts domain mutations to a list response.
func MapPendingMutationsToListResponse(mutations []*queueDomain.PendingMutation) ListPendingMutationsResponse {
	data := make([]PendingMutationResponse, 0, len(mutations))
	for _, m := range mutations {
		data = append(data, MapPendingMutationToResponse(m))
	}
	return ListPendingMutationsResponse{Data: data}
}
