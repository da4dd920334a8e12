// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	subscriptionDomain "github.com/allisson/rewardsync/internal/subscription/domain"
)

// StatusResponse represents the unified premium status.
type StatusResponse struct {
	IsActive       bool       `json:"is_active"`
	Source         string     `json:"source"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	RemainingDays  int        `json:"remaining_days"`
}

// MapStatusToResponse converts a unified status to an API response.
func MapStatusToResponse(s *subscriptionDomain.UnifiedStatus) StatusResponse {
	return StatusResponse{
		IsActive:       s.IsActive,
		Source:         string(s.Source),
		ExpirationDate: s.ExpirationDate,
		RemainingDays:  s.RemainingDays,
	}
}
