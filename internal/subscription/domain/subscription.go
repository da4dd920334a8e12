// Package domain defines subscription source statuses and the unified premium status.
package domain

import "time"

// Source identifies which billing channel granted premium access.
type Source string

const (
	// SourcePlatform is platform (app store) billing.
	SourcePlatform Source = "SOURCE_A"
	// SourceCarrier is carrier (mobile money) billing.
	SourceCarrier Source = "SOURCE_B"
	SourceNone    Source = "NONE"
)

// SourceStatus is the status one billing channel reports. A nil ExpirationDate on an
// active status means the grant does not expire.
type SourceStatus struct {
	IsActive       bool       `json:"is_active"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

// UnifiedStatus is derived from both sources on every query and never stored.
type UnifiedStatus struct {
	IsActive       bool       `json:"is_active"`
	Source         Source     `json:"source"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	RemainingDays  int        `json:"remaining_days"`
}
