// Package domain defines payment attempts and their poll state machine states.
package domain

import (
	"time"

	"github.com/google/uuid"

	subscriptionDomain "github.com/allisson/rewardsync/internal/subscription/domain"
)

// State is the local state of a payment attempt.
type State string

const (
	StateIdle       State = "IDLE"
	StatePending    State = "PENDING"
	StateSuccessful State = "SUCCESSFUL"
	StateFailed     State = "FAILED"
	StateTimeout    State = "TIMEOUT"
)

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == StateSuccessful || s == StateFailed || s == StateTimeout
}

// Method is the payment channel.
type Method string

const (
	MethodMobileMoney Method = "MOBILE_MONEY"
	MethodCarrier     Method = "CARRIER_BILLING"
)

// InitiateInput is what the user supplies to start a payment.
type InitiateInput struct {
	Amount int64
	Method Method
	MSISDN string
	PlanID string
}

// InitiateRequest is sent to the backend with the attempt's idempotency key.
type InitiateRequest struct {
	IdempotencyKey uuid.UUID
	Amount         int64
	Method         Method
	MSISDN         string
	PlanID         string
}

// InitiateResult is the backend acknowledgement of a new payment.
type InitiateResult struct {
	PaymentID string    `json:"payment_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StatusResult is one poll response.
type StatusResult struct {
	State        State                            `json:"state"`
	Subscription *subscriptionDomain.SourceStatus `json:"subscription,omitempty"`
}

// Attempt is one payment attempt. It lives in memory only.
type Attempt struct {
	PaymentID      string
	IdempotencyKey uuid.UUID
	UserID         string
	State          State
	Amount         int64
	Method         Method
	MSISDN         string
	PlanID         string
	StartedAt      time.Time
	ExpiresAt      time.Time
	SettledAt      *time.Time
	Polls          int
}

// Settle moves a pending attempt to a terminal state. It reports false, and changes
// nothing, when the attempt is already terminal.
func (a *Attempt) Settle(state State, at time.Time) bool {
	if a.State != StatePending || !state.Terminal() {
		return false
	}
	a.State = state
	a.SettledAt = &at
	return true
}
