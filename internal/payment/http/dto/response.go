package dto

import (
	"time"

	paymentDomain "github.com/allisson/rewardsync/internal/payment/domain"
)

// AttemptResponse represents a payment attempt in API responses. The MSISDN is masked.
type AttemptResponse struct {
	PaymentID string     `json:"payment_id"`
	State     string     `json:"state"`
	Amount    int64      `json:"amount"`
	Method    string     `json:"method"`
	MSISDN    string     `json:"msisdn"`
	PlanID    string     `json:"plan_id"`
	Polls     int        `json:"polls"`
	StartedAt time.Time  `json:"started_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	SettledAt *time.Time `json:"settled_at,omitempty"`
}

// StatusResponse represents a remote payment status.
type StatusResponse struct {
	State string `json:"state"`
}

// MapAttemptToResponse converts a domain attempt to an API response.
func MapAttemptToResponse(a *paymentDomain.Attempt) AttemptResponse {
	return AttemptResponse{
		PaymentID: a.PaymentID,
		State:     string(a.State),
		Amount:    a.Amount,
		Method:    string(a.Method),
		MSISDN:    MaskMSISDN(a.MSISDN),
		PlanID:    a.PlanID,
		Polls:     a.Polls,
		StartedAt: a.StartedAt,
		ExpiresAt: a.ExpiresAt,
		SettledAt: a.SettledAt,
	}
}

// MaskMSISDN keeps the last three digits of a phone number.
func MaskMSISDN(msisdn string) string {
	const visible = 3
	if len(msisdn) <= visible {
		return msisdn
	}
	masked := make([]byte, len(msisdn))
	for i := range msisdn {
		switch {
		case i >= len(msisdn)-visible, msisdn[i] == '+':
			masked[i] = msisdn[i]
		default:
			masked[i] = '*'
		}
	}
	return string(masked)
}
