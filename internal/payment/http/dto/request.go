// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	paymentDomain "github.com/allisson/rewardsync/internal/payment/domain"
)

// InitiatePaymentRequest contains the payment details entered by the user.
type InitiatePaymentRequest struct {
	Amount int64  `json:"amount"`
	Method string `json:"method"`
	MSISDN string `json:"msisdn"`
	PlanID string `json:"plan_id"`
}

// ToInput maps the request to the domain input.
func (r *InitiatePaymentRequest) ToInput() *paymentDomain.InitiateInput {
	return &paymentDomain.InitiateInput{
		Amount: r.Amount,
		Method: paymentDomain.Method(r.Method),
		MSISDN: r.MSISDN,
		PlanID: r.PlanID,
	}
}
