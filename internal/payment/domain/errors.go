package domain

import (
	"github.com/allisson/rewardsync/internal/errors"
)

// Payment-specific error definitions.
var (
	// ErrPaymentNotFound indicates no attempt with the payment id is known locally.
	ErrPaymentNotFound = errors.Wrap(errors.ErrNotFound, "payment not found")

	// ErrPaymentInProgress indicates the user already has a pending attempt.
	ErrPaymentInProgress = errors.Wrap(errors.ErrConflict, "payment already in progress")

	// ErrPaymentRejected indicates the backend refused to initiate the payment.
	ErrPaymentRejected = errors.Wrap(errors.ErrInvalidInput, "payment rejected")
)
