// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/rewardsync/internal/validation"
)

// StartSessionRequest opens a quiz session.
type StartSessionRequest struct {
	QuizID string `json:"quiz_id"`
}

// Validate checks if the start session request is valid.
func (r *StartSessionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.QuizID, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
	)
}
