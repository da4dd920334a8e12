// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/rewardsync/internal/errors"
)

var (
	// msisdnRegex accepts international numbers with an optional leading plus
	msisdnRegex = regexp.MustCompile(`^\+?[1-9][0-9]{7,14}$`)

	// mediaTypeRegex matches the media types accepted for campaign uploads
	mediaTypeRegex = regexp.MustCompile(`^(video|image)/[a-z0-9.+\-]+$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// UUID validates that a string is a canonical UUID.
var UUID = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	validation.NewError("validation_uuid", "must be a valid UUID"),
)

// MSISDN validates a mobile money phone number.
var MSISDN = validation.NewStringRuleWithError(
	msisdnRegex.MatchString,
	validation.NewError("validation_msisdn", "must be a valid phone number in international format"),
)

// MediaType validates the content type of an upload.
var MediaType = validation.NewStringRuleWithError(
	mediaTypeRegex.MatchString,
	validation.NewError("validation_media_type", "must be a video or image media type"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
