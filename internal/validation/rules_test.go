package validation

import (
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/rewardsync/internal/errors"
)

func TestRules(t *testing.T) {
	tests := []struct {
		rule  string
		check validation.Rule
		valid []string
		bad   []string
	}{
		{
			rule:  "UUID",
			check: UUID,
			valid: []string{"01936d1e-6f1c-7b2a-9c3d-4e5f60718293", ""},
			bad:   []string{"session-1", "01936d1e-6f1c-7b2a-9c3d"},
		},
		{
			rule:  "MSISDN",
			check: MSISDN,
			valid: []string{"+2348012345678", "254712345678"},
			bad:   []string{"+12345", "0712345678", "+23480ABCDEFG", "+234 801 234 5678"},
		},
		{
			rule:  "MediaType",
			check: MediaType,
			valid: []string{"video/mp4", "video/quicktime", "image/jpeg", "image/svg+xml"},
			bad:   []string{"audio/mpeg", "video/", "VIDEO/MP4", "application/octet-stream"},
		},
		{
			rule:  "NoWhitespace",
			check: NoWhitespace,
			valid: []string{"q-17", "Option C"},
			bad:   []string{" q-17", "q-17 ", "\tq-17\n"},
		},
		{
			rule:  "NotBlank",
			check: NotBlank,
			valid: []string{"C", "  C  "},
			bad:   []string{"   ", "\t\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			for _, in := range tt.valid {
				assert.NoError(t, tt.check.Validate(in), "%q should pass", in)
			}
			for _, in := range tt.bad {
				assert.Error(t, tt.check.Validate(in), "%q should fail", in)
			}
		})
	}
}

type answerForm struct {
	QuizID         string
	SelectedOption string
	MSISDN         string
}

func (f answerForm) validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.QuizID, validation.Required, NoWhitespace),
		validation.Field(&f.SelectedOption, validation.Required, NotBlank),
		validation.Field(&f.MSISDN, MSISDN),
	)
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(answerForm{QuizID: " q1", SelectedOption: "   ", MSISDN: "12"}.validate())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "QuizID: must not contain leading or trailing whitespace")
	assert.Contains(t, err.Error(), "SelectedOption: must not be blank")
	assert.Contains(t, err.Error(), "MSISDN: must be a valid phone number in international format")

	assert.NoError(t, WrapValidationError(answerForm{QuizID: "q1", SelectedOption: "C"}.validate()))
}
