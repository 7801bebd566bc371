package domain

import (
	"fmt"

	"github.com/crustntrust/site-api/internal/apperr"
)

// MissingRequiredFieldError names the first required question left empty.
type MissingRequiredFieldError struct {
	QuestionID string
	Label      string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.QuestionID)
}

func (e *MissingRequiredFieldError) Kind() apperr.Kind {
	return apperr.KindValidation
}

// UserMessage is the inline message shown next to the form.
func (e *MissingRequiredFieldError) UserMessage() string {
	return "Manglende svar: " + e.Label
}
