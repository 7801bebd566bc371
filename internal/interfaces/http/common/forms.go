package common

import (
	"time"

	formsdomain "github.com/crustntrust/site-api/internal/forms/domain"
)

// FormResponse is the wire shape of a form definition.
type FormResponse struct {
	ID          string                 `json:"id"`
	Slug        string                 `json:"slug"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Questions   []formsdomain.Question `json:"questions"`
	UpdatedAt   *time.Time             `json:"updatedAt,omitempty"`
}

func ToFormResponse(form formsdomain.FormDefinition) FormResponse {
	questions := form.Questions
	if questions == nil {
		questions = []formsdomain.Question{}
	}
	return FormResponse{
		ID:          form.ID,
		Slug:        form.Slug,
		Title:       form.Title,
		Description: form.Description,
		Questions:   questions,
		UpdatedAt:   form.UpdatedAt,
	}
}
