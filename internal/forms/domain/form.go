package domain

import (
	"regexp"
	"strings"
	"time"
)

// FormDefinition is the schema of one fillable form.
type FormDefinition struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Questions   []Question
	UpdatedAt   *time.Time
}

// Question returns the question with the given id.
func (f FormDefinition) Question(id string) (Question, bool) {
	for _, q := range f.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// NotFoundDescription is shown on the placeholder schema for unknown slugs.
const NotFoundDescription = "Skjemaet ble ikke funnet."

// NotFoundForm is the placeholder served when no definition exists for slug.
func NotFoundForm(slug string) FormDefinition {
	return FormDefinition{
		ID:          slug,
		Slug:        slug,
		Title:       slug,
		Description: NotFoundDescription,
		Questions:   []Question{},
	}
}

var (
	invalidSlugRuns = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRuns      = regexp.MustCompile(`-+`)
	validSlug       = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// NormalizeFormSlug lower-cases input and reduces it to [a-z0-9-] with single
// hyphens and no leading or trailing hyphen. The result may be empty.
func NormalizeFormSlug(input string) string {
	slug := strings.ToLower(strings.TrimSpace(input))
	slug = invalidSlugRuns.ReplaceAllString(slug, "-")
	slug = hyphenRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// IsValidFormSlug reports whether slug is a non-empty [a-z0-9-] token.
func IsValidFormSlug(slug string) bool {
	return validSlug.MatchString(slug)
}

// RouteSlug is how a slug taken from a URL path is matched against stored
// definitions: trimmed and lower-cased, nothing more.
func RouteSlug(segment string) string {
	return strings.ToLower(strings.TrimSpace(segment))
}

// InitialQuestions seeds a freshly created form.
func InitialQuestions() []Question {
	return []Question{{
		ID:       "navn",
		Label:    "Navn",
		Type:     QuestionName,
		Required: true,
		Options:  []string{},
	}}
}
