package domain

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultFormSlug is the built-in closing checklist that exists even before
// anything has been stored.
const DefaultFormSlug = "stengeskjema"

//go:embed defaults/stengeskjema.yaml
var stengeskjemaYAML []byte

type formFile struct {
	ID          string        `yaml:"id"`
	Slug        string        `yaml:"slug"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Questions   []RawQuestion `yaml:"questions"`
}

var defaultForm = mustParseFormFile(stengeskjemaYAML)

// DefaultForm returns a copy of the built-in form, normalized.
func DefaultForm() FormDefinition {
	form := defaultForm
	form.Questions = append([]Question(nil), defaultForm.Questions...)
	return form
}

// IsDefaultSlug reports whether slug addresses the built-in form.
func IsDefaultSlug(slug string) bool {
	return slug == DefaultFormSlug
}

// ParseFormFile decodes a YAML form definition.
func ParseFormFile(data []byte) (FormDefinition, error) {
	var file formFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return FormDefinition{}, fmt.Errorf("parse form definition: %w", err)
	}
	slug := NormalizeFormSlug(file.Slug)
	if slug == "" {
		return FormDefinition{}, fmt.Errorf("form definition has no usable slug")
	}
	id := file.ID
	if id == "" {
		id = slug
	}
	return FormDefinition{
		ID:          id,
		Slug:        slug,
		Title:       file.Title,
		Description: file.Description,
		Questions:   NormalizeQuestions(file.Questions),
	}, nil
}

func mustParseFormFile(data []byte) FormDefinition {
	form, err := ParseFormFile(data)
	if err != nil {
		panic(err)
	}
	return form
}
