package domain

import (
	"fmt"
	"strings"
)

// Direction moves a question within the schema.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// AddQuestion appends a blank text question numbered after the existing ones.
func AddQuestion(questions []Question) []Question {
	n := len(questions) + 1
	next := append([]Question(nil), questions...)
	return append(next, Question{
		ID:      ToQuestionID(fmt.Sprintf("new-question-%d", n)),
		Label:   fmt.Sprintf("Nytt spørsmål %d", n),
		Type:    QuestionText,
		Options: []string{},
	})
}

// RemoveQuestion drops the question at index. Out-of-range indexes are ignored.
func RemoveQuestion(questions []Question, index int) []Question {
	next := make([]Question, 0, len(questions))
	for i, q := range questions {
		if i != index {
			next = append(next, q)
		}
	}
	return next
}

// MoveQuestion swaps the question at index with its neighbour in direction.
// Moving past either end leaves the order unchanged.
func MoveQuestion(questions []Question, index int, direction Direction) []Question {
	target := index + 1
	if direction == DirectionUp {
		target = index - 1
	}
	next := append([]Question(nil), questions...)
	if index < 0 || index >= len(next) || target < 0 || target >= len(next) {
		return next
	}
	next[index], next[target] = next[target], next[index]
	return next
}

// ChangeQuestionType switches q to qType. Switching to select seeds Ja/Nei
// options when none exist; any other type drops the options.
func ChangeQuestionType(q Question, qType QuestionType) Question {
	q.Type = ParseQuestionType(string(qType))
	if q.Type == QuestionSelect {
		if len(q.Options) == 0 {
			q.Options = []string{"Ja", "Nei"}
		}
		return q
	}
	q.Options = []string{}
	return q
}

// ParseOptions splits comma-separated editor input into trimmed options.
func ParseOptions(text string) []string {
	options := []string{}
	for _, part := range strings.Split(text, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			options = append(options, trimmed)
		}
	}
	return options
}

// PrepareForSave normalizes an edited schema, deriving ids for questions that
// lost theirs from the label or their position.
func PrepareForSave(questions []Question) []Question {
	prepared := make([]Question, 0, len(questions))
	for i, q := range questions {
		raw := q.Raw()
		if strings.TrimSpace(q.ID) == "" {
			source := q.Label
			if strings.TrimSpace(source) == "" {
				source = fmt.Sprintf("q-%d", i+1)
			}
			raw["id"] = ToQuestionID(source)
		}
		prepared = append(prepared, NormalizeQuestion(raw, i))
	}
	return prepared
}
