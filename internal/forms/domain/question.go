package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// QuestionType is the closed set of input kinds a question can render as.
type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionTextarea QuestionType = "textarea"
	QuestionSelect   QuestionType = "select"
	QuestionNumber   QuestionType = "number"
	QuestionDate     QuestionType = "date"
	QuestionCamera   QuestionType = "camera"
	QuestionName     QuestionType = "name"
)

var questionTypes = []QuestionType{
	QuestionText,
	QuestionTextarea,
	QuestionSelect,
	QuestionNumber,
	QuestionDate,
	QuestionCamera,
	QuestionName,
}

// ParseQuestionType decodes a stored type value. Anything that is not one of
// the recognized kinds becomes QuestionText.
func ParseQuestionType(value any) QuestionType {
	raw, ok := value.(string)
	if !ok {
		return QuestionText
	}
	for _, known := range questionTypes {
		if string(known) == raw {
			return known
		}
	}
	return QuestionText
}

// QuestionTypes lists the recognized kinds in editor order.
func QuestionTypes() []QuestionType {
	return append([]QuestionType(nil), questionTypes...)
}

// Question is one render-safe entry of a form schema.
type Question struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Type        QuestionType `json:"type"`
	Required    bool         `json:"required"`
	Placeholder string       `json:"placeholder"`
	Options     []string     `json:"options"`
}

// RawQuestion is a question as found in storage or in an editor payload,
// before any normalization.
type RawQuestion map[string]any

// Raw converts q back into its loosely typed form.
func (q Question) Raw() RawQuestion {
	options := make([]any, 0, len(q.Options))
	for _, option := range q.Options {
		options = append(options, option)
	}
	return RawQuestion{
		"id":          q.ID,
		"label":       q.Label,
		"type":        string(q.Type),
		"required":    q.Required,
		"placeholder": q.Placeholder,
		"options":     options,
	}
}

var nonAlphaNumRuns = regexp.MustCompile(`[^a-z0-9]+`)

// randomSuffix produces the tail of a positional fallback id.
var randomSuffix = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// ToQuestionID slugifies raw into a question id. When nothing alphanumeric
// survives, a random "question-xxxxxx" id is returned instead.
func ToQuestionID(raw string) string {
	base := nonAlphaNumRuns.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "-")
	base = strings.Trim(base, "-")
	if base == "" {
		return "question-" + randomSuffix()
	}
	return base
}

// NormalizeQuestion turns a loosely typed question into a Question.
// It never fails: malformed input degrades to safe defaults, and running it on
// its own output yields the same value.
func NormalizeQuestion(raw RawQuestion, index int) Question {
	label := strings.TrimSpace(stringify(raw["label"]))
	qType := ParseQuestionType(raw["type"])

	var id string
	if truthy(raw["id"]) {
		id = ToQuestionID(stringify(raw["id"]))
	} else if label != "" {
		id = ToQuestionID(label)
	} else {
		id = ToQuestionID(fmt.Sprintf("q-%d", index+1))
	}

	if label == "" {
		label = fmt.Sprintf("Spørsmål %d", index+1)
	}

	options := []string{}
	if qType == QuestionSelect {
		for _, option := range listOf(raw["options"]) {
			if trimmed := strings.TrimSpace(stringify(option)); trimmed != "" {
				options = append(options, trimmed)
			}
		}
	}

	return Question{
		ID:          id,
		Label:       label,
		Type:        qType,
		Required:    truthy(raw["required"]),
		Placeholder: stringify(raw["placeholder"]),
		Options:     options,
	}
}

// NormalizeQuestions normalizes every entry, keeping order.
func NormalizeQuestions(raws []RawQuestion) []Question {
	questions := make([]Question, 0, len(raws))
	for i, raw := range raws {
		questions = append(questions, NormalizeQuestion(raw, i))
	}
	return questions
}

// stringify renders a stored scalar the way a form input would show it.
// nil, false, 0 and "" all become the empty string.
func stringify(value any) string {
	if !truthy(value) {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case float32:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

func listOf(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, 0, len(v))
		for _, s := range v {
			out = append(out, s)
		}
		return out
	default:
		return nil
	}
}
