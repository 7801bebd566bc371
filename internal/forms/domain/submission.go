package domain

import (
	"strings"
	"time"
)

// Status is the review state of a submission.
type Status string

const (
	StatusAwaitingReview Status = "awaiting review"
	StatusCompleted      Status = "completed"
	StatusNeedsFollowUp  Status = "needs follow-up"
)

// SystemActor is recorded as the status author on freshly created submissions.
const SystemActor = "system"

// ParseStatus accepts only the three review states.
func ParseStatus(value string) (Status, bool) {
	switch Status(strings.TrimSpace(value)) {
	case StatusAwaitingReview:
		return StatusAwaitingReview, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusNeedsFollowUp:
		return StatusNeedsFollowUp, true
	}
	return "", false
}

// Submission is one respondent's answers to a form.
type Submission struct {
	ID              string
	FormID          string
	FormSlug        string
	Answers         map[string]string
	ImagePaths      []string
	Status          Status
	StatusUpdatedBy string
	StatusUpdatedAt *time.Time
	ReviewedAt      *time.Time
	SubmittedAt     *time.Time
}

// SubmittedUnix is the sort key for listings; missing timestamps count as epoch 0.
func (s Submission) SubmittedUnix() int64 {
	if s.SubmittedAt == nil {
		return 0
	}
	return s.SubmittedAt.Unix()
}

var (
	nameAnswerKeys  = []string{"navn", "name", "fullName", "fullname"}
	placeAnswerKeys = []string{"sted", "location", "lokasjon", "place"}
)

// DisplayName picks the respondent's name from the answers: the first
// name-type question wins, then a few conventional keys. "-" when absent.
func (s Submission) DisplayName(questions []Question) string {
	for _, q := range questions {
		if q.Type != QuestionName {
			continue
		}
		if v := strings.TrimSpace(s.Answers[q.ID]); v != "" {
			return v
		}
		break
	}
	return firstAnswer(s.Answers, nameAnswerKeys)
}

// Place picks the location answer, "-" when absent.
func (s Submission) Place() string {
	return firstAnswer(s.Answers, placeAnswerKeys)
}

func firstAnswer(answers map[string]string, keys []string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(answers[key]); v != "" {
			return v
		}
	}
	return "-"
}
