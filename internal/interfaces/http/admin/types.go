package admin

import (
	"time"

	formsapp "github.com/crustntrust/site-api/internal/forms/application"
	formsdomain "github.com/crustntrust/site-api/internal/forms/domain"
	"github.com/crustntrust/site-api/internal/interfaces/http/common"
)

type formCreateRequest struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type formSaveRequest struct {
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Questions   []formsdomain.RawQuestion `json:"questions"`
}

type formEditRequest struct {
	Op        string `json:"op"`
	Index     int    `json:"index"`
	Direction string `json:"direction,omitempty"`
	Type      string `json:"type,omitempty"`
	Value     string `json:"value,omitempty"`
}

type formDeleteRequest struct {
	Confirmation string `json:"confirmation"`
}

type formListResponse struct {
	Items []common.FormResponse `json:"items"`
}

type submissionSummaryResponse struct {
	ID              string     `json:"id"`
	FormSlug        string     `json:"formSlug"`
	DisplayName     string     `json:"displayName"`
	Place           string     `json:"place"`
	Status          string     `json:"status"`
	StatusUpdatedBy string     `json:"statusUpdatedBy,omitempty"`
	StatusUpdatedAt *time.Time `json:"statusUpdatedAt,omitempty"`
	SubmittedAt     *time.Time `json:"submittedAt,omitempty"`
}

type submissionListResponse struct {
	Items []submissionSummaryResponse `json:"items"`
}

type submissionDetailResponse struct {
	ID              string                   `json:"id"`
	FormID          string                   `json:"formId"`
	FormSlug        string                   `json:"formSlug"`
	Answers         map[string]string        `json:"answers"`
	Images          []formsapp.ResolvedImage `json:"images"`
	Status          string                   `json:"status"`
	StatusUpdatedBy string                   `json:"statusUpdatedBy,omitempty"`
	StatusUpdatedAt *time.Time               `json:"statusUpdatedAt,omitempty"`
	ReviewedAt      *time.Time               `json:"reviewedAt,omitempty"`
	SubmittedAt     *time.Time               `json:"submittedAt,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type statusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type applicationsSettingRequest struct {
	AcceptingApplications *bool `json:"acceptingApplications"`
}

type applicationsSettingResponse struct {
	AcceptingApplications bool `json:"acceptingApplications"`
}

type publicationListResponse struct {
	Items []common.PublicationResponse `json:"items"`
}

type locationListResponse struct {
	Items []common.LocationResponse `json:"items"`
}

func toSubmissionSummary(sub formsdomain.Submission, questions []formsdomain.Question) submissionSummaryResponse {
	return submissionSummaryResponse{
		ID:              sub.ID,
		FormSlug:        sub.FormSlug,
		DisplayName:     sub.DisplayName(questions),
		Place:           sub.Place(),
		Status:          string(sub.Status),
		StatusUpdatedBy: sub.StatusUpdatedBy,
		StatusUpdatedAt: sub.StatusUpdatedAt,
		SubmittedAt:     sub.SubmittedAt,
	}
}

func toSubmissionDetail(view formsapp.SubmissionView) submissionDetailResponse {
	sub := view.Submission
	images := view.Images
	if images == nil {
		images = []formsapp.ResolvedImage{}
	}
	return submissionDetailResponse{
		ID:              sub.ID,
		FormID:          sub.FormID,
		FormSlug:        sub.FormSlug,
		Answers:         sub.Answers,
		Images:          images,
		Status:          string(sub.Status),
		StatusUpdatedBy: sub.StatusUpdatedBy,
		StatusUpdatedAt: sub.StatusUpdatedAt,
		ReviewedAt:      sub.ReviewedAt,
		SubmittedAt:     sub.SubmittedAt,
	}
}
