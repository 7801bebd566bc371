package public

import "github.com/crustntrust/site-api/internal/interfaces/http/common"

type formSummaryResponse struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type formListResponse struct {
	Items []formSummaryResponse `json:"items"`
}

type submissionCreatedResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
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
