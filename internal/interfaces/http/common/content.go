package common

import contentdomain "github.com/crustntrust/site-api/internal/content/domain"

// PublicationResponse is the wire shape of a publication.
type PublicationResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ImageURL        string `json:"imageUrl,omitempty"`
	ArticleURL      string `json:"articleUrl"`
	PublicationDate string `json:"publicationDate"`
	AccessType      string `json:"accessType"`
	UpdatedBy       string `json:"updatedBy,omitempty"`
}

// LocationResponse is the wire shape of a location.
type LocationResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Neighborhood string `json:"neighborhood,omitempty"`
	WeekdayHours string `json:"weekdayHours,omitempty"`
	WeekendHours string `json:"weekendHours,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	MapsURL      string `json:"mapsUrl"`
	SortOrder    int    `json:"sortOrder"`
}

func ToPublicationResponse(p contentdomain.Publication) PublicationResponse {
	return PublicationResponse{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		ImageURL:        p.ImageURL,
		ArticleURL:      p.ArticleURL,
		PublicationDate: p.PublicationDate,
		AccessType:      string(p.AccessType),
		UpdatedBy:       p.UpdatedBy,
	}
}

func ToLocationResponse(l contentdomain.Location) LocationResponse {
	return LocationResponse{
		ID:           l.ID,
		Name:         l.Name,
		Neighborhood: l.Neighborhood,
		WeekdayHours: l.WeekdayHours,
		WeekendHours: l.WeekendHours,
		ImageURL:     l.ImageURL,
		MapsURL:      l.DirectionsURL(),
		SortOrder:    l.SortOrder,
	}
}
