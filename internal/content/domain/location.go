package domain

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

// Location is one food truck stop.
type Location struct {
	ID           string
	Name         string
	Neighborhood string
	WeekdayHours string
	WeekendHours string
	ImagePath    string
	ImageURL     string
	MapsURL      string
	SortOrder    int
	UpdatedAt    *time.Time
	UpdatedBy    string
}

// DirectionsURL is the stored maps link, or a map search for the stop.
func (l Location) DirectionsURL() string {
	if u := strings.TrimSpace(l.MapsURL); u != "" {
		return u
	}
	query := strings.TrimSpace(l.Name + " " + l.Neighborhood)
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(query)
}

// SortLocations orders by SortOrder, then by name.
func SortLocations(items []Location) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}

// LocationInput is what an admin submits for a stop.
type LocationInput struct {
	Name         string
	Neighborhood string
	WeekdayHours string
	WeekendHours string
	MapsURL      string
	SortOrder    int
}

// Validate returns a localized message for the first problem, or "".
func (in LocationInput) Validate() string {
	if strings.TrimSpace(in.Name) == "" {
		return "Navn er påkrevd."
	}
	if u := strings.TrimSpace(in.MapsURL); u != "" {
		if parsed, err := url.ParseRequestURI(NormalizeArticleURL(u)); err != nil || parsed.Host == "" {
			return "Kartlenken er ikke gyldig."
		}
	}
	return ""
}

// Normalized trims every text field.
func (in LocationInput) Normalized() LocationInput {
	maps := strings.TrimSpace(in.MapsURL)
	if maps != "" {
		maps = NormalizeArticleURL(maps)
	}
	return LocationInput{
		Name:         strings.TrimSpace(in.Name),
		Neighborhood: strings.TrimSpace(in.Neighborhood),
		WeekdayHours: strings.TrimSpace(in.WeekdayHours),
		WeekendHours: strings.TrimSpace(in.WeekendHours),
		MapsURL:      maps,
		SortOrder:    in.SortOrder,
	}
}
