// Package domain holds the editorial records shown on the public site:
// press coverage and food truck locations.
package domain

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
)

// AccessType tells visitors whether an article can be read freely.
type AccessType string

const (
	AccessPublic   AccessType = "public"
	AccessPaywall  AccessType = "paywall"
	AccessInternal AccessType = "internal"
)

// ResolveAccessType decodes the stored accessType, falling back to the legacy
// isPublic boolean and finally to public.
func ResolveAccessType(accessType, isPublic any) AccessType {
	if s, ok := accessType.(string); ok {
		switch AccessType(s) {
		case AccessPublic, AccessPaywall, AccessInternal:
			return AccessType(s)
		}
	}
	if b, ok := isPublic.(bool); ok {
		if b {
			return AccessPublic
		}
		return AccessPaywall
	}
	return AccessPublic
}

// Publication is one article about the business.
type Publication struct {
	ID              string
	Title           string
	Description     string
	ImagePath       string
	ImageURL        string
	ArticleURL      string
	PublicationDate string
	AccessType      AccessType
	CreatedAt       *time.Time
	UpdatedAt       *time.Time
	UpdatedBy       string
}

// SortTime orders publications: the publication date when it parses,
// otherwise the creation time, otherwise zero.
func (p Publication) SortTime() time.Time {
	if d, err := time.Parse(time.DateOnly, p.PublicationDate); err == nil {
		return d
	}
	if p.CreatedAt != nil {
		return *p.CreatedAt
	}
	return time.Time{}
}

// SortPublications orders newest first.
func SortPublications(items []Publication) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SortTime().After(items[j].SortTime())
	})
}

// PublicationInput is what an admin submits when creating or editing.
type PublicationInput struct {
	Title           string
	Description     string
	ArticleURL      string
	PublicationDate string
	AccessType      AccessType
}

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

// NormalizeArticleURL trims value and adds https:// when no scheme is given.
func NormalizeArticleURL(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || schemePattern.MatchString(trimmed) {
		return trimmed
	}
	return "https://" + trimmed
}

// Validate returns the first problem with in, as a localized message, or "".
func (in PublicationInput) Validate() string {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return "Overskrift er påkrevd."
	case strings.TrimSpace(in.Description) == "":
		return "Beskrivelse er påkrevd."
	case strings.TrimSpace(in.ArticleURL) == "":
		return "Sak-lenke er påkrevd."
	case strings.TrimSpace(in.PublicationDate) == "":
		return "Dato er påkrevd."
	}
	parsed, err := url.ParseRequestURI(NormalizeArticleURL(in.ArticleURL))
	if err != nil || parsed.Host == "" {
		return "Sak-lenken er ikke gyldig."
	}
	return ""
}

// Normalized returns in with trimmed text, a schemed URL and a known access type.
func (in PublicationInput) Normalized() PublicationInput {
	return PublicationInput{
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		ArticleURL:      NormalizeArticleURL(in.ArticleURL),
		PublicationDate: strings.TrimSpace(in.PublicationDate),
		AccessType:      ResolveAccessType(string(in.AccessType), nil),
	}
}
