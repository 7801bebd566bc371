// Package blobpath builds the object keys uploaded images are stored under.
package blobpath

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// FormImagesPrefix marks answer values that are storage keys rather than text.
	FormImagesPrefix = "forms/images/"

	PublicationImagesPrefix = "publications/images/"
	LocationImagesPrefix    = "locations/images/"
)

var (
	unsafeFileNameRuns = regexp.MustCompile(`[^a-z0-9.\-_]+`)
	hyphenRuns         = regexp.MustCompile(`-+`)
)

// SanitizeFileName lower-cases name and replaces everything outside
// [a-z0-9.-_] with single hyphens. An empty name becomes "image".
func SanitizeFileName(name string) string {
	if name == "" {
		name = "image"
	}
	cleaned := unsafeFileNameRuns.ReplaceAllString(strings.ToLower(name), "-")
	return hyphenRuns.ReplaceAllString(cleaned, "-")
}

// FormImage is the key of an image attached to a submission. discriminator is
// the camera question id, or the position of a general attachment.
func FormImage(formSlug, submissionID, discriminator, fileName string) string {
	return fmt.Sprintf("%s%s/%s-%s-%s", FormImagesPrefix, formSlug, submissionID, discriminator, SanitizeFileName(fileName))
}

// IsFormImage reports whether value follows the submission image convention.
func IsFormImage(value string) bool {
	return strings.HasPrefix(value, FormImagesPrefix)
}

// PublicationImage is the key of a publication's cover image.
func PublicationImage(at time.Time, fileName string) string {
	return contentImage(PublicationImagesPrefix, at, fileName)
}

// LocationImage is the key of a location photo.
func LocationImage(at time.Time, fileName string) string {
	return contentImage(LocationImagesPrefix, at, fileName)
}

func contentImage(prefix string, at time.Time, fileName string) string {
	return fmt.Sprintf("%s%d-%s", prefix, at.UnixMilli(), SanitizeFileName(fileName))
}
