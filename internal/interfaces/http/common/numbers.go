package common

import (
	"strconv"
	"strings"
)

// ParseInt parses a signed integer form value with fallback.
func ParseInt(value string, fallback int) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, false
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback, false
	}
	return parsed, true
}

// ParseBool reads checkbox style values: "true", "1", "on" and "yes".
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}
