// Package domain models the site-wide switches an admin can flip.
package domain

import "time"

// JobApplicationsID is the document holding the "accepting applications" flag.
const JobApplicationsID = "jobApplications"

// Flag is a stored boolean as decoded at the store boundary. Anything that is
// not an explicit false counts as on.
type Flag int

const (
	FlagUnset Flag = iota
	FlagOn
	FlagOff
)

// DecodeFlag classifies a raw stored value. Missing and non-boolean values
// become FlagUnset.
func DecodeFlag(raw any) Flag {
	b, ok := raw.(bool)
	switch {
	case !ok:
		return FlagUnset
	case b:
		return FlagOn
	default:
		return FlagOff
	}
}

// Enabled resolves the flag with its default arm: unset means on.
func (f Flag) Enabled() bool {
	return f != FlagOff
}

// FlagOf encodes a boolean.
func FlagOf(on bool) Flag {
	if on {
		return FlagOn
	}
	return FlagOff
}

// SiteSetting is the singleton document for one setting id.
type SiteSetting struct {
	ID                    string
	AcceptingApplications Flag
	UpdatedAt             *time.Time
	UpdatedBy             string
}

// Snapshot is one delivery of a settings subscription. Seq increases with
// every delivery so consumers can drop superseded snapshots.
type Snapshot struct {
	Seq                   uint64 `json:"seq"`
	AcceptingApplications bool   `json:"acceptingApplications"`
}
