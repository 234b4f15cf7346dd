package models

import "time"

// ReportType is the coarse emergency classification of a report.
type ReportType string

const (
	TypeEmergency    ReportType = "EMERGENCY"
	TypeNonEmergency ReportType = "NON_EMERGENCY"
)

// Valid reports whether t is a member of the closed type set.
func (t ReportType) Valid() bool {
	return t == TypeEmergency || t == TypeNonEmergency
}

// ReportStatus is the triage lifecycle state of a report.
type ReportStatus string

const (
	StatusPending    ReportStatus = "PENDING"
	StatusInProgress ReportStatus = "IN_PROGRESS"
	StatusResolved   ReportStatus = "RESOLVED"
	StatusDismissed  ReportStatus = "DISMISSED"
)

// Valid reports whether s is a member of the status set.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusDismissed:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal triage state.
func (s ReportStatus) Terminal() bool {
	return s == StatusResolved || s == StatusDismissed
}

// Report is the persisted record of one citizen-submitted civic issue.
// ID is the internal storage key used by moderator endpoints; ReportID is
// the opaque public token handed to the submitter for anonymous tracking.
type Report struct {
	ID           int64        `json:"id"`
	ReportID     string       `json:"reportId"`
	Type         ReportType   `json:"type"`
	SpecificType string       `json:"specificType"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Location     *string      `json:"location"`
	Latitude     *float64     `json:"latitude"`
	Longitude    *float64     `json:"longitude"`
	Image        *string      `json:"image"`
	Status       ReportStatus `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// ReportDraft is the submission payload assembled during one wizard
// session. Latitude and longitude are accepted as JSON numbers or numeric
// strings; malformed numeric strings fail creation rather than silently
// defaulting.
type ReportDraft struct {
	ReportID     string `json:"reportId"`
	Type         string `json:"type"`
	SpecificType string `json:"specificType"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	Latitude     any    `json:"latitude"`
	Longitude    any    `json:"longitude"`
	Image        string `json:"image"`
	Status       string `json:"status"`
}

// ClassificationResult is the parsed outcome of one image-classification
// attempt. It is never persisted on its own; Success is true iff both
// Title and Type came back non-empty.
type ClassificationResult struct {
	Title       string `json:"title"`
	Type        string `json:"reportType"`
	Description string `json:"description"`
	Success     bool   `json:"success"`
}

// GeocodeAddress contains the structured address sub-fields returned by
// the geocoding provider.
type GeocodeAddress struct {
	HouseNumber string `json:"house_number,omitempty"`
	Road        string `json:"road,omitempty"`
	Suburb      string `json:"suburb,omitempty"`
	City        string `json:"city,omitempty"`
	County      string `json:"county,omitempty"`
	State       string `json:"state,omitempty"`
	PostCode    string `json:"postcode,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// GeocodeResult is the outcome of one reverse-geocoding lookup.
type GeocodeResult struct {
	DisplayName string         `json:"display_name"`
	Lat         string         `json:"lat"`
	Lon         string         `json:"lon"`
	Address     GeocodeAddress `json:"address"`
}
