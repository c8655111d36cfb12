package models

import "time"

// Occurrence types.
const (
	OccurrenceTheft            = "theft"
	OccurrenceVandalism        = "vandalism"
	OccurrenceFire             = "fire"
	OccurrenceAccident         = "accident"
	OccurrenceSuspicious       = "suspicious"
	OccurrenceMedicalEmergency = "medical_emergency"
	OccurrenceOther            = "other"
)

// Priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// OccurrenceTypes is the closed set of occurrence types.
var OccurrenceTypes = []string{
	OccurrenceTheft, OccurrenceVandalism, OccurrenceFire, OccurrenceAccident,
	OccurrenceSuspicious, OccurrenceMedicalEmergency, OccurrenceOther,
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Occurrence is a reported security incident.
type Occurrence struct {
	ID              string     `json:"id"`
	Location        string     `json:"location"`
	Type            string     `json:"type"`
	Priority        string     `json:"priority"`
	Description     string     `json:"description"`
	Photos          []string   `json:"photos"`
	ReporterID      string     `json:"reporter_id"`
	ReporterName    string     `json:"reporter_name"`
	Resolved        bool       `json:"resolved"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
