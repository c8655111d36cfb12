package models

import "time"

// Shift statuses.
const (
	ShiftActive   = "active"
	ShiftInactive = "inactive"
	ShiftPaused   = "paused"
)

// Shift is a guard's duty period at a responsible location.
type Shift struct {
	ID        string     `json:"id"`
	GuardID   string     `json:"guard_id"`
	GuardName string     `json:"guard_name"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Status    string     `json:"status"`
	Location  string     `json:"location"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
