package models

import "time"

// Round statuses. Started and in-progress count as active.
const (
	RoundStarted     = "started"
	RoundInProgress  = "in_progress"
	RoundCompleted   = "completed"
	RoundInterrupted = "interrupted"
)

// Round is a patrol performed by one guard.
type Round struct {
	ID               string     `json:"id"`
	GuardID          string     `json:"guard_id"`
	GuardName        string     `json:"guard_name"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	Status           string     `json:"status"`
	VisitedLocations []string   `json:"visited_locations"`
	Notes            string     `json:"notes,omitempty"`
	IncidentCount    int        `json:"incident_count"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Active reports whether the round still blocks its guard from starting another.
func (r Round) Active() bool {
	return r.Status == RoundStarted || r.Status == RoundInProgress
}
