package models

import "time"

// Audit actions.
const (
	ActionCreateUser        = "CREATE_USER"
	ActionUpdateUserStatus  = "UPDATE_USER_STATUS"
	ActionLogin             = "LOGIN"
	ActionChangePassword    = "CHANGE_PASSWORD"
	ActionCreateOccurrence  = "CREATE_OCCURRENCE"
	ActionResolveOccurrence = "RESOLVE_OCCURRENCE"
	ActionUploadPhoto       = "UPLOAD_PHOTO"
	ActionStartRound        = "START_ROUND"
	ActionFinishRound       = "FINISH_ROUND"
	ActionInterruptRound    = "INTERRUPT_ROUND"
	ActionStartShift        = "START_SHIFT"
	ActionFinishShift       = "FINISH_SHIFT"
	ActionCreateLocation    = "CREATE_LOCATION"
	ActionUpdateLocation    = "UPDATE_LOCATION"
)

// Audit resources.
const (
	ResourceUsers       = "users"
	ResourceAuth        = "auth"
	ResourceOccurrences = "occurrences"
	ResourceRounds      = "rounds"
	ResourceShifts      = "shifts"
	ResourceLocations   = "locations"
)

// AuditEntry represents one audit log row. Entries are append-only.
type AuditEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Details   string    `json:"details,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}
