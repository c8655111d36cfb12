package models

import "time"

// Roles, lowest privilege first.
const (
	RoleGuard         = "guard"
	RoleSupervisor    = "supervisor"
	RoleAdministrator = "administrator"
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleGuard, RoleSupervisor, RoleAdministrator:
		return true
	}
	return false
}

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Active       bool       `json:"active"`
	PasswordHash string     `json:"-"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
