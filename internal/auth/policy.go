package auth

import "github.com/crucial707/vigil/internal/models"

// Operation names a protected API operation.
type Operation string

const (
	OpRegisterUser   Operation = "users.register"
	OpListUsers      Operation = "users.list"
	OpSetUserStatus  Operation = "users.set_status"
	OpViewSelf       Operation = "auth.me"
	OpChangePassword Operation = "auth.change_password"

	OpCreateOccurrence       Operation = "occurrences.create"
	OpListOccurrences        Operation = "occurrences.list"
	OpGetOccurrence          Operation = "occurrences.get"
	OpUploadOccurrencePhoto  Operation = "occurrences.upload_photo"
	OpResolveOccurrence      Operation = "occurrences.resolve"
	OpListOccurrencesByLevel Operation = "occurrences.by_priority"

	OpStartRound     Operation = "rounds.start"
	OpListRounds     Operation = "rounds.list"
	OpGetActiveRound Operation = "rounds.active"
	OpFinishRound    Operation = "rounds.finish"
	OpInterruptRound Operation = "rounds.interrupt"

	OpStartShift      Operation = "shifts.start"
	OpListShifts      Operation = "shifts.list"
	OpGetCurrentShift Operation = "shifts.current"
	OpListActiveShift Operation = "shifts.active"
	OpFinishShift     Operation = "shifts.finish"

	OpCreateLocation Operation = "locations.create"
	OpUpdateLocation Operation = "locations.update"
	OpListLocations  Operation = "locations.list"

	OpViewDashboard  Operation = "dashboard.stats"
	OpListAuditLogs  Operation = "audit.list"
	OpViewSystemInfo Operation = "system.info"
)

var (
	anyRole        = []string{models.RoleGuard, models.RoleSupervisor, models.RoleAdministrator}
	supervisorsUp  = []string{models.RoleSupervisor, models.RoleAdministrator}
	administrators = []string{models.RoleAdministrator}
)

// Policy maps each operation to the roles allowed to invoke it.
// Operations missing from the table are denied.
var Policy = map[Operation][]string{
	OpRegisterUser:   administrators,
	OpListUsers:      supervisorsUp,
	OpSetUserStatus:  administrators,
	OpViewSelf:       anyRole,
	OpChangePassword: anyRole,

	OpCreateOccurrence:       anyRole,
	OpListOccurrences:        anyRole,
	OpGetOccurrence:          anyRole,
	OpUploadOccurrencePhoto:  anyRole,
	OpResolveOccurrence:      anyRole,
	OpListOccurrencesByLevel: supervisorsUp,

	OpStartRound:     anyRole,
	OpListRounds:     anyRole,
	OpGetActiveRound: anyRole,
	OpFinishRound:    anyRole,
	OpInterruptRound: anyRole,

	OpStartShift:      anyRole,
	OpListShifts:      anyRole,
	OpGetCurrentShift: anyRole,
	OpListActiveShift: supervisorsUp,
	OpFinishShift:     anyRole,

	OpCreateLocation: supervisorsUp,
	OpUpdateLocation: supervisorsUp,
	OpListLocations:  anyRole,

	OpViewDashboard:  anyRole,
	OpListAuditLogs:  administrators,
	OpViewSystemInfo: anyRole,
}

// Allowed reports whether role may perform op.
func Allowed(op Operation, role string) bool {
	for _, r := range Policy[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize returns ErrForbidden unless u may perform op.
func Authorize(u *models.User, op Operation) error {
	if u == nil {
		return ErrUnauthenticated
	}
	if !Allowed(op, u.Role) {
		return ErrForbidden
	}
	return nil
}

// SeesAll reports whether u sees every record in listings rather than only their own.
func SeesAll(u *models.User) bool {
	return u.Role == models.RoleSupervisor || u.Role == models.RoleAdministrator
}

// CanActOn reports whether u may mutate a record owned by ownerID:
// the owner themselves, or any supervisor/administrator.
func CanActOn(u *models.User, ownerID string) bool {
	return u.ID == ownerID || SeesAll(u)
}
