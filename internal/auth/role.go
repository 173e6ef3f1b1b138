// internal/auth/role.go
//
// Ordered permission levels for the volunteer platform.
//
// Context
// -------
// Every user row carries a role_id.  Authorization is a straight numeric
// comparison: anything below Executive is denied on protected endpoints
// unless the request operates on the caller's own record.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package auth

// Role is an ordered permission level.  The zero value, RoleNone, doubles as
// "no user row exists for this email."
type Role int

const (
	RoleNone      Role = 0
	RoleVolunteer Role = 1
	RoleOrganizer Role = 2
	RoleExecutive Role = 3
)

// String returns the lowercase role name used in logs.
func (r Role) String() string {
	switch r {
	case RoleVolunteer:
		return "volunteer"
	case RoleOrganizer:
		return "organizer"
	case RoleExecutive:
		return "executive"
	default:
		return "none"
	}
}
