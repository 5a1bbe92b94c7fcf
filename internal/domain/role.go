package domain

import "strings"

// Role type to distinguish between user roles
type Role string

const (
	RoleTrainee     Role = "trainee"
	RoleCoach       Role = "coach"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

// roleAliases maps legacy role names (and the Spanish names still issued by
// older token services) onto the canonical roles.
var roleAliases = map[string]Role{
	"trainee":       RoleTrainee,
	"client":        RoleTrainee,
	"cliente":       RoleTrainee,
	"coach":         RoleCoach,
	"trainer":       RoleCoach,
	"profe":         RoleCoach,
	"entrenador":    RoleCoach,
	"coordinator":   RoleCoordinator,
	"coordinador":   RoleCoordinator,
	"admin":         RoleAdmin,
	"administrator": RoleAdmin,
	"administrador": RoleAdmin,
}

// ParseRole normalizes a raw role claim. ok is false for unknown roles.
func ParseRole(raw string) (Role, bool) {
	r, ok := roleAliases[strings.ToLower(strings.TrimSpace(raw))]
	return r, ok
}

// IsStaff reports whether the role may act on behalf of other trainees.
func (r Role) IsStaff() bool {
	switch r {
	case RoleCoach, RoleCoordinator, RoleAdmin:
		return true
	default:
		return false
	}
}

// StaffRoles lists every role allowed to manage trainees.
func StaffRoles() []Role {
	return []Role{RoleCoach, RoleCoordinator, RoleAdmin}
}
