package user

import "strings"

type Role string

const (
	RoleAdminMaster Role = "ADMIN_MASTER" // Full access, manages other admins
	RoleAdmin       Role = "ADMIN"        // Final approver, manages people and calendar
	RoleManager     Role = "MANAGER"      // First-stage approver for direct reports
	RoleEmployee    Role = "EMPLOYEE"
)

// Roles lists every role in descending privilege order.
var Roles = []Role{RoleAdminMaster, RoleAdmin, RoleManager, RoleEmployee}

// ParseRole accepts any casing ("admin", "Admin") and returns the canonical role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleAdminMaster
}

func (r Role) IsManager() bool {
	return r == RoleManager
}

// Principal is the authenticated caller, resolved from the access token.
type Principal struct {
	EmployeeID string
	Email      string
	Role       Role
}

func (p Principal) Can(permission Permission) bool {
	return HasPermission(p.Role, permission)
}

// Scope is how much of a collection a caller may see.
type Scope int

const (
	ScopeOwn  Scope = iota // rows about the caller
	ScopeTeam              // caller plus direct reports
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeTeam:
		return "team"
	case ScopeAll:
		return "all"
	default:
		return "own"
	}
}

// Visibility pairs a viewer with the scope they were granted.
type Visibility struct {
	ViewerID string
	Scope    Scope
}

// ScopeFor resolves the widest scope the role holds.
func ScopeFor(role Role, all, team Permission) Scope {
	switch {
	case HasPermission(role, all):
		return ScopeAll
	case HasPermission(role, team):
		return ScopeTeam
	default:
		return ScopeOwn
	}
}

// VisibilityFor is ScopeFor bound to a principal.
func VisibilityFor(p Principal, all, team Permission) Visibility {
	return Visibility{ViewerID: p.EmployeeID, Scope: ScopeFor(p.Role, all, team)}
}

// Allows reports whether a row about subjectID, whose manager is managerID,
// falls inside the visibility.
func (v Visibility) Allows(subjectID string, managerID *string) bool {
	switch v.Scope {
	case ScopeAll:
		return true
	case ScopeTeam:
		return subjectID == v.ViewerID || (managerID != nil && *managerID == v.ViewerID)
	default:
		return subjectID == v.ViewerID
	}
}
