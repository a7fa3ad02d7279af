package approval

import (
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

// Actor is the caller trying to move an item.
type Actor struct {
	EmployeeID string
	Role       user.Role
}

// Subject is the employee the item belongs to.
type Subject struct {
	EmployeeID string
	ManagerID  *string
}

// Flow is a transition table plus the roles allowed to act at each stage.
type Flow struct {
	name        string
	initial     Status
	transitions map[Status]map[Action]Status
	stageRoles  map[Status][]user.Role
}

// TwoStep drives attendance records and leave requests.
var TwoStep = Flow{
	name:    "two_step",
	initial: StatusPendingManager,
	transitions: map[Status]map[Action]Status{
		StatusPendingManager: {
			ActionApprove: StatusPendingAdmin,
			ActionReject:  StatusRejected,
		},
		StatusPendingAdmin: {
			ActionApprove: StatusApproved,
			ActionReject:  StatusRejected,
		},
	},
	stageRoles: map[Status][]user.Role{
		StatusPendingManager: {user.RoleManager, user.RoleAdmin, user.RoleAdminMaster},
		StatusPendingAdmin:   {user.RoleAdmin, user.RoleAdminMaster},
	},
}

// AdminSignOff drives project proposals.
var AdminSignOff = Flow{
	name:    "admin_sign_off",
	initial: StatusPendingAdmin,
	transitions: map[Status]map[Action]Status{
		StatusPendingAdmin: {
			ActionApprove: StatusApproved,
		},
	},
	stageRoles: map[Status][]user.Role{
		StatusPendingAdmin: {user.RoleAdmin, user.RoleAdminMaster},
	},
}

func (f Flow) Name() string { return f.name }

// Initial is the status every new item starts in.
func (f Flow) Initial() Status { return f.initial }

// CanAct reports whether role may act on an item sitting in status.
func (f Flow) CanAct(role user.Role, status Status) bool {
	for _, r := range f.stageRoles[status] {
		if r == role {
			return true
		}
	}
	return false
}

// Decide validates one step and returns the next status.
// Self-action is refused before anything else, whatever the role.
func (f Flow) Decide(current Status, action Action, actor Actor, subject Subject) (Status, error) {
	if actor.EmployeeID == subject.EmployeeID {
		return current, ErrSelfApproval
	}
	if current.IsTerminal() {
		return current, ErrAlreadyFinalized
	}
	if !f.CanAct(actor.Role, current) {
		return current, ErrNotPermitted
	}
	if actor.Role == user.RoleManager {
		if subject.ManagerID == nil || *subject.ManagerID != actor.EmployeeID {
			return current, ErrNotDirectReport
		}
	}
	next, ok := f.transitions[current][action]
	if !ok {
		return current, ErrInvalidTransition
	}
	return next, nil
}
