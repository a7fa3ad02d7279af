package employee

import "errors"

var (
	ErrEmployeeNotFound         = errors.New("employee not found")
	ErrEmailExists              = errors.New("email already registered")
	ErrManagerNotFound          = errors.New("reporting manager not found")
	ErrAssignedAdminInvalid     = errors.New("assigned admin must be an ADMIN or ADMIN_MASTER")
	ErrReportingCycle           = errors.New("reporting line would form a cycle")
	ErrSelfManager              = errors.New("an employee cannot report to themselves")
	ErrCannotDeleteSelf         = errors.New("cannot delete your own account")
	ErrCannotEditOthers         = errors.New("you can only edit your own profile")
	ErrRestrictedField          = errors.New("only administrators can change role, department, manager, balance or status")
	ErrNegativeLeaveBalance     = errors.New("leave balance cannot be negative")
	ErrEmployeeHasDirectReports = errors.New("employee still has direct reports; reassign them first")
)
