package leave

import "errors"

var (
	ErrLeaveRequestNotFound     = errors.New("leave request not found")
	ErrInsufficientLeaveBalance = errors.New("insufficient leave balance")
	ErrOverlappingLeave         = errors.New("leave request overlaps an existing request")
	ErrLeaveNotEditable         = errors.New("only requests awaiting manager review can be edited")
	ErrLeaveNotDeletable        = errors.New("only pending requests can be deleted")
	ErrNotRequestOwner          = errors.New("you can only change your own leave requests")
	ErrCannotApplyForOthers     = errors.New("only administrators can apply for leave on behalf of others")
)
