package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/holiday"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/project"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/report"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenRevoked),
		errors.Is(err, auth.ErrOAuthStateMismatch):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAccountInactive),
		errors.Is(err, auth.ErrOAuthEmailNotVerified),
		errors.Is(err, auth.ErrOAuthAccountNotLinked):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrIncorrectPassword):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, auth.ErrOAuthNotConfigured):
		NotFound(w, err.Error())

	// Policy and approval errors
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrAdminMasterRequired),
		errors.Is(err, approval.ErrSelfApproval),
		errors.Is(err, approval.ErrNotPermitted),
		errors.Is(err, approval.ErrNotDirectReport),
		errors.Is(err, employee.ErrCannotEditOthers),
		errors.Is(err, employee.ErrRestrictedField),
		errors.Is(err, attendance.ErrNotRecordOwner),
		errors.Is(err, attendance.ErrCannotMarkForOthers),
		errors.Is(err, attendance.ErrStatusOverrideNotAllow),
		errors.Is(err, attendance.ErrClockOverrideNotAllow),
		errors.Is(err, leave.ErrNotRequestOwner),
		errors.Is(err, leave.ErrCannotApplyForOthers),
		errors.Is(err, project.ErrProposalNotVisible):
		Forbidden(w, err.Error())
	case errors.Is(err, approval.ErrAlreadyFinalized),
		errors.Is(err, approval.ErrInvalidTransition):
		Conflict(w, err.Error())
	case errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, approval.ErrInvalidStatus),
		errors.Is(err, approval.ErrReasonTooLong):
		BadRequest(w, err.Error(), nil)

	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, attendance.ErrEntryNotFound),
		errors.Is(err, leave.ErrLeaveRequestNotFound),
		errors.Is(err, holiday.ErrHolidayNotFound),
		errors.Is(err, project.ErrProposalNotFound),
		errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, err.Error())

	// Conflicts with current state
	case errors.Is(err, employee.ErrEmailExists),
		errors.Is(err, employee.ErrEmployeeHasDirectReports),
		errors.Is(err, attendance.ErrAttendanceExists),
		errors.Is(err, attendance.ErrAlreadyClockedOut),
		errors.Is(err, attendance.ErrAttendanceLocked),
		errors.Is(err, attendance.ErrAlreadyConfirmed),
		errors.Is(err, leave.ErrOverlappingLeave),
		errors.Is(err, leave.ErrLeaveNotEditable),
		errors.Is(err, leave.ErrLeaveNotDeletable),
		errors.Is(err, holiday.ErrHolidayExists),
		errors.Is(err, project.ErrProposalNotDeletable):
		Conflict(w, err.Error())

	// Rejected input
	case errors.Is(err, employee.ErrManagerNotFound),
		errors.Is(err, employee.ErrAssignedAdminInvalid),
		errors.Is(err, employee.ErrReportingCycle),
		errors.Is(err, employee.ErrSelfManager),
		errors.Is(err, employee.ErrCannotDeleteSelf),
		errors.Is(err, employee.ErrNegativeLeaveBalance),
		errors.Is(err, attendance.ErrNothingToConfirm),
		errors.Is(err, attendance.ErrClockOutBeforeClockIn),
		errors.Is(err, attendance.ErrInvalidClockValue),
		errors.Is(err, leave.ErrInsufficientLeaveBalance),
		errors.Is(err, project.ErrUnknownMembers),
		errors.Is(err, notification.ErrInvalidNotificationType),
		errors.Is(err, report.ErrUnsupportedFormat):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
