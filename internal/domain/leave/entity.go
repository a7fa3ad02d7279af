package leave

import (
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
)

type LeaveType string

const (
	LeaveTypeSick     LeaveType = "Sick"
	LeaveTypeVacation LeaveType = "Vacation"
	LeaveTypePersonal LeaveType = "Personal"
)

var LeaveTypes = []LeaveType{LeaveTypeSick, LeaveTypeVacation, LeaveTypePersonal}

func (t LeaveType) IsValid() bool {
	for _, known := range LeaveTypes {
		if t == known {
			return true
		}
	}
	return false
}

// LeaveRequest entity
type LeaveRequest struct {
	ID            string
	EmployeeID    string
	Type          LeaveType
	StartDate     time.Time
	EndDate       time.Time
	DaysRequested int
	Reason        string
	Status        approval.Status
	Trail         approval.Trail
	// BalanceDeducted is set in the same transaction that enters Approved.
	BalanceDeducted bool
	AppliedAt       time.Time
	UpdatedAt       time.Time

	// Join
	EmployeeName string
}

// DaysRequested counts calendar days in [start, end], inclusive, minimum 1.
// Weekends and holidays are not subtracted.
func DaysRequested(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	days := int(e.Sub(s).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// Covers reports whether day falls inside the request.
func (r LeaveRequest) Covers(day time.Time) bool {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(r.StartDate) && !d.After(r.EndDate)
}
