package report

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

// EmployeeRef is the part of an employee a report row needs.
type EmployeeRef struct {
	ID         string
	Name       string
	Department string
}

type DayRecord struct {
	EmployeeID string
	Date       time.Time
	Status     attendance.DayStatus
}

// LeaveSpan is an approved leave request's date range.
type LeaveSpan struct {
	EmployeeID string
	Start      time.Time
	End        time.Time
}

type ReportRepository interface {
	// ListEmployees returns active employees visible to vis, ordered by name.
	ListEmployees(ctx context.Context, vis user.Visibility) ([]EmployeeRef, error)
	ListDayRecords(ctx context.Context, vis user.Visibility, from, to time.Time) ([]DayRecord, error)
	// ListApprovedLeave returns spans overlapping [from, to].
	ListApprovedLeave(ctx context.Context, vis user.Visibility, from, to time.Time) ([]LeaveSpan, error)
	// GetLeaveBalanceReport sums approved and pending days of leave starting in year.
	GetLeaveBalanceReport(ctx context.Context, vis user.Visibility, year int) ([]LeaveBalanceRow, error)
}
