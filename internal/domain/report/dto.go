package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, true
	case FormatJSON, FormatXLSX, FormatPDF:
		return f, true
	}
	return "", false
}

// ========================================
// MONTHLY ATTENDANCE REPORT
// ========================================

type AttendanceReportRequest struct {
	Month  string
	Format string

	Year         int
	MonthValue   time.Month
	ParsedFormat Format
	Visibility   user.Visibility
}

func (r *AttendanceReportRequest) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	if r.Month == "" {
		r.Year, r.MonthValue = now.Year(), now.Month()
	} else if year, month, ok := validator.IsValidMonth(r.Month); ok {
		r.Year, r.MonthValue = year, month
	} else {
		errs.Add("month", "month must be in YYYY-MM format")
	}

	if f, ok := ParseFormat(r.Format); ok {
		r.ParsedFormat = f
	} else {
		errs.Add("format", "format must be one of json, xlsx, pdf")
	}

	return errs.OrNil()
}

type AttendanceReport struct {
	Month       string `json:"month"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
	// CountedThrough is the last day included; days after today are not
	// counted as absences yet.
	CountedThrough *string               `json:"countedThrough"`
	WorkingDays    int                   `json:"workingDays"`
	GeneratedAt    time.Time             `json:"generatedAt"`
	Employees      []AttendanceReportRow `json:"employees"`
}

type AttendanceReportRow struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	Department   string `json:"department"`
	WorkingDays  int    `json:"workingDays"`
	Present      int    `json:"present"`
	Late         int    `json:"late"`
	Absent       int    `json:"absent"`
	LeaveDays    int    `json:"leaveDays"`
}

// ========================================
// LEAVE BALANCE REPORT
// ========================================

type LeaveBalanceReportRequest struct {
	Year   string
	Format string

	YearValue    int
	ParsedFormat Format
	Visibility   user.Visibility
}

func (r *LeaveBalanceReportRequest) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	if r.Year == "" {
		r.YearValue = now.Year()
	} else if y, err := strconv.Atoi(r.Year); err != nil || y < 2000 || y > now.Year()+1 {
		errs.Add("year", "year must be a valid year")
	} else {
		r.YearValue = y
	}

	if f, ok := ParseFormat(r.Format); ok {
		r.ParsedFormat = f
	} else {
		errs.Add("format", "format must be one of json, xlsx, pdf")
	}

	return errs.OrNil()
}

type LeaveBalanceReport struct {
	Year        int               `json:"year"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Employees   []LeaveBalanceRow `json:"employees"`
}

type LeaveBalanceRow struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	Department   string `json:"department"`
	LeaveBalance int    `json:"leaveBalance"`
	ApprovedDays int    `json:"approvedDays"`
	PendingDays  int    `json:"pendingDays"`
}

// File is a rendered report ready to be streamed.
type File struct {
	ContentType string
	Filename    string
	Body        []byte
}
