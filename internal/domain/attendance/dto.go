package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
)

type RecordResponse struct {
	ID                string     `json:"id"`
	EmployeeID        string     `json:"employeeId"`
	EmployeeName      string     `json:"employeeName"`
	Date              string     `json:"date"`
	ClockIn           *string    `json:"clockIn"`
	ClockOut          *string    `json:"clockOut"`
	ClockInAt         *time.Time `json:"clockInAt"`
	ClockOutAt        *time.Time `json:"clockOutAt"`
	Status            string     `json:"status"`
	ApprovalStatus    string     `json:"approvalStatus"`
	IsConfirmed       bool       `json:"isConfirmed"`
	ConfirmedAt       *time.Time `json:"confirmedAt"`
	EntriesCount      int        `json:"entriesCount"`
	ManagerReviewedBy *string    `json:"managerReviewedBy,omitempty"`
	ManagerReviewedAt *time.Time `json:"managerReviewedAt,omitempty"`
	AdminReviewedBy   *string    `json:"adminReviewedBy,omitempty"`
	AdminReviewedAt   *time.Time `json:"adminReviewedAt,omitempty"`
	RejectionReason   *string    `json:"rejectionReason,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func NewRecordResponse(r Record, loc *time.Location) RecordResponse {
	return RecordResponse{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		EmployeeName:      r.EmployeeName,
		Date:              r.Date.Format("2006-01-02"),
		ClockIn:           FormatClock(r.ClockIn, loc),
		ClockOut:          FormatClock(r.ClockOut, loc),
		ClockInAt:         r.ClockIn,
		ClockOutAt:        r.ClockOut,
		Status:            string(r.Status),
		ApprovalStatus:    string(r.ApprovalStatus),
		IsConfirmed:       r.IsConfirmed,
		ConfirmedAt:       r.ConfirmedAt,
		EntriesCount:      r.EntriesCount,
		ManagerReviewedBy: r.Trail.ManagerReviewerID,
		ManagerReviewedAt: r.Trail.ManagerReviewedAt,
		AdminReviewedBy:   r.Trail.AdminReviewerID,
		AdminReviewedAt:   r.Trail.AdminReviewedAt,
		RejectionReason:   r.Trail.RejectionReason,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

type EntryResponse struct {
	ID                 string    `json:"id"`
	AttendanceRecordID string    `json:"attendanceRecordId"`
	EntryType          string    `json:"entryType"`
	Timestamp          time.Time `json:"timestamp"`
	Reason             *string   `json:"reason"`
	CreatedAt          time.Time `json:"createdAt"`
}

func NewEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:                 e.ID,
		AttendanceRecordID: e.RecordID,
		EntryType:          string(e.Type),
		Timestamp:          e.Timestamp,
		Reason:             e.Reason,
		CreatedAt:          e.CreatedAt,
	}
}

// MarkAttendanceRequest clocks in (first call of the day) or out (later calls).
// Empty times default to now.
type MarkAttendanceRequest struct {
	EmployeeID *string `json:"employeeId,omitempty"`
	ClockIn    *string `json:"clockIn,omitempty"`
	ClockOut   *string `json:"clockOut,omitempty"`
	Status     *string `json:"status,omitempty"`
}

func (r *MarkAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID != nil && *r.EmployeeID != "" && !validator.IsValidUUID(*r.EmployeeID) {
		errs.Add("employeeId", "employeeId must be a valid ID")
	}
	if r.Status != nil && !DayStatus(*r.Status).IsValid() {
		errs.Add("status", "status must be Present, Late, Absent or Holiday")
	}

	return errs.OrNil()
}

// CreateAttendanceRequest is the admin manual entry, e.g. marking a day Absent.
type CreateAttendanceRequest struct {
	EmployeeID string  `json:"employeeId"`
	Date       string  `json:"date"`
	ClockIn    *string `json:"clockIn,omitempty"`
	ClockOut   *string `json:"clockOut,omitempty"`
	Status     string  `json:"status"`

	ParsedDate time.Time `json:"-"`
}

func (r *CreateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employeeId", "employeeId must be a valid ID")
	}
	if d, ok := validator.IsValidDate(r.Date); ok {
		r.ParsedDate = d
	} else {
		errs.Add("date", "date must be YYYY-MM-DD")
	}
	if !DayStatus(r.Status).IsValid() {
		errs.Add("status", "status must be Present, Late, Absent or Holiday")
	}
	if r.ClockOut != nil && r.ClockIn == nil {
		errs.Add("clockOut", "clockOut requires clockIn")
	}

	return errs.OrNil()
}

type UpdateAttendanceRequest struct {
	ClockIn  *string `json:"clockIn,omitempty"`
	ClockOut *string `json:"clockOut,omitempty"`
	Status   *string `json:"status,omitempty"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ClockIn == nil && r.ClockOut == nil && r.Status == nil {
		errs.Add("body", "nothing to update")
	}
	if r.Status != nil && !DayStatus(*r.Status).IsValid() {
		errs.Add("status", "status must be Present, Late, Absent or Holiday")
	}

	return errs.OrNil()
}

type CreateEntryRequest struct {
	EntryType string  `json:"entryType"`
	Reason    *string `json:"reason,omitempty"`
}

func (r *CreateEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EntryType = strings.ToLower(strings.TrimSpace(r.EntryType))
	if !EntryType(r.EntryType).IsValid() {
		errs.Add("entryType", "entryType must be in or out")
	}
	if r.Reason != nil && len(*r.Reason) > 500 {
		errs.Add("reason", "reason must be at most 500 characters")
	}

	return errs.OrNil()
}

type AttendanceFilter struct {
	EmployeeID     string
	StartDate      string
	EndDate        string
	Status         string
	ApprovalStatus string
	Search         string
	Page           int
	Limit          int
	Skip           int
	SortBy         string
	SortOrder      string

	// Resolved by Validate / the service
	From       *time.Time
	To         *time.Time
	Window     validator.Page
	Visibility user.Visibility
}

var AttendanceSortFields = map[string]string{
	"date":           "date",
	"check_in_time":  "clock_in",
	"clock_in":       "clock_in",
	"check_out_time": "clock_out",
	"clock_out":      "clock_out",
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != "" && !validator.IsValidUUID(f.EmployeeID) {
		errs.Add("employee_id", "invalid employee id")
	}
	if f.StartDate != "" {
		if d, ok := validator.IsValidDate(f.StartDate); ok {
			f.From = &d
		} else {
			errs.Add("start_date", "start_date must be YYYY-MM-DD")
		}
	}
	if f.EndDate != "" {
		if d, ok := validator.IsValidDate(f.EndDate); ok {
			f.To = &d
		} else {
			errs.Add("end_date", "end_date must be YYYY-MM-DD")
		}
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		errs.Add("start_date", "start_date must be on or before end_date")
	}
	if f.Status != "" && !DayStatus(f.Status).IsValid() {
		errs.Add("status", "status must be Present, Late, Absent or Holiday")
	}
	if f.ApprovalStatus != "" && !approval.Status(f.ApprovalStatus).IsValid() {
		errs.Add("approval_status", "invalid approval status")
	}
	if f.SortBy == "" {
		f.SortBy = "date"
	} else if _, ok := AttendanceSortFields[f.SortBy]; !ok {
		errs.Add("sort_by", "sort_by must be date, check_in_time or check_out_time")
	}
	if order, ok := validator.ParseSortOrder(f.SortOrder); ok {
		f.SortOrder = order
	} else {
		errs.Add("order", "order must be asc or desc")
	}

	f.Window = validator.ResolvePage(f.Page, f.Limit, f.Skip)
	return errs.OrNil()
}

type ListAttendanceResponse struct {
	Records []RecordResponse
	Total   int64
	Page    int
	Limit   int
}
