package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
)

type LeaveResponse struct {
	ID                string     `json:"id"`
	EmployeeID        string     `json:"employeeId"`
	EmployeeName      string     `json:"employeeName"`
	Type              string     `json:"type"`
	StartDate         string     `json:"startDate"`
	EndDate           string     `json:"endDate"`
	DaysRequested     int        `json:"daysRequested"`
	Reason            string     `json:"reason"`
	Status            string     `json:"status"`
	BalanceDeducted   bool       `json:"balanceDeducted"`
	AppliedDate       time.Time  `json:"appliedDate"`
	ManagerReviewedBy *string    `json:"managerReviewedBy,omitempty"`
	ManagerReviewedAt *time.Time `json:"managerReviewedAt,omitempty"`
	AdminReviewedBy   *string    `json:"adminReviewedBy,omitempty"`
	AdminReviewedAt   *time.Time `json:"adminReviewedAt,omitempty"`
	RejectionReason   *string    `json:"rejectionReason,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func NewLeaveResponse(r LeaveRequest) LeaveResponse {
	return LeaveResponse{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		EmployeeName:      r.EmployeeName,
		Type:              string(r.Type),
		StartDate:         r.StartDate.Format("2006-01-02"),
		EndDate:           r.EndDate.Format("2006-01-02"),
		DaysRequested:     r.DaysRequested,
		Reason:            r.Reason,
		Status:            string(r.Status),
		BalanceDeducted:   r.BalanceDeducted,
		AppliedDate:       r.AppliedAt,
		ManagerReviewedBy: r.Trail.ManagerReviewerID,
		ManagerReviewedAt: r.Trail.ManagerReviewedAt,
		AdminReviewedBy:   r.Trail.AdminReviewerID,
		AdminReviewedAt:   r.Trail.AdminReviewedAt,
		RejectionReason:   r.Trail.RejectionReason,
		UpdatedAt:         r.UpdatedAt,
	}
}

type CreateLeaveRequest struct {
	EmployeeID *string `json:"employeeId,omitempty"`
	Type       string  `json:"type"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	Reason     string  `json:"reason"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID != nil && *r.EmployeeID != "" && !validator.IsValidUUID(*r.EmployeeID) {
		errs.Add("employeeId", "employeeId must be a valid ID")
	}
	if !LeaveType(r.Type).IsValid() {
		errs.Add("type", "type must be Sick, Vacation or Personal")
	}
	validateRange(&errs, r.StartDate, r.EndDate, &r.Start, &r.End)
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		errs.Add("reason", "reason is required")
	} else if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must be at most 1000 characters")
	}

	return errs.OrNil()
}

type UpdateLeaveRequest struct {
	Type      *string `json:"type,omitempty"`
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

func (r *UpdateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Type == nil && r.StartDate == nil && r.EndDate == nil && r.Reason == nil {
		errs.Add("body", "nothing to update")
	}
	if r.Type != nil && !LeaveType(*r.Type).IsValid() {
		errs.Add("type", "type must be Sick, Vacation or Personal")
	}
	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs.Add("startDate", "startDate must be YYYY-MM-DD")
		}
	}
	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs.Add("endDate", "endDate must be YYYY-MM-DD")
		}
	}
	if r.Reason != nil && validator.IsEmpty(*r.Reason) {
		errs.Add("reason", "reason must not be empty")
	}

	return errs.OrNil()
}

// Apply merges the update into r and re-derives DaysRequested.
func (u UpdateLeaveRequest) Apply(r *LeaveRequest) error {
	if u.Type != nil {
		r.Type = LeaveType(*u.Type)
	}
	if u.StartDate != nil {
		d, _ := validator.IsValidDate(*u.StartDate)
		r.StartDate = d
	}
	if u.EndDate != nil {
		d, _ := validator.IsValidDate(*u.EndDate)
		r.EndDate = d
	}
	if u.Reason != nil {
		r.Reason = strings.TrimSpace(*u.Reason)
	}
	if r.StartDate.After(r.EndDate) {
		return validator.ValidationErrors{{Field: "startDate", Message: "startDate must be on or before endDate"}}
	}
	r.DaysRequested = DaysRequested(r.StartDate, r.EndDate)
	return nil
}

func validateRange(errs *validator.ValidationErrors, startStr, endStr string, start, end *time.Time) {
	s, okStart := validator.IsValidDate(startStr)
	if !okStart {
		errs.Add("startDate", "startDate must be YYYY-MM-DD")
	}
	e, okEnd := validator.IsValidDate(endStr)
	if !okEnd {
		errs.Add("endDate", "endDate must be YYYY-MM-DD")
	}
	if okStart && okEnd {
		if s.After(e) {
			errs.Add("startDate", "startDate must be on or before endDate")
		}
		*start, *end = s, e
	}
}

type LeaveFilter struct {
	EmployeeID string
	Status     string
	Type       string
	StartDate  string
	EndDate    string
	Search     string
	Page       int
	Limit      int
	Skip       int
	SortBy     string
	SortOrder  string

	From       *time.Time
	To         *time.Time
	Window     validator.Page
	Visibility user.Visibility
}

var LeaveSortFields = map[string]string{
	"applied_at":     "lr.applied_at",
	"start_date":     "lr.start_date",
	"days_requested": "lr.days_requested",
	"status":         "lr.status",
}

func (f *LeaveFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != "" && !validator.IsValidUUID(f.EmployeeID) {
		errs.Add("employee_id", "invalid employee id")
	}
	if f.Status != "" && !approval.Status(f.Status).IsValid() {
		errs.Add("status", "invalid status")
	}
	if f.Type != "" && !LeaveType(f.Type).IsValid() {
		errs.Add("type", "type must be Sick, Vacation or Personal")
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
	if f.SortBy == "" {
		f.SortBy = "applied_at"
	} else if _, ok := LeaveSortFields[f.SortBy]; !ok {
		errs.Add("sort_by", "sort_by must be applied_at, start_date, days_requested or status")
	}
	if order, ok := validator.ParseSortOrder(f.SortOrder); ok {
		f.SortOrder = order
	} else {
		errs.Add("order", "order must be asc or desc")
	}

	f.Window = validator.ResolvePage(f.Page, f.Limit, f.Skip)
	return errs.OrNil()
}

type ListLeaveResponse struct {
	Requests []LeaveResponse
	Total    int64
	Page     int
	Limit    int
}
