package employee

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
)

// EmployeeResponse is the public shape of an employee (the /users resource).
type EmployeeResponse struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	PersonalEmail        *string    `json:"personalEmail"`
	Role                 string     `json:"role"`
	Department           string     `json:"department"`
	Designation          string     `json:"designation"`
	Phone                string     `json:"phone"`
	LeaveBalance         int        `json:"leaveBalance"`
	Status               string     `json:"status"`
	ReportingTo          *string    `json:"reportingTo"`
	ReportingManagerName *string    `json:"reportingManagerName"`
	AssignedAdminID      *string    `json:"assignedAdminId"`
	PasswordChanged      bool       `json:"passwordChanged"`
	LoginCount           int        `json:"loginCount"`
	LastLoginAt          *time.Time `json:"lastLoginAt"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                   e.ID,
		Name:                 e.Name,
		Email:                e.Email,
		PersonalEmail:        e.PersonalEmail,
		Role:                 string(e.Role),
		Department:           e.Department,
		Designation:          e.Designation,
		Phone:                e.Phone,
		LeaveBalance:         e.LeaveBalance,
		Status:               string(e.Status),
		ReportingTo:          e.ManagerID,
		ReportingManagerName: e.ManagerName,
		AssignedAdminID:      e.AssignedAdminID,
		PasswordChanged:      e.PasswordChanged,
		LoginCount:           e.LoginCount,
		LastLoginAt:          e.LastLoginAt,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

type CreateEmployeeResponse struct {
	EmployeeResponse
	EmailSent bool `json:"emailSent"`
}

type CreateEmployeeRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	PersonalEmail   *string `json:"personalEmail,omitempty"`
	Password        string  `json:"password,omitempty"`
	Role            string  `json:"role"`
	Department      string  `json:"department"`
	Designation     string  `json:"designation"`
	Phone           string  `json:"phone"`
	LeaveBalance    *int    `json:"leaveBalance,omitempty"`
	ReportingTo     *string `json:"reportingTo,omitempty"`
	AssignedAdminID *string `json:"assignedAdminId,omitempty"`
}

func (r *CreateEmployeeRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Department = strings.TrimSpace(r.Department)
	r.Designation = strings.TrimSpace(r.Designation)
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Role == "" {
		r.Role = string(user.RoleEmployee)
	}
	if r.PersonalEmail != nil {
		pe := strings.ToLower(strings.TrimSpace(*r.PersonalEmail))
		r.PersonalEmail = &pe
		if pe == "" {
			r.PersonalEmail = nil
		}
	}
	r.ReportingTo = blankToNil(r.ReportingTo)
	r.AssignedAdminID = blankToNil(r.AssignedAdminID)
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 150 {
		errs.Add("name", "name must be at most 150 characters")
	}

	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "invalid email format")
	}

	if r.PersonalEmail != nil && !validator.IsValidEmail(*r.PersonalEmail) {
		errs.Add("personalEmail", "invalid email format")
	}

	if r.Password != "" && len(r.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters")
	}

	if _, ok := user.ParseRole(r.Role); !ok {
		errs.Add("role", "role must be one of ADMIN_MASTER, ADMIN, MANAGER, EMPLOYEE")
	}

	if r.Phone != "" && !validator.IsValidPhoneNumber(r.Phone) {
		errs.Add("phone", "invalid phone number")
	}

	if r.LeaveBalance != nil && *r.LeaveBalance < 0 {
		errs.Add("leaveBalance", "leave balance cannot be negative")
	}

	if r.ReportingTo != nil && !validator.IsValidUUID(*r.ReportingTo) {
		errs.Add("reportingTo", "reportingTo must be a valid ID")
	}

	if r.AssignedAdminID != nil && !validator.IsValidUUID(*r.AssignedAdminID) {
		errs.Add("assignedAdminId", "assignedAdminId must be a valid ID")
	}

	return errs.OrNil()
}

// UpdateEmployeeRequest is a partial update. For reportingTo and
// assignedAdminId an empty string clears the link.
type UpdateEmployeeRequest struct {
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty"`
	PersonalEmail   *string `json:"personalEmail,omitempty"`
	Role            *string `json:"role,omitempty"`
	Department      *string `json:"department,omitempty"`
	Designation     *string `json:"designation,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	LeaveBalance    *int    `json:"leaveBalance,omitempty"`
	Status          *string `json:"status,omitempty"`
	ReportingTo     *string `json:"reportingTo,omitempty"`
	AssignedAdminID *string `json:"assignedAdminId,omitempty"`
}

// TouchesRestrictedFields reports whether the update needs user.manage.
func (r *UpdateEmployeeRequest) TouchesRestrictedFields() bool {
	return r.Email != nil || r.Role != nil || r.Department != nil || r.Designation != nil ||
		r.LeaveBalance != nil || r.Status != nil || r.ReportingTo != nil || r.AssignedAdminID != nil
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.Email != nil && !validator.IsValidEmail(strings.TrimSpace(*r.Email)) {
		errs.Add("email", "invalid email format")
	}
	if r.PersonalEmail != nil && *r.PersonalEmail != "" && !validator.IsValidEmail(strings.TrimSpace(*r.PersonalEmail)) {
		errs.Add("personalEmail", "invalid email format")
	}
	if r.Role != nil {
		if _, ok := user.ParseRole(*r.Role); !ok {
			errs.Add("role", "role must be one of ADMIN_MASTER, ADMIN, MANAGER, EMPLOYEE")
		}
	}
	if r.Phone != nil && *r.Phone != "" && !validator.IsValidPhoneNumber(*r.Phone) {
		errs.Add("phone", "invalid phone number")
	}
	if r.LeaveBalance != nil && *r.LeaveBalance < 0 {
		errs.Add("leaveBalance", "leave balance cannot be negative")
	}
	if r.Status != nil && !Status(*r.Status).IsValid() {
		errs.Add("status", "status must be Active or Inactive")
	}
	if r.ReportingTo != nil && *r.ReportingTo != "" && !validator.IsValidUUID(*r.ReportingTo) {
		errs.Add("reportingTo", "reportingTo must be a valid ID")
	}
	if r.AssignedAdminID != nil && *r.AssignedAdminID != "" && !validator.IsValidUUID(*r.AssignedAdminID) {
		errs.Add("assignedAdminId", "assignedAdminId must be a valid ID")
	}

	return errs.OrNil()
}

type EmployeeFilter struct {
	Search     string
	Role       string
	Department string
	Status     string
	ManagerID  string
	Page       int
	Limit      int
	Skip       int
	SortBy     string
	SortOrder  string

	// Resolved by Validate
	Window validator.Page
}

var EmployeeSortFields = []string{"name", "email", "department", "leave_balance", "created_at"}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Role != "" {
		if r, ok := user.ParseRole(f.Role); ok {
			f.Role = string(r)
		} else {
			errs.Add("role", "invalid role")
		}
	}
	if f.Status != "" && !Status(f.Status).IsValid() {
		errs.Add("status", "status must be Active or Inactive")
	}
	if f.ManagerID != "" && !validator.IsValidUUID(f.ManagerID) {
		errs.Add("manager_id", "invalid manager id")
	}
	if f.SortBy == "" {
		f.SortBy = "name"
	} else if !validator.IsInSlice(f.SortBy, EmployeeSortFields) {
		errs.Add("sort_by", "sort_by must be one of "+strings.Join(EmployeeSortFields, ", "))
	}
	if f.SortOrder == "" {
		f.SortOrder = "asc"
	} else if order, ok := validator.ParseSortOrder(f.SortOrder); ok {
		f.SortOrder = order
	} else {
		errs.Add("order", "order must be asc or desc")
	}

	f.Window = validator.ResolvePage(f.Page, f.Limit, f.Skip)
	return errs.OrNil()
}

type ListEmployeeResponse struct {
	Employees []EmployeeResponse
	Total     int64
	Page      int
	Limit     int
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
