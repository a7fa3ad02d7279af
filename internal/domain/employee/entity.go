package employee

import (
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Employee is both the login identity and the HR record.
type Employee struct {
	ID              string
	Name            string
	Email           string
	PersonalEmail   *string
	PasswordHash    string
	Role            user.Role
	Department      string
	Designation     string
	Phone           string
	LeaveBalance    int
	ManagerID       *string
	AssignedAdminID *string
	Status          Status
	PasswordChanged bool
	LoginCount      int
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Join
	ManagerName *string
}

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}

// ReportsTo reports whether managerID is this employee's direct manager.
func (e Employee) ReportsTo(managerID string) bool {
	return e.ManagerID != nil && *e.ManagerID == managerID
}
