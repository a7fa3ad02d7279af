package project

import (
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
)

// Proposal is a manager's request to staff a project with employees.
// It starts in Pending_Admin and only an admin can approve it.
type Proposal struct {
	ID          string
	Title       string
	Description string
	ProposedBy  string
	EmployeeIDs []string
	Status      approval.Status
	ApprovedBy  *string
	ApprovedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Join
	ProposedByName string
}

func (p Proposal) Includes(employeeID string) bool {
	for _, id := range p.EmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}
