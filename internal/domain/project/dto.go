package project

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
)

type ProposalResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ProposedBy     string     `json:"proposedBy"`
	ProposedByName string     `json:"proposedByName"`
	EmployeeIDs    []string   `json:"employeeIds"`
	Status         string     `json:"status"`
	ApprovedBy     *string    `json:"approvedBy"`
	ApprovedAt     *time.Time `json:"approvedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func NewProposalResponse(p Proposal) ProposalResponse {
	ids := p.EmployeeIDs
	if ids == nil {
		ids = []string{}
	}
	return ProposalResponse{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		ProposedBy:     p.ProposedBy,
		ProposedByName: p.ProposedByName,
		EmployeeIDs:    ids,
		Status:         string(p.Status),
		ApprovedBy:     p.ApprovedBy,
		ApprovedAt:     p.ApprovedAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type CreateProposalRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	EmployeeIDs []string `json:"employeeIds"`
}

func (r *CreateProposalRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		errs.Add("title", "title is required")
	} else if len(r.Title) > 200 {
		errs.Add("title", "title must be at most 200 characters")
	}
	r.Description = strings.TrimSpace(r.Description)

	if len(r.EmployeeIDs) == 0 {
		errs.Add("employeeIds", "at least one employee is required")
	}
	seen := make(map[string]struct{}, len(r.EmployeeIDs))
	unique := r.EmployeeIDs[:0]
	for _, id := range r.EmployeeIDs {
		if !validator.IsValidUUID(id) {
			errs.Add("employeeIds", "employeeIds must contain valid IDs")
			break
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	r.EmployeeIDs = unique

	return errs.OrNil()
}

type ProposalFilter struct {
	Status string
	Page   int
	Limit  int
	Skip   int

	Window validator.Page
	// Set by the service from the caller's permissions.
	ViewerID string
	ViewAll  bool
}

func (f *ProposalFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != "" && f.Status != string(approval.StatusPendingAdmin) && f.Status != string(approval.StatusApproved) {
		errs.Add("status", "status must be Pending_Admin or Approved")
	}
	f.Window = validator.ResolvePage(f.Page, f.Limit, f.Skip)

	return errs.OrNil()
}

type ListProposalResponse struct {
	Proposals []ProposalResponse
	Total     int64
	Page      int
	Limit     int
}
