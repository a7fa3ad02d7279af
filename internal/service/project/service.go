package project

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/project"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
)

type ProposalServiceImpl struct {
	tx database.Transactor
	project.ProposalRepository
	employee.EmployeeRepository
	notifier notification.ApprovalNotifier
	now      func() time.Time
}

func NewProposalService(tx database.Transactor, proposalRepository project.ProposalRepository, employeeRepository employee.EmployeeRepository, notifier notification.ApprovalNotifier) project.ProposalService {
	return &ProposalServiceImpl{
		tx:                 tx,
		ProposalRepository: proposalRepository,
		EmployeeRepository: employeeRepository,
		notifier:           notifier,
		now:                time.Now,
	}
}

func (s *ProposalServiceImpl) List(ctx context.Context, actor user.Principal, filter project.ProposalFilter) (project.ListProposalResponse, error) {
	if !actor.Can(user.PermissionProjectView) {
		return project.ListProposalResponse{}, user.ErrInsufficientPermissions
	}
	if err := filter.Validate(); err != nil {
		return project.ListProposalResponse{}, err
	}
	filter.ViewerID = actor.EmployeeID
	filter.ViewAll = actor.Can(user.PermissionProjectViewAll)

	proposals, total, err := s.ProposalRepository.List(ctx, filter)
	if err != nil {
		return project.ListProposalResponse{}, fmt.Errorf("failed to list project proposals: %w", err)
	}

	responses := make([]project.ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		responses = append(responses, project.NewProposalResponse(p))
	}
	return project.ListProposalResponse{
		Proposals: responses,
		Total:     total,
		Page:      filter.Window.Page,
		Limit:     filter.Window.Limit,
	}, nil
}

func (s *ProposalServiceImpl) Get(ctx context.Context, actor user.Principal, id string) (project.ProposalResponse, error) {
	p, err := s.ProposalRepository.GetByID(ctx, id)
	if err != nil {
		return project.ProposalResponse{}, fmt.Errorf("failed to get project proposal: %w", err)
	}
	if !canSee(actor, p) {
		return project.ProposalResponse{}, project.ErrProposalNotVisible
	}
	return project.NewProposalResponse(p), nil
}

func canSee(actor user.Principal, p project.Proposal) bool {
	return actor.Can(user.PermissionProjectViewAll) || p.ProposedBy == actor.EmployeeID || p.Includes(actor.EmployeeID)
}

func (s *ProposalServiceImpl) Create(ctx context.Context, actor user.Principal, req project.CreateProposalRequest) (project.ProposalResponse, error) {
	if !actor.Can(user.PermissionProjectPropose) {
		return project.ProposalResponse{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return project.ProposalResponse{}, err
	}

	var created project.Proposal
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		members, err := s.EmployeeRepository.GetByIDs(txCtx, req.EmployeeIDs)
		if err != nil {
			return fmt.Errorf("failed to get project members: %w", err)
		}
		if len(members) != len(req.EmployeeIDs) {
			return project.ErrUnknownMembers
		}

		created, err = s.ProposalRepository.Create(txCtx, project.Proposal{
			Title:       req.Title,
			Description: req.Description,
			ProposedBy:  actor.EmployeeID,
			EmployeeIDs: req.EmployeeIDs,
			Status:      approval.AdminSignOff.Initial(),
		})
		if err != nil {
			return fmt.Errorf("failed to create project proposal: %w", err)
		}
		return nil
	})
	if err != nil {
		return project.ProposalResponse{}, err
	}

	if s.notifier != nil {
		s.notifier.ProjectProposed(ctx, created.ID, actor.EmployeeID, created.Title)
	}
	return project.NewProposalResponse(created), nil
}

func (s *ProposalServiceImpl) Approve(ctx context.Context, actor user.Principal, id string) (project.ProposalResponse, error) {
	if !actor.Can(user.PermissionProjectApprove) {
		return project.ProposalResponse{}, user.ErrInsufficientPermissions
	}

	var approved project.Proposal
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		p, err := s.ProposalRepository.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get project proposal: %w", err)
		}

		next, err := approval.AdminSignOff.Decide(p.Status, approval.ActionApprove,
			approval.Actor{EmployeeID: actor.EmployeeID, Role: actor.Role},
			approval.Subject{EmployeeID: p.ProposedBy},
		)
		if err != nil {
			return err
		}

		at := s.now()
		p.Status = next
		p.ApprovedBy = &actor.EmployeeID
		p.ApprovedAt = &at
		if err := s.ProposalRepository.UpdateStatus(txCtx, p); err != nil {
			return fmt.Errorf("failed to update project proposal: %w", err)
		}
		approved = p
		return nil
	})
	if err != nil {
		return project.ProposalResponse{}, err
	}

	if s.notifier != nil {
		recipients := append([]string{approved.ProposedBy}, approved.EmployeeIDs...)
		s.notifier.ProjectApproved(ctx, approved.ID, actor.EmployeeID, recipients, approved.Title)
	}
	return project.NewProposalResponse(approved), nil
}

// Delete lets the proposer withdraw a pending proposal; admins may remove any.
func (s *ProposalServiceImpl) Delete(ctx context.Context, actor user.Principal, id string) error {
	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		p, err := s.ProposalRepository.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get project proposal: %w", err)
		}

		isAdmin := actor.Can(user.PermissionProjectApprove)
		if !isAdmin {
			if !canSee(actor, p) {
				return project.ErrProposalNotVisible
			}
			if p.ProposedBy != actor.EmployeeID || !p.Status.IsPending() {
				return project.ErrProposalNotDeletable
			}
		}

		if err := s.ProposalRepository.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete project proposal: %w", err)
		}
		return nil
	})
}
