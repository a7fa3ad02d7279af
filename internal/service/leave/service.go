package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
)

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	notifier notification.ApprovalNotifier
	now      func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	leaveRequestRepository leave.LeaveRequestRepository,
	employeeRepository employee.EmployeeRepository,
	notifier notification.ApprovalNotifier,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                     tx,
		LeaveRequestRepository: leaveRequestRepository,
		EmployeeRepository:     employeeRepository,
		notifier:               notifier,
		now:                    time.Now,
	}
}

// List implements leave.LeaveService.
func (s *LeaveServiceImpl) List(ctx context.Context, actor user.Principal, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveResponse{}, err
	}
	filter.Visibility = user.VisibilityFor(actor, user.PermissionLeaveViewAll, user.PermissionLeaveViewTeam)

	requests, total, err := s.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.NewLeaveResponse(r))
	}

	return leave.ListLeaveResponse{
		Requests: responses,
		Total:    total,
		Page:     filter.Window.Page,
		Limit:    filter.Window.Limit,
	}, nil
}

// Get implements leave.LeaveService.
func (s *LeaveServiceImpl) Get(ctx context.Context, actor user.Principal, id string) (leave.LeaveResponse, error) {
	request, err := s.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	if err := s.checkVisible(ctx, actor, request.EmployeeID); err != nil {
		return leave.LeaveResponse{}, err
	}
	return leave.NewLeaveResponse(request), nil
}

// Create implements leave.LeaveService.
func (s *LeaveServiceImpl) Create(ctx context.Context, actor user.Principal, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	employeeID := actor.EmployeeID
	if req.EmployeeID != nil && *req.EmployeeID != "" && *req.EmployeeID != actor.EmployeeID {
		if !actor.Can(user.PermissionLeaveCreateOthers) {
			return leave.LeaveResponse{}, leave.ErrCannotApplyForOthers
		}
		employeeID = *req.EmployeeID
	}

	var created leave.LeaveRequest
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// the employee row lock serializes submissions so the overlap check holds
		emp, err := s.EmployeeRepository.GetByIDForUpdate(txCtx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}

		days := leave.DaysRequested(req.Start, req.End)
		if days > emp.LeaveBalance {
			return leave.ErrInsufficientLeaveBalance
		}

		overlap, err := s.LeaveRequestRepository.HasOverlap(txCtx, emp.ID, req.Start, req.End, "")
		if err != nil {
			return fmt.Errorf("failed to check overlapping leave: %w", err)
		}
		if overlap {
			return leave.ErrOverlappingLeave
		}

		created, err = s.LeaveRequestRepository.Create(txCtx, leave.LeaveRequest{
			EmployeeID:    emp.ID,
			Type:          leave.LeaveType(req.Type),
			StartDate:     req.Start,
			EndDate:       req.End,
			DaysRequested: days,
			Reason:        req.Reason,
			Status:        approval.TwoStep.Initial(),
			AppliedAt:     s.now(),
		})
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		created.EmployeeName = emp.Name
		return nil
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	s.notify(ctx, created, actor.EmployeeID, nil)
	return leave.NewLeaveResponse(created), nil
}

// Update implements leave.LeaveService.
func (s *LeaveServiceImpl) Update(ctx context.Context, actor user.Principal, id string, req leave.UpdateLeaveRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	var updated leave.LeaveRequest
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.LeaveRequestRepository.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get leave request: %w", err)
		}
		if request.EmployeeID != actor.EmployeeID && !actor.Can(user.PermissionLeaveManage) {
			return leave.ErrNotRequestOwner
		}
		if request.Status != approval.StatusPendingManager {
			return leave.ErrLeaveNotEditable
		}

		if err := req.Apply(&request); err != nil {
			return err
		}

		emp, err := s.EmployeeRepository.GetByIDForUpdate(txCtx, request.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}
		if request.DaysRequested > emp.LeaveBalance {
			return leave.ErrInsufficientLeaveBalance
		}

		overlap, err := s.LeaveRequestRepository.HasOverlap(txCtx, request.EmployeeID, request.StartDate, request.EndDate, request.ID)
		if err != nil {
			return fmt.Errorf("failed to check overlapping leave: %w", err)
		}
		if overlap {
			return leave.ErrOverlappingLeave
		}

		request.UpdatedAt = s.now()
		if err := s.LeaveRequestRepository.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		updated = request
		return nil
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	return leave.NewLeaveResponse(updated), nil
}

// Delete implements leave.LeaveService.
func (s *LeaveServiceImpl) Delete(ctx context.Context, actor user.Principal, id string) error {
	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.LeaveRequestRepository.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get leave request: %w", err)
		}
		if request.EmployeeID != actor.EmployeeID && !actor.Can(user.PermissionLeaveManage) {
			return leave.ErrNotRequestOwner
		}
		if !request.Status.IsPending() {
			return leave.ErrLeaveNotDeletable
		}
		if err := s.LeaveRequestRepository.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete leave request: %w", err)
		}
		return nil
	})
}

// Approve implements leave.LeaveService.
func (s *LeaveServiceImpl) Approve(ctx context.Context, actor user.Principal, id string) (leave.LeaveResponse, error) {
	return s.decide(ctx, actor, id, approval.ActionApprove, nil)
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, actor user.Principal, id string, req approval.DecisionRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}
	return s.decide(ctx, actor, id, approval.ActionReject, req.Reason)
}

// decide moves the request one stage. The leave row is locked before the
// employee row, on every path, so concurrent deciders queue instead of
// deadlocking; the second one sees the first one's status.
func (s *LeaveServiceImpl) decide(ctx context.Context, actor user.Principal, id string, action approval.Action, reason *string) (leave.LeaveResponse, error) {
	var decided leave.LeaveRequest
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.LeaveRequestRepository.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get leave request: %w", err)
		}
		emp, err := s.EmployeeRepository.GetByIDForUpdate(txCtx, request.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}

		next, err := approval.TwoStep.Decide(
			request.Status,
			action,
			approval.Actor{EmployeeID: actor.EmployeeID, Role: actor.Role},
			approval.Subject{EmployeeID: emp.ID, ManagerID: emp.ManagerID},
		)
		if err != nil {
			return err
		}

		now := s.now()
		if approval.EntersApproved(request.Status, next) && !request.BalanceDeducted {
			if emp.LeaveBalance < request.DaysRequested {
				return leave.ErrInsufficientLeaveBalance
			}
			if _, err := s.EmployeeRepository.AdjustLeaveBalance(txCtx, emp.ID, -request.DaysRequested); err != nil {
				return fmt.Errorf("failed to deduct leave balance: %w", err)
			}
			request.BalanceDeducted = true
		}

		request.Trail.Record(request.Status, next, actor.EmployeeID, now, reason)
		request.Status = next
		request.UpdatedAt = now
		request.EmployeeName = emp.Name
		if err := s.LeaveRequestRepository.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		decided = request
		return nil
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	s.notify(ctx, decided, actor.EmployeeID, reason)
	return leave.NewLeaveResponse(decided), nil
}

func (s *LeaveServiceImpl) notify(ctx context.Context, r leave.LeaveRequest, actorID string, reason *string) {
	if s.notifier == nil {
		return
	}
	s.notifier.ApprovalChanged(ctx, notification.ApprovalNotice{
		Item:      notification.ItemLeave,
		ItemID:    r.ID,
		SubjectID: r.EmployeeID,
		ActorID:   actorID,
		Status:    r.Status,
		Reason:    reason,
		Summary: fmt.Sprintf("%s leave %s to %s (%d day(s))",
			r.Type, r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"), r.DaysRequested),
	})
}

func (s *LeaveServiceImpl) checkVisible(ctx context.Context, actor user.Principal, subjectID string) error {
	vis := user.VisibilityFor(actor, user.PermissionLeaveViewAll, user.PermissionLeaveViewTeam)
	var managerID *string
	if vis.Scope == user.ScopeTeam && subjectID != actor.EmployeeID {
		id, err := s.EmployeeRepository.GetManagerID(ctx, subjectID)
		if err != nil {
			return fmt.Errorf("failed to get manager: %w", err)
		}
		managerID = id
	}
	if !vis.Allows(subjectID, managerID) {
		return user.ErrInsufficientPermissions
	}
	return nil
}
