package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/leave"
)

type leaveRequestRepository struct {
	s *Store
}

func (s *Store) LeaveRequests() leave.LeaveRequestRepository {
	return &leaveRequestRepository{s: s}
}

// withEmployee fills the joined employee name. Callers hold s.mu.
func (r *leaveRequestRepository) withEmployee(lr leave.LeaveRequest) leave.LeaveRequest {
	if e, ok := r.s.employees[lr.EmployeeID]; ok {
		lr.EmployeeName = e.Name
	}
	return lr
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lr, ok := r.s.leave[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r.withEmployee(lr), nil
}

func (r *leaveRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(filter.Search)
	matched := []leave.LeaveRequest{}
	for _, lr := range r.s.leave {
		subject := r.s.employees[lr.EmployeeID]
		if !filter.Visibility.Allows(lr.EmployeeID, subject.ManagerID) {
			continue
		}
		if filter.EmployeeID != "" && lr.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && string(lr.Status) != filter.Status {
			continue
		}
		if filter.Type != "" && string(lr.Type) != filter.Type {
			continue
		}
		if filter.From != nil && lr.EndDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && lr.StartDate.After(*filter.To) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(subject.Name+" "+lr.Reason), search) {
			continue
		}
		matched = append(matched, r.withEmployee(lr))
	}

	sort.Slice(matched, func(i, j int) bool {
		var less bool
		switch filter.SortBy {
		case "start_date":
			less = matched[i].StartDate.Before(matched[j].StartDate)
		case "days_requested":
			less = matched[i].DaysRequested < matched[j].DaysRequested
		case "status":
			less = matched[i].Status < matched[j].Status
		default:
			less = matched[i].AppliedAt.Before(matched[j].AppliedAt)
		}
		if filter.SortOrder == "desc" {
			return !less
		}
		return less
	})

	return page(matched, filter.Window.Offset, filter.Window.Limit), int64(len(matched)), nil
}

func (r *leaveRequestRepository) HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, lr := range r.s.leave {
		if lr.EmployeeID != employeeID || lr.ID == excludeID || lr.Status == approval.StatusRejected {
			continue
		}
		if !lr.StartDate.After(end) && !lr.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *leaveRequestRepository) Create(ctx context.Context, lr leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if lr.ID == "" {
		lr.ID = newID()
	}
	if lr.AppliedAt.IsZero() {
		lr.AppliedAt = time.Now()
	}
	lr.BalanceDeducted = false
	lr.UpdatedAt = lr.AppliedAt
	r.s.leave[lr.ID] = lr
	return r.withEmployee(lr), nil
}

func (r *leaveRequestRepository) Update(ctx context.Context, lr leave.LeaveRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.leave[lr.ID]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	lr.EmployeeID = current.EmployeeID
	lr.AppliedAt = current.AppliedAt
	lr.UpdatedAt = time.Now()
	r.s.leave[lr.ID] = lr
	return nil
}

func (r *leaveRequestRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.leave[id]; !ok {
		return leave.ErrLeaveRequestNotFound
	}
	delete(r.s.leave, id)
	return nil
}
