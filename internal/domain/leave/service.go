package leave

import (
	"context"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

type LeaveService interface {
	List(ctx context.Context, actor user.Principal, filter LeaveFilter) (ListLeaveResponse, error)
	Get(ctx context.Context, actor user.Principal, id string) (LeaveResponse, error)
	Create(ctx context.Context, actor user.Principal, req CreateLeaveRequest) (LeaveResponse, error)
	Update(ctx context.Context, actor user.Principal, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Delete(ctx context.Context, actor user.Principal, id string) error

	// Approve advances the request one stage; entering Approved deducts the
	// balance in the same transaction.
	Approve(ctx context.Context, actor user.Principal, id string) (LeaveResponse, error)
	Reject(ctx context.Context, actor user.Principal, id string, req approval.DecisionRequest) (LeaveResponse, error)
}
