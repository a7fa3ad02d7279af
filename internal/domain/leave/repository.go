package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, int64, error)
	// HasOverlap reports a non-rejected request of the employee intersecting [start, end].
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error)
	Create(ctx context.Context, r LeaveRequest) (LeaveRequest, error)
	Update(ctx context.Context, r LeaveRequest) error
	Delete(ctx context.Context, id string) error
}
