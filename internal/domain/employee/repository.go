package employee

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Employee, error)
	GetByEmail(ctx context.Context, email string) (Employee, error)
	GetByIDs(ctx context.Context, ids []string) ([]Employee, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	ListByRoles(ctx context.Context, roles []user.Role) ([]Employee, error)
	CountDirectReports(ctx context.Context, managerID string) (int64, error)

	Create(ctx context.Context, e Employee) (Employee, error)
	Update(ctx context.Context, e Employee) error
	Delete(ctx context.Context, id string) error

	GetManagerID(ctx context.Context, id string) (*string, error)
	// LockHierarchy serializes reporting-line changes for the current transaction.
	LockHierarchy(ctx context.Context) error

	// AdjustLeaveBalance adds delta to the balance and returns the new value.
	AdjustLeaveBalance(ctx context.Context, id string, delta int) (int, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
}
