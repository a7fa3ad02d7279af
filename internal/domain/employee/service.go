package employee

import (
	"context"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

// EmployeeService defines business logic for the /users resource
type EmployeeService interface {
	List(ctx context.Context, actor user.Principal, filter EmployeeFilter) (ListEmployeeResponse, error)
	Get(ctx context.Context, actor user.Principal, id string) (EmployeeResponse, error)

	// Create is admin only; only ADMIN_MASTER may create admin accounts.
	Create(ctx context.Context, actor user.Principal, req CreateEmployeeRequest) (CreateEmployeeResponse, error)

	// Update lets admins change anything and users edit their own contact fields.
	Update(ctx context.Context, actor user.Principal, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)

	Delete(ctx context.Context, actor user.Principal, id string) error
}
