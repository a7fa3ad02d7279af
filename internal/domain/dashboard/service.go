package dashboard

import (
	"context"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

type DashboardService interface {
	// Stats runs the role's queries in parallel and merges them.
	Stats(ctx context.Context, actor user.Principal, req StatsRequest) (StatsResponse, error)
}
