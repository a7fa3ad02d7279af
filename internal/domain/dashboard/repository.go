package dashboard

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

// DailyCounts combines the headline counts for one day in a single query
type DailyCounts struct {
	Employees     int64
	Present       int64
	Late          int64
	OnLeave       int64
	PendingLeaves int64
}

// PersonalStats is the caller's own month summary
type PersonalStats struct {
	LeaveBalance    int
	PresentDays     int64
	LateDays        int64
	PendingRequests int64
}

// TeamStats covers a manager's direct reports
type TeamStats struct {
	TeamSize       int64
	PendingLeave   int64
	PendingRecords int64
}

// AdminStats is the company-wide second-stage queue
type AdminStats struct {
	PendingLeave     int64
	PendingRecords   int64
	PendingProposals int64
}

type DashboardRepository interface {
	// GetDailyCounts counts active employees, clock-ins and approved leave
	// covering day, restricted to what vis may see.
	GetDailyCounts(ctx context.Context, vis user.Visibility, day time.Time) (DailyCounts, error)

	// GetPersonalStats summarizes [from, to] for one employee.
	GetPersonalStats(ctx context.Context, employeeID string, from, to time.Time) (PersonalStats, error)

	GetTeamStats(ctx context.Context, managerID string) (TeamStats, error)
	GetAdminStats(ctx context.Context) (AdminStats, error)
}
