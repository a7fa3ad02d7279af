package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/dashboard"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// GetDailyCounts returns employee, clock-in, on-leave and pending-leave counts
// for one day in two queries.
func (r *dashboardRepositoryImpl) GetDailyCounts(ctx context.Context, vis user.Visibility, day time.Time) (dashboard.DailyCounts, error) {
	q := GetQuerier(ctx, r.db)

	visCond, args, argIdx := visibilityCondition(vis, "e.id", "e.manager_id", 1)

	query := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE a.status = 'Present'),
			COUNT(*) FILTER (WHERE a.status = 'Late'),
			COUNT(*) FILTER (WHERE EXISTS (
				SELECT 1 FROM leave_requests lr
				WHERE lr.employee_id = e.id AND lr.status = 'Approved'
				  AND lr.start_date <= $%d AND lr.end_date >= $%d
			))
		FROM employees e
		LEFT JOIN attendance_records a ON a.employee_id = e.id AND a.date = $%d
		WHERE e.status = 'Active' AND %s
	`, argIdx, argIdx, argIdx, visCond)

	var stats dashboard.DailyCounts
	err := q.QueryRow(ctx, query, append(args, day)...).Scan(&stats.Employees, &stats.Present, &stats.Late, &stats.OnLeave)
	if err != nil {
		return dashboard.DailyCounts{}, fmt.Errorf("failed to get daily counts: %w", err)
	}

	visCond, args, _ = visibilityCondition(vis, "lr.employee_id", "e.manager_id", 1)
	pendingQuery := `
		SELECT COUNT(*)
		FROM leave_requests lr
		JOIN employees e ON lr.employee_id = e.id
		WHERE lr.status IN ('Pending_Manager', 'Pending_Admin') AND ` + visCond
	if err := q.QueryRow(ctx, pendingQuery, args...).Scan(&stats.PendingLeaves); err != nil {
		return dashboard.DailyCounts{}, fmt.Errorf("failed to count pending leave: %w", err)
	}

	return stats, nil
}

func (r *dashboardRepositoryImpl) GetPersonalStats(ctx context.Context, employeeID string, from, to time.Time) (dashboard.PersonalStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			e.leave_balance,
			(SELECT COUNT(*) FROM attendance_records a
			 WHERE a.employee_id = e.id AND a.date BETWEEN $2 AND $3 AND a.status = 'Present'),
			(SELECT COUNT(*) FROM attendance_records a
			 WHERE a.employee_id = e.id AND a.date BETWEEN $2 AND $3 AND a.status = 'Late'),
			(SELECT COUNT(*) FROM leave_requests lr
			 WHERE lr.employee_id = e.id AND lr.status IN ('Pending_Manager', 'Pending_Admin'))
			+ (SELECT COUNT(*) FROM attendance_records a
			 WHERE a.employee_id = e.id AND a.approval_status IN ('Pending_Manager', 'Pending_Admin'))
		FROM employees e
		WHERE e.id = $1
	`
	var stats dashboard.PersonalStats
	err := q.QueryRow(ctx, query, employeeID, from, to).Scan(
		&stats.LeaveBalance, &stats.PresentDays, &stats.LateDays, &stats.PendingRequests,
	)
	if err != nil {
		if isNotFound(err) {
			return dashboard.PersonalStats{}, employee.ErrEmployeeNotFound
		}
		return dashboard.PersonalStats{}, fmt.Errorf("failed to get personal stats: %w", err)
	}
	return stats, nil
}

func (r *dashboardRepositoryImpl) GetTeamStats(ctx context.Context, managerID string) (dashboard.TeamStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			(SELECT COUNT(*) FROM employees WHERE manager_id = $1 AND status = 'Active'),
			(SELECT COUNT(*) FROM leave_requests lr JOIN employees e ON lr.employee_id = e.id
			 WHERE e.manager_id = $1 AND lr.status = 'Pending_Manager'),
			(SELECT COUNT(*) FROM attendance_records a JOIN employees e ON a.employee_id = e.id
			 WHERE e.manager_id = $1 AND a.approval_status = 'Pending_Manager')
	`
	var stats dashboard.TeamStats
	if err := q.QueryRow(ctx, query, managerID).Scan(&stats.TeamSize, &stats.PendingLeave, &stats.PendingRecords); err != nil {
		return dashboard.TeamStats{}, fmt.Errorf("failed to get team stats: %w", err)
	}
	return stats, nil
}

func (r *dashboardRepositoryImpl) GetAdminStats(ctx context.Context) (dashboard.AdminStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			(SELECT COUNT(*) FROM leave_requests WHERE status = 'Pending_Admin'),
			(SELECT COUNT(*) FROM attendance_records WHERE approval_status = 'Pending_Admin'),
			(SELECT COUNT(*) FROM project_proposals WHERE status = 'Pending_Admin')
	`
	var stats dashboard.AdminStats
	if err := q.QueryRow(ctx, query).Scan(&stats.PendingLeave, &stats.PendingRecords, &stats.PendingProposals); err != nil {
		return dashboard.AdminStats{}, fmt.Errorf("failed to get admin stats: %w", err)
	}
	return stats, nil
}
