package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/report"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

func (r *reportRepositoryImpl) ListEmployees(ctx context.Context, vis user.Visibility) ([]report.EmployeeRef, error) {
	q := GetQuerier(ctx, r.db)

	visCond, args, _ := visibilityCondition(vis, "e.id", "e.manager_id", 1)
	rows, err := q.Query(ctx, `
		SELECT e.id, e.name, e.department
		FROM employees e
		WHERE e.status = 'Active' AND `+visCond+`
		ORDER BY e.name, e.id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list report employees: %w", err)
	}
	defer rows.Close()

	employees := []report.EmployeeRef{}
	for rows.Next() {
		var e report.EmployeeRef
		if err := rows.Scan(&e.ID, &e.Name, &e.Department); err != nil {
			return nil, fmt.Errorf("failed to scan report employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *reportRepositoryImpl) ListDayRecords(ctx context.Context, vis user.Visibility, from, to time.Time) ([]report.DayRecord, error) {
	q := GetQuerier(ctx, r.db)

	visCond, args, argIdx := visibilityCondition(vis, "a.employee_id", "e.manager_id", 1)
	query := fmt.Sprintf(`
		SELECT a.employee_id, a.date, a.status
		FROM attendance_records a
		JOIN employees e ON a.employee_id = e.id
		WHERE a.date BETWEEN $%d AND $%d AND %s
	`, argIdx, argIdx+1, visCond)

	rows, err := q.Query(ctx, query, append(args, from, to)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for report: %w", err)
	}
	defer rows.Close()

	records := []report.DayRecord{}
	for rows.Next() {
		var d report.DayRecord
		if err := rows.Scan(&d.EmployeeID, &d.Date, &d.Status); err != nil {
			return nil, fmt.Errorf("failed to scan attendance for report: %w", err)
		}
		records = append(records, d)
	}
	return records, rows.Err()
}

func (r *reportRepositoryImpl) ListApprovedLeave(ctx context.Context, vis user.Visibility, from, to time.Time) ([]report.LeaveSpan, error) {
	q := GetQuerier(ctx, r.db)

	visCond, args, argIdx := visibilityCondition(vis, "lr.employee_id", "e.manager_id", 1)
	query := fmt.Sprintf(`
		SELECT lr.employee_id, lr.start_date, lr.end_date
		FROM leave_requests lr
		JOIN employees e ON lr.employee_id = e.id
		WHERE lr.status = 'Approved' AND lr.start_date <= $%d AND lr.end_date >= $%d AND %s
	`, argIdx+1, argIdx, visCond)

	rows, err := q.Query(ctx, query, append(args, from, to)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave for report: %w", err)
	}
	defer rows.Close()

	spans := []report.LeaveSpan{}
	for rows.Next() {
		var s report.LeaveSpan
		if err := rows.Scan(&s.EmployeeID, &s.Start, &s.End); err != nil {
			return nil, fmt.Errorf("failed to scan leave for report: %w", err)
		}
		spans = append(spans, s)
	}
	return spans, rows.Err()
}

func (r *reportRepositoryImpl) GetLeaveBalanceReport(ctx context.Context, vis user.Visibility, year int) ([]report.LeaveBalanceRow, error) {
	q := GetQuerier(ctx, r.db)

	visCond, args, argIdx := visibilityCondition(vis, "e.id", "e.manager_id", 1)
	query := fmt.Sprintf(`
		SELECT e.id, e.name, e.department, e.leave_balance,
		       COALESCE(SUM(lr.days_requested) FILTER (WHERE lr.status = 'Approved'), 0),
		       COALESCE(SUM(lr.days_requested) FILTER (WHERE lr.status IN ('Pending_Manager', 'Pending_Admin')), 0)
		FROM employees e
		LEFT JOIN leave_requests lr
		  ON lr.employee_id = e.id AND EXTRACT(YEAR FROM lr.start_date) = $%d
		WHERE e.status = 'Active' AND %s
		GROUP BY e.id, e.name, e.department, e.leave_balance
		ORDER BY e.name, e.id
	`, argIdx, visCond)

	rows, err := q.Query(ctx, query, append(args, year)...)
	if err != nil {
		return nil, fmt.Errorf("failed to get leave balance report: %w", err)
	}
	defer rows.Close()

	result := []report.LeaveBalanceRow{}
	for rows.Next() {
		var row report.LeaveBalanceRow
		if err := rows.Scan(&row.EmployeeID, &row.EmployeeName, &row.Department, &row.LeaveBalance, &row.ApprovedDays, &row.PendingDays); err != nil {
			return nil, fmt.Errorf("failed to scan leave balance row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
