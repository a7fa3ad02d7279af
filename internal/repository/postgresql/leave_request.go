package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveColumns = `
	lr.id, lr.employee_id, lr.type, lr.start_date, lr.end_date, lr.days_requested, lr.reason, lr.status,
	lr.manager_reviewer_id, lr.manager_reviewed_at, lr.admin_reviewer_id, lr.admin_reviewed_at, lr.rejection_reason,
	lr.balance_deducted, lr.applied_at, lr.updated_at,
	e.name AS employee_name`

const leaveFrom = `
	FROM leave_requests lr
	JOIN employees e ON lr.employee_id = e.id`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var req leave.LeaveRequest
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.Type, &req.StartDate, &req.EndDate, &req.DaysRequested, &req.Reason, &req.Status,
		&req.Trail.ManagerReviewerID, &req.Trail.ManagerReviewedAt, &req.Trail.AdminReviewerID, &req.Trail.AdminReviewedAt, &req.Trail.RejectionReason,
		&req.BalanceDeducted, &req.AppliedAt, &req.UpdatedAt,
		&req.EmployeeName,
	)
	return req, err
}

func (r *leaveRequestRepositoryImpl) getOne(ctx context.Context, where string, args ...interface{}) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanLeaveRequest(q.QueryRow(ctx, "SELECT "+leaveColumns+leaveFrom+" WHERE "+where, args...))
	if err != nil {
		if isNotFound(err) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return req, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.getOne(ctx, "lr.id = $1", id)
}

// GetByIDForUpdate locks the leave row; callers lock the employee row next.
func (r *leaveRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.getOne(ctx, "lr.id = $1 FOR UPDATE OF lr", id)
}

func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	visCond, args, argIdx := visibilityCondition(filter.Visibility, "lr.employee_id", "e.manager_id", 1)
	conditions := []string{visCond}

	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("lr.employee_id = $%d", argIdx))
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("lr.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("lr.type = $%d", argIdx))
		args = append(args, filter.Type)
		argIdx++
	}
	// Date bounds select requests overlapping the window.
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("lr.end_date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("lr.start_date <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(e.name ILIKE $%d OR lr.reason ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+leaveFrom+" WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	query := "SELECT " + leaveColumns + leaveFrom + " WHERE " + whereClause +
		orderClause(filter.SortBy, filter.SortOrder, leave.LeaveSortFields, "lr.applied_at") +
		fmt.Sprintf(", lr.id LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Window.Limit, filter.Window.Offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	requests := []leave.LeaveRequest{}
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// HasOverlap ignores rejected requests.
func (r *leaveRequestRepositoryImpl) HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
			  AND status <> 'Rejected'
			  AND start_date <= $3 AND end_date >= $2
			  AND ($4 = '' OR id::text <> $4)
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, start, end, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check leave overlap: %w", err)
	}
	return exists, nil
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		request.ID = newID()
	}
	query := `
		INSERT INTO leave_requests (
			id, employee_id, type, start_date, end_date, days_requested, reason, status,
			balance_deducted, applied_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, NOW(), NOW())
		RETURNING applied_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		request.ID, request.EmployeeID, request.Type, request.StartDate, request.EndDate,
		request.DaysRequested, request.Reason, request.Status,
	).Scan(&request.AppliedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return request, nil
}

func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests SET
			type = $2, start_date = $3, end_date = $4, days_requested = $5, reason = $6, status = $7,
			manager_reviewer_id = $8, manager_reviewed_at = $9,
			admin_reviewer_id = $10, admin_reviewed_at = $11, rejection_reason = $12,
			balance_deducted = $13,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		request.ID, request.Type, request.StartDate, request.EndDate, request.DaysRequested, request.Reason, request.Status,
		request.Trail.ManagerReviewerID, request.Trail.ManagerReviewedAt,
		request.Trail.AdminReviewerID, request.Trail.AdminReviewedAt, request.Trail.RejectionReason,
		request.BalanceDeducted,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

func (r *leaveRequestRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}
