package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.clock_in, a.clock_out, a.status, a.approval_status,
	a.manager_reviewer_id, a.manager_reviewed_at, a.admin_reviewer_id, a.admin_reviewed_at, a.rejection_reason,
	a.is_confirmed, a.confirmed_at, a.created_at, a.updated_at,
	e.name AS employee_name, e.manager_id AS employee_manager,
	(SELECT COUNT(*) FROM attendance_entries ae WHERE ae.record_id = a.id) AS entries_count`

const attendanceFrom = `
	FROM attendance_records a
	JOIN employees e ON a.employee_id = e.id`

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var r attendance.Record
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Date, &r.ClockIn, &r.ClockOut, &r.Status, &r.ApprovalStatus,
		&r.Trail.ManagerReviewerID, &r.Trail.ManagerReviewedAt, &r.Trail.AdminReviewerID, &r.Trail.AdminReviewedAt, &r.Trail.RejectionReason,
		&r.IsConfirmed, &r.ConfirmedAt, &r.CreatedAt, &r.UpdatedAt,
		&r.EmployeeName, &r.EmployeeManager,
		&r.EntriesCount,
	)
	return r, err
}

func (r *attendanceRepositoryImpl) getOne(ctx context.Context, where string, args ...interface{}) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + attendanceColumns + attendanceFrom + " WHERE " + where
	rec, err := scanRecord(q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNotFound(err) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return rec, nil
}

func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	return r.getOne(ctx, "a.id = $1", id)
}

func (r *attendanceRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (attendance.Record, error) {
	return r.getOne(ctx, "a.id = $1 FOR UPDATE OF a", id)
}

func (r *attendanceRepositoryImpl) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	return r.getOne(ctx, "a.employee_id = $1 AND a.date = $2 FOR UPDATE OF a", employeeID, date)
}

func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, r.db)

	visCond, args, argIdx := visibilityCondition(filter.Visibility, "a.employee_id", "e.manager_id", 1)
	conditions := []string{visCond}

	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", argIdx))
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.ApprovalStatus != "" {
		conditions = append(conditions, fmt.Sprintf("a.approval_status = $%d", argIdx))
		args = append(args, filter.ApprovalStatus)
		argIdx++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("e.name ILIKE $%d", argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*)" + attendanceFrom + " WHERE " + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	sortColumns := make(map[string]string, len(attendance.AttendanceSortFields))
	for k, col := range attendance.AttendanceSortFields {
		sortColumns[k] = "a." + col
	}
	query := "SELECT " + attendanceColumns + attendanceFrom + " WHERE " + whereClause +
		orderClause(filter.SortBy, filter.SortOrder, sortColumns, "a.date") +
		fmt.Sprintf(" NULLS LAST, e.name LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Window.Limit, filter.Window.Offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	records := []attendance.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *attendanceRepositoryImpl) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	if rec.ID == "" {
		rec.ID = newID()
	}
	query := `
		INSERT INTO attendance_records (
			id, employee_id, date, clock_in, clock_out, status, approval_status,
			is_confirmed, confirmed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		rec.ID, rec.EmployeeID, rec.Date, rec.ClockIn, rec.ClockOut, rec.Status, rec.ApprovalStatus,
		rec.IsConfirmed, rec.ConfirmedAt,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "attendance_records_employee_date_key") {
			return attendance.Record{}, attendance.ErrAttendanceExists
		}
		if isCheckViolation(err, "attendance_clock_order") {
			return attendance.Record{}, attendance.ErrClockOutBeforeClockIn
		}
		if isForeignKeyViolation(err) {
			return attendance.Record{}, fmt.Errorf("failed to create attendance record: unknown employee: %w", err)
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return rec, nil
}

func (r *attendanceRepositoryImpl) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records SET
			date = $2, clock_in = $3, clock_out = $4, status = $5, approval_status = $6,
			manager_reviewer_id = $7, manager_reviewed_at = $8,
			admin_reviewer_id = $9, admin_reviewed_at = $10, rejection_reason = $11,
			is_confirmed = $12, confirmed_at = $13,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		rec.ID, rec.Date, rec.ClockIn, rec.ClockOut, rec.Status, rec.ApprovalStatus,
		rec.Trail.ManagerReviewerID, rec.Trail.ManagerReviewedAt,
		rec.Trail.AdminReviewerID, rec.Trail.AdminReviewedAt, rec.Trail.RejectionReason,
		rec.IsConfirmed, rec.ConfirmedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "attendance_records_employee_date_key") {
			return attendance.ErrAttendanceExists
		}
		if isCheckViolation(err, "attendance_clock_order") {
			return attendance.ErrClockOutBeforeClockIn
		}
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

func (r *attendanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

func (r *attendanceRepositoryImpl) CreateEntry(ctx context.Context, entry attendance.Entry) (attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = newID()
	}
	err := q.QueryRow(ctx, `
		INSERT INTO attendance_entries (id, record_id, type, timestamp, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`, entry.ID, entry.RecordID, entry.Type, entry.Timestamp, entry.Reason).Scan(&entry.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return attendance.Entry{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Entry{}, fmt.Errorf("failed to create attendance entry: %w", err)
	}
	return entry, nil
}

func (r *attendanceRepositoryImpl) ListEntries(ctx context.Context, recordID string) ([]attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, record_id, type, timestamp, reason, created_at
		FROM attendance_entries
		WHERE record_id = $1
		ORDER BY timestamp, created_at
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance entries: %w", err)
	}
	defer rows.Close()

	entries := []attendance.Entry{}
	for rows.Next() {
		var e attendance.Entry
		if err := rows.Scan(&e.ID, &e.RecordID, &e.Type, &e.Timestamp, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *attendanceRepositoryImpl) GetEntry(ctx context.Context, recordID, entryID string) (attendance.Entry, error) {
	q := GetQuerier(ctx, r.db)

	var e attendance.Entry
	err := q.QueryRow(ctx, `
		SELECT id, record_id, type, timestamp, reason, created_at
		FROM attendance_entries
		WHERE id = $1 AND record_id = $2
	`, entryID, recordID).Scan(&e.ID, &e.RecordID, &e.Type, &e.Timestamp, &e.Reason, &e.CreatedAt)
	if err != nil {
		if isNotFound(err) {
			return attendance.Entry{}, attendance.ErrEntryNotFound
		}
		return attendance.Entry{}, fmt.Errorf("failed to get attendance entry: %w", err)
	}
	return e, nil
}

func (r *attendanceRepositoryImpl) DeleteEntry(ctx context.Context, entryID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_entries WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete attendance entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrEntryNotFound
	}
	return nil
}
