package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/holiday"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

const holidayColumns = `id, name, date, type, description, created_by, created_at, updated_at`

func scanHoliday(row pgx.Row) (holiday.Holiday, error) {
	var h holiday.Holiday
	err := row.Scan(&h.ID, &h.Name, &h.Date, &h.Type, &h.Description, &h.CreatedBy, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

func (r *holidayRepositoryImpl) GetByID(ctx context.Context, id string) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	h, err := scanHoliday(q.QueryRow(ctx, "SELECT "+holidayColumns+" FROM holidays WHERE id = $1", id))
	if err != nil {
		if isNotFound(err) {
			return holiday.Holiday{}, holiday.ErrHolidayNotFound
		}
		return holiday.Holiday{}, fmt.Errorf("failed to get holiday: %w", err)
	}
	return h, nil
}

func (r *holidayRepositoryImpl) List(ctx context.Context, filter holiday.HolidayFilter) ([]holiday.Holiday, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.Year != 0 {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM date) = $%d", argIdx))
		args = append(args, filter.Year)
		argIdx++
	}
	if filter.Month != 0 {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(MONTH FROM date) = $%d", argIdx))
		args = append(args, filter.Month)
		argIdx++
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, filter.Type)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM holidays WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count holidays: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM holidays WHERE %s ORDER BY date LIMIT $%d OFFSET $%d",
		holidayColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Window.Limit, filter.Window.Offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	holidays := []holiday.Holiday{}
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return holidays, total, nil
}

func (r *holidayRepositoryImpl) DatesBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT date FROM holidays WHERE date BETWEEN $1 AND $2 ORDER BY date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holiday dates: %w", err)
	}
	defer rows.Close()

	dates := []time.Time{}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan holiday date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *holidayRepositoryImpl) CountFrom(ctx context.Context, from time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM holidays WHERE date >= $1`, from).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count holidays: %w", err)
	}
	return count, nil
}

func (r *holidayRepositoryImpl) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	if h.ID == "" {
		h.ID = newID()
	}
	err := q.QueryRow(ctx, `
		INSERT INTO holidays (id, name, date, type, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`, h.ID, h.Name, h.Date, h.Type, h.Description, h.CreatedBy).Scan(&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "holidays_date_key") {
			return holiday.Holiday{}, holiday.ErrHolidayExists
		}
		return holiday.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return h, nil
}

func (r *holidayRepositoryImpl) Update(ctx context.Context, h holiday.Holiday) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE holidays SET name = $2, date = $3, type = $4, description = $5, updated_at = NOW()
		WHERE id = $1
	`, h.ID, h.Name, h.Date, h.Type, h.Description)
	if err != nil {
		if isUniqueViolation(err, "holidays_date_key") {
			return holiday.ErrHolidayExists
		}
		return fmt.Errorf("failed to update holiday: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}

func (r *holidayRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}
