package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// hierarchyLockKey is the advisory lock taken while a reporting line changes.
const hierarchyLockKey = 7_201_001

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.name, e.email, e.personal_email, e.password_hash, e.role,
	e.department, e.designation, e.phone, e.leave_balance,
	e.manager_id, e.assigned_admin_id, e.status,
	e.password_changed, e.login_count, e.last_login_at,
	e.created_at, e.updated_at,
	m.name AS manager_name`

const employeeFrom = `
	FROM employees e
	LEFT JOIN employees m ON e.manager_id = m.id`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.Name, &emp.Email, &emp.PersonalEmail, &emp.PasswordHash, &emp.Role,
		&emp.Department, &emp.Designation, &emp.Phone, &emp.LeaveBalance,
		&emp.ManagerID, &emp.AssignedAdminID, &emp.Status,
		&emp.PasswordChanged, &emp.LoginCount, &emp.LastLoginAt,
		&emp.CreatedAt, &emp.UpdatedAt,
		&emp.ManagerName,
	)
	return emp, err
}

func (e *employeeRepositoryImpl) getOne(ctx context.Context, where string, args ...interface{}) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := "SELECT " + employeeColumns + employeeFrom + " WHERE " + where
	emp, err := scanEmployee(q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNotFound(err) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return e.getOne(ctx, "e.id = $1", id)
}

// GetByIDForUpdate locks only the employee row; the manager join is read as-is.
func (e *employeeRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	return e.getOne(ctx, "e.id = $1 FOR UPDATE OF e", id)
}

func (e *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return e.getOne(ctx, "LOWER(e.email) = LOWER($1)", email)
}

func (e *employeeRepositoryImpl) GetByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	if len(ids) == 0 {
		return []employee.Employee{}, nil
	}
	q := GetQuerier(ctx, e.db)

	query := "SELECT " + employeeColumns + employeeFrom + " WHERE e.id = ANY($1::uuid[]) ORDER BY e.name"
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get employees: %w", err)
	}
	return collectEmployees(rows)
}

func collectEmployees(rows pgx.Rows) ([]employee.Employee, error) {
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

func (e *employeeRepositoryImpl) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT EXISTS (SELECT 1 FROM employees WHERE LOWER(email) = LOWER($1) AND ($2 = '' OR id::text <> $2))`
	var exists bool
	if err := q.QueryRow(ctx, query, email, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

var employeeSortColumns = map[string]string{
	"name":          "e.name",
	"email":         "e.email",
	"department":    "e.department",
	"leave_balance": "e.leave_balance",
	"created_at":    "e.created_at",
}

func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, e.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(e.name ILIKE $%d OR e.email ILIKE $%d OR e.department ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}
	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("e.role = $%d", argIdx))
		args = append(args, filter.Role)
		argIdx++
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department ILIKE $%d", argIdx))
		args = append(args, filter.Department)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.ManagerID != "" {
		conditions = append(conditions, fmt.Sprintf("e.manager_id = $%d", argIdx))
		args = append(args, filter.ManagerID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees e WHERE %s", whereClause)
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := "SELECT " + employeeColumns + employeeFrom + " WHERE " + whereClause +
		orderClause(filter.SortBy, filter.SortOrder, employeeSortColumns, "e.name") +
		fmt.Sprintf(", e.id LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Window.Limit, filter.Window.Offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	employees, err := collectEmployees(rows)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func (e *employeeRepositoryImpl) ListByRoles(ctx context.Context, roles []user.Role) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	query := "SELECT " + employeeColumns + employeeFrom +
		" WHERE e.role = ANY($1) AND e.status = 'Active' ORDER BY e.name"
	rows, err := q.Query(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees by role: %w", err)
	}
	return collectEmployees(rows)
}

func (e *employeeRepositoryImpl) CountDirectReports(ctx context.Context, managerID string) (int64, error) {
	q := GetQuerier(ctx, e.db)

	var count int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE manager_id = $1`, managerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count direct reports: %w", err)
	}
	return count, nil
}

func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	if newEmployee.ID == "" {
		newEmployee.ID = newID()
	}
	query := `
		INSERT INTO employees (
			id, name, email, personal_email, password_hash, role,
			department, designation, phone, leave_balance,
			manager_id, assigned_admin_id, status, password_changed,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			NOW(), NOW()
		) RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		newEmployee.ID, newEmployee.Name, newEmployee.Email, newEmployee.PersonalEmail, newEmployee.PasswordHash, newEmployee.Role,
		newEmployee.Department, newEmployee.Designation, newEmployee.Phone, newEmployee.LeaveBalance,
		newEmployee.ManagerID, newEmployee.AssignedAdminID, newEmployee.Status, newEmployee.PasswordChanged,
	).Scan(&newEmployee.CreatedAt, &newEmployee.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "employees_email_key") {
			return employee.Employee{}, employee.ErrEmailExists
		}
		if isForeignKeyViolation(err) {
			return employee.Employee{}, employee.ErrManagerNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return newEmployee, nil
}

func (e *employeeRepositoryImpl) Update(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees SET
			name = $2, email = $3, personal_email = $4, role = $5,
			department = $6, designation = $7, phone = $8, leave_balance = $9,
			manager_id = $10, assigned_admin_id = $11, status = $12,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		emp.ID, emp.Name, emp.Email, emp.PersonalEmail, emp.Role,
		emp.Department, emp.Designation, emp.Phone, emp.LeaveBalance,
		emp.ManagerID, emp.AssignedAdminID, emp.Status,
	)
	if err != nil {
		if isUniqueViolation(err, "employees_email_key") {
			return employee.ErrEmailExists
		}
		if isForeignKeyViolation(err) {
			return employee.ErrManagerNotFound
		}
		if isCheckViolation(err, "employees_leave_balance_check") {
			return employee.ErrNegativeLeaveBalance
		}
		if isCheckViolation(err, "employees_not_own_manager") {
			return employee.ErrSelfManager
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (e *employeeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (e *employeeRepositoryImpl) GetManagerID(ctx context.Context, id string) (*string, error) {
	q := GetQuerier(ctx, e.db)

	var managerID *string
	err := q.QueryRow(ctx, `SELECT manager_id FROM employees WHERE id = $1`, id).Scan(&managerID)
	if err != nil {
		if isNotFound(err) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get manager id: %w", err)
	}
	return managerID, nil
}

func (e *employeeRepositoryImpl) LockHierarchy(ctx context.Context) error {
	q := GetQuerier(ctx, e.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, hierarchyLockKey); err != nil {
		return fmt.Errorf("failed to lock reporting hierarchy: %w", err)
	}
	return nil
}

func (e *employeeRepositoryImpl) AdjustLeaveBalance(ctx context.Context, id string, delta int) (int, error) {
	q := GetQuerier(ctx, e.db)

	var balance int
	err := q.QueryRow(ctx,
		`UPDATE employees SET leave_balance = leave_balance + $2, updated_at = NOW() WHERE id = $1 RETURNING leave_balance`,
		id, delta,
	).Scan(&balance)
	if err != nil {
		if isNotFound(err) {
			return 0, employee.ErrEmployeeNotFound
		}
		if isCheckViolation(err, "employees_leave_balance_check") {
			return 0, employee.ErrNegativeLeaveBalance
		}
		return 0, fmt.Errorf("failed to adjust leave balance: %w", err)
	}
	return balance, nil
}

func (e *employeeRepositoryImpl) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx,
		`UPDATE employees SET password_hash = $2, password_changed = TRUE, updated_at = NOW() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (e *employeeRepositoryImpl) RecordLogin(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, e.db)

	_, err := q.Exec(ctx,
		`UPDATE employees SET login_count = login_count + 1, last_login_at = $2 WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}
