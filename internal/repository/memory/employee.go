package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

type employeeRepository struct {
	s *Store
}

func (s *Store) Employees() employee.EmployeeRepository {
	return &employeeRepository{s: s}
}

// SeedEmployee stores e as is, filling the ID and timestamps when empty.
func (s *Store) SeedEmployee(e employee.Employee) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = newID()
	}
	if e.Status == "" {
		e.Status = employee.StatusActive
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
		e.UpdatedAt = e.CreatedAt
	}
	s.employees[e.ID] = e
	return e
}

// withManagerName fills the joined manager name. Callers hold s.mu.
func (r *employeeRepository) withManagerName(e employee.Employee) employee.Employee {
	e.ManagerName = nil
	if e.ManagerID != nil {
		if m, ok := r.s.employees[*e.ManagerID]; ok {
			name := m.Name
			e.ManagerName = &name
		}
	}
	return e
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return r.withManagerName(e), nil
}

func (r *employeeRepository) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	return r.GetByID(ctx, id)
}

func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.employees {
		if strings.EqualFold(e.Email, email) {
			return r.withManagerName(e), nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *employeeRepository) GetByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []employee.Employee{}
	for _, id := range ids {
		if e, ok := r.s.employees[id]; ok {
			out = append(out, r.withManagerName(e))
		}
	}
	return out, nil
}

func (r *employeeRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.employees {
		if e.ID != excludeID && strings.EqualFold(e.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *employeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(filter.Search)
	matched := []employee.Employee{}
	for _, e := range r.s.employees {
		if search != "" && !strings.Contains(strings.ToLower(e.Name+" "+e.Email+" "+e.Department), search) {
			continue
		}
		if filter.Role != "" && string(e.Role) != filter.Role {
			continue
		}
		if filter.Department != "" && !strings.EqualFold(e.Department, filter.Department) {
			continue
		}
		if filter.Status != "" && string(e.Status) != filter.Status {
			continue
		}
		if filter.ManagerID != "" && !e.ReportsTo(filter.ManagerID) {
			continue
		}
		matched = append(matched, r.withManagerName(e))
	}

	sort.Slice(matched, func(i, j int) bool {
		var less bool
		switch filter.SortBy {
		case "email":
			less = matched[i].Email < matched[j].Email
		case "leave_balance":
			less = matched[i].LeaveBalance < matched[j].LeaveBalance
		case "created_at":
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		default:
			less = matched[i].Name < matched[j].Name
		}
		if filter.SortOrder == "desc" {
			return !less
		}
		return less
	})

	return page(matched, filter.Window.Offset, filter.Window.Limit), int64(len(matched)), nil
}

func (r *employeeRepository) ListByRoles(ctx context.Context, roles []user.Role) ([]employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []employee.Employee{}
	for _, e := range r.s.employees {
		if !e.IsActive() {
			continue
		}
		for _, role := range roles {
			if e.Role == role {
				out = append(out, r.withManagerName(e))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *employeeRepository) CountDirectReports(ctx context.Context, managerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, e := range r.s.employees {
		if e.ReportsTo(managerID) {
			n++
		}
	}
	return n, nil
}

func (r *employeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.employees {
		if strings.EqualFold(existing.Email, e.Email) {
			return employee.Employee{}, employee.ErrEmailExists
		}
	}
	if e.ManagerID != nil {
		if _, ok := r.s.employees[*e.ManagerID]; !ok {
			return employee.Employee{}, employee.ErrManagerNotFound
		}
	}
	if e.ID == "" {
		e.ID = newID()
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.s.employees[e.ID] = e
	return r.withManagerName(e), nil
}

func (r *employeeRepository) Update(ctx context.Context, e employee.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.employees[e.ID]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	for _, existing := range r.s.employees {
		if existing.ID != e.ID && strings.EqualFold(existing.Email, e.Email) {
			return employee.ErrEmailExists
		}
	}
	if e.LeaveBalance < 0 {
		return employee.ErrNegativeLeaveBalance
	}
	// password and login columns are written through their own methods
	e.PasswordHash = current.PasswordHash
	e.PasswordChanged = current.PasswordChanged
	e.LoginCount = current.LoginCount
	e.LastLoginAt = current.LastLoginAt
	e.CreatedAt = current.CreatedAt
	e.UpdatedAt = time.Now()
	r.s.employees[e.ID] = e
	return nil
}

func (r *employeeRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(r.s.employees, id)
	return nil
}

func (r *employeeRepository) GetManagerID(ctx context.Context, id string) (*string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	return e.ManagerID, nil
}

// LockHierarchy is a no-op; the transaction lock already serializes writers.
func (r *employeeRepository) LockHierarchy(ctx context.Context) error {
	return nil
}

func (r *employeeRepository) AdjustLeaveBalance(ctx context.Context, id string, delta int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return 0, employee.ErrEmployeeNotFound
	}
	if e.LeaveBalance+delta < 0 {
		return 0, employee.ErrNegativeLeaveBalance
	}
	e.LeaveBalance += delta
	e.UpdatedAt = time.Now()
	r.s.employees[id] = e
	return e.LeaveBalance, nil
}

func (r *employeeRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.PasswordHash = passwordHash
	e.PasswordChanged = true
	e.UpdatedAt = time.Now()
	r.s.employees[id] = e
	return nil
}

func (r *employeeRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.LoginCount++
	when := at
	e.LastLoginAt = &when
	r.s.employees[id] = e
	return nil
}
