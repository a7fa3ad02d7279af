package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	emp := store.SeedEmployee(employee.Employee{Name: "Rina", Email: "rina@example.com", Role: user.RoleEmployee, LeaveBalance: 10})

	boom := errors.New("boom")
	err := store.WithinTransaction(ctx, func(txCtx context.Context) error {
		_, err := store.Employees().AdjustLeaveBalance(txCtx, emp.ID, -4)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Employees().GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.LeaveBalance)
}

func TestWithinTransactionNested(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	emp := store.SeedEmployee(employee.Employee{Name: "Rina", Email: "rina@example.com", Role: user.RoleEmployee, LeaveBalance: 10})

	err := store.WithinTransaction(ctx, func(txCtx context.Context) error {
		return store.WithinTransaction(txCtx, func(inner context.Context) error {
			_, err := store.Employees().AdjustLeaveBalance(inner, emp.ID, -3)
			return err
		})
	})
	require.NoError(t, err)

	got, err := store.Employees().GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.LeaveBalance)
}

func TestAdjustLeaveBalanceNeverNegative(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	emp := store.SeedEmployee(employee.Employee{Name: "Rina", Email: "rina@example.com", Role: user.RoleEmployee, LeaveBalance: 2})

	_, err := store.Employees().AdjustLeaveBalance(ctx, emp.ID, -3)
	assert.ErrorIs(t, err, employee.ErrNegativeLeaveBalance)
}

func TestEmployeeManagerNameJoin(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	mgr := store.SeedEmployee(employee.Employee{Name: "Budi", Email: "budi@example.com", Role: user.RoleManager})
	emp := store.SeedEmployee(employee.Employee{Name: "Rina", Email: "rina@example.com", Role: user.RoleEmployee, ManagerID: &mgr.ID})

	got, err := store.Employees().GetByID(ctx, emp.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ManagerName)
	assert.Equal(t, "Budi", *got.ManagerName)
}
