package holiday

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/holiday"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin   = user.Principal{EmployeeID: "0190c0de-0000-7000-8000-000000000001", Role: user.RoleAdmin}
	manager = user.Principal{EmployeeID: "0190c0de-0000-7000-8000-000000000002", Role: user.RoleManager}
)

func newService() holiday.HolidayService {
	return NewHolidayService(memory.NewStore().Holidays())
}

func TestHolidayCRUD(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	desc := "  Hari Raya Nyepi "
	created, err := svc.Create(ctx, admin, holiday.CreateHolidayRequest{Name: "Nyepi", Date: "2026-03-19", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-19", created.Date)
	assert.Equal(t, "Thursday", created.Weekday)
	assert.Equal(t, string(holiday.HolidayTypePublic), created.Type)
	require.NotNil(t, created.Description)
	assert.Equal(t, "Hari Raya Nyepi", *created.Description)

	_, err = svc.Create(ctx, admin, holiday.CreateHolidayRequest{Name: "Duplicate", Date: "2026-03-19"})
	assert.ErrorIs(t, err, holiday.ErrHolidayExists)

	newName := "Nyepi Day"
	newType := string(holiday.HolidayTypeCompany)
	updated, err := svc.Update(ctx, admin, created.ID, holiday.UpdateHolidayRequest{Name: &newName, Type: &newType})
	require.NoError(t, err)
	assert.Equal(t, "Nyepi Day", updated.Name)
	assert.Equal(t, "Company", updated.Type)

	require.NoError(t, svc.Delete(ctx, admin, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, holiday.ErrHolidayNotFound)
}

func TestHolidayManageRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Create(ctx, manager, holiday.CreateHolidayRequest{Name: "X", Date: "2026-05-01"})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
	assert.ErrorIs(t, svc.Delete(ctx, manager, "whatever"), user.ErrInsufficientPermissions)
}

func TestHolidayListByYearSorted(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	for _, d := range []string{"2026-12-25", "2026-01-01", "2025-12-25", "2026-05-01"} {
		_, err := svc.Create(ctx, admin, holiday.CreateHolidayRequest{Name: "Holiday " + d, Date: d})
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, holiday.HolidayFilter{Year: 2026})
	require.NoError(t, err)
	require.Len(t, resp.Holidays, 3)
	assert.EqualValues(t, 3, resp.Total)
	assert.Equal(t, "2026-01-01", resp.Holidays[0].Date)
	assert.Equal(t, "2026-05-01", resp.Holidays[1].Date)
	assert.Equal(t, "2026-12-25", resp.Holidays[2].Date)

	_, err = svc.List(ctx, holiday.HolidayFilter{Month: 3})
	assert.Error(t, err)
}

func TestWorkingDaysInMonthUsesStoredHolidays(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	// weekday and weekend holidays in March 2026, plus one in April
	for _, d := range []string{"2026-03-19", "2026-03-21", "2026-04-03"} {
		_, err := svc.Create(ctx, admin, holiday.CreateHolidayRequest{Name: "H " + d, Date: d})
		require.NoError(t, err)
	}

	days, err := svc.WorkingDaysInMonth(ctx, 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, 21, days)

	cal, err := svc.CalendarFor(ctx, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, cal.IsWorkingDay(time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC)))
}
