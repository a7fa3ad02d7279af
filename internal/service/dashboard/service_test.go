package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/dashboard"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/holiday"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDashboardRepository struct {
	mock.Mock
}

func (m *mockDashboardRepository) GetDailyCounts(ctx context.Context, vis user.Visibility, day time.Time) (dashboard.DailyCounts, error) {
	args := m.Called(ctx, vis, day)
	return args.Get(0).(dashboard.DailyCounts), args.Error(1)
}

func (m *mockDashboardRepository) GetPersonalStats(ctx context.Context, employeeID string, from, to time.Time) (dashboard.PersonalStats, error) {
	args := m.Called(ctx, employeeID, from, to)
	return args.Get(0).(dashboard.PersonalStats), args.Error(1)
}

func (m *mockDashboardRepository) GetTeamStats(ctx context.Context, managerID string) (dashboard.TeamStats, error) {
	args := m.Called(ctx, managerID)
	return args.Get(0).(dashboard.TeamStats), args.Error(1)
}

func (m *mockDashboardRepository) GetAdminStats(ctx context.Context) (dashboard.AdminStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(dashboard.AdminStats), args.Error(1)
}

var (
	jakarta = time.FixedZone("WIB", 7*60*60)
	// 2026-03-02 23:30 UTC is already Tuesday the 3rd in Jakarta
	clock = time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC)
	today = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
)

func newService(t *testing.T, repo *mockDashboardRepository) dashboard.DashboardService {
	t.Helper()
	store := memory.NewStore()
	for _, d := range []string{"2026-03-19", "2026-02-17", "2026-04-03"} {
		date, _ := time.Parse("2006-01-02", d)
		_, err := store.Holidays().Create(context.Background(), holiday.Holiday{Name: d, Date: date, Type: holiday.HolidayTypePublic})
		require.NoError(t, err)
	}
	svc := NewDashboardService(repo, store.Holidays(), jakarta)
	svc.(*DashboardServiceImpl).now = func() time.Time { return clock }
	return svc
}

func TestStatsForManager(t *testing.T) {
	repo := &mockDashboardRepository{}
	svc := newService(t, repo)
	mgr := user.Principal{EmployeeID: "mgr-1", Role: user.RoleManager}

	repo.On("GetDailyCounts", mock.Anything, user.Visibility{ViewerID: "mgr-1", Scope: user.ScopeTeam}, today).
		Return(dashboard.DailyCounts{Employees: 4, Present: 2, Late: 1, OnLeave: 1, PendingLeaves: 3}, nil)
	repo.On("GetPersonalStats", mock.Anything, "mgr-1", mock.Anything, mock.Anything).
		Return(dashboard.PersonalStats{LeaveBalance: 12, PresentDays: 1, PendingRequests: 1}, nil)
	repo.On("GetTeamStats", mock.Anything, "mgr-1").
		Return(dashboard.TeamStats{TeamSize: 3, PendingLeave: 2, PendingRecords: 4}, nil)

	resp, err := svc.Stats(context.Background(), mgr, dashboard.StatsRequest{})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-03", resp.Date)
	assert.Equal(t, "2026-03", resp.Month)
	assert.EqualValues(t, 4, resp.TotalEmployees)
	assert.EqualValues(t, 3, resp.PendingLeaves)
	// 2026-03-19 and 2026-04-03 are ahead
	assert.EqualValues(t, 2, resp.UpcomingHolidays)
	assert.Equal(t, 21, resp.WorkingDaysInMonth)
	assert.Equal(t, 12, resp.Personal.LeaveBalance)
	require.NotNil(t, resp.Team)
	assert.EqualValues(t, 6, resp.Team.PendingManagerApprovals)
	assert.Nil(t, resp.Admin)

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "GetAdminStats", mock.Anything)
}

func TestStatsForAdminSelectedMonth(t *testing.T) {
	repo := &mockDashboardRepository{}
	svc := newService(t, repo)
	adm := user.Principal{EmployeeID: "adm-1", Role: user.RoleAdmin}

	feb1 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	feb28 := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	repo.On("GetDailyCounts", mock.Anything, user.Visibility{ViewerID: "adm-1", Scope: user.ScopeAll}, today).
		Return(dashboard.DailyCounts{Employees: 40}, nil)
	repo.On("GetPersonalStats", mock.Anything, "adm-1", feb1, feb28).
		Return(dashboard.PersonalStats{LeaveBalance: 17}, nil)
	repo.On("GetAdminStats", mock.Anything).
		Return(dashboard.AdminStats{PendingLeave: 1, PendingRecords: 2, PendingProposals: 5}, nil)

	resp, err := svc.Stats(context.Background(), adm, dashboard.StatsRequest{Month: "2026-02"})
	require.NoError(t, err)

	assert.Equal(t, "2026-02", resp.Month)
	assert.Equal(t, 19, resp.WorkingDaysInMonth)
	require.NotNil(t, resp.Admin)
	assert.EqualValues(t, 3, resp.Admin.PendingAdminApprovals)
	assert.EqualValues(t, 5, resp.Admin.PendingProjectProposals)
	assert.Nil(t, resp.Team)
	repo.AssertExpectations(t)
}

func TestStatsPropagatesErrors(t *testing.T) {
	repo := &mockDashboardRepository{}
	svc := newService(t, repo)
	emp := user.Principal{EmployeeID: "emp-1", Role: user.RoleEmployee}

	repo.On("GetDailyCounts", mock.Anything, mock.Anything, mock.Anything).Return(dashboard.DailyCounts{}, errors.New("boom"))
	repo.On("GetPersonalStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(dashboard.PersonalStats{}, nil)

	_, err := svc.Stats(context.Background(), emp, dashboard.StatsRequest{})
	assert.ErrorContains(t, err, "boom")

	_, err = svc.Stats(context.Background(), emp, dashboard.StatsRequest{Month: "March"})
	assert.Error(t, err)
}
