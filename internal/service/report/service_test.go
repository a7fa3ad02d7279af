package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/holiday"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/report"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReportRepository struct {
	mock.Mock
}

func (m *mockReportRepository) ListEmployees(ctx context.Context, vis user.Visibility) ([]report.EmployeeRef, error) {
	args := m.Called(ctx, vis)
	return args.Get(0).([]report.EmployeeRef), args.Error(1)
}

func (m *mockReportRepository) ListDayRecords(ctx context.Context, vis user.Visibility, from, to time.Time) ([]report.DayRecord, error) {
	args := m.Called(ctx, vis, from, to)
	return args.Get(0).([]report.DayRecord), args.Error(1)
}

func (m *mockReportRepository) ListApprovedLeave(ctx context.Context, vis user.Visibility, from, to time.Time) ([]report.LeaveSpan, error) {
	args := m.Called(ctx, vis, from, to)
	return args.Get(0).([]report.LeaveSpan), args.Error(1)
}

func (m *mockReportRepository) GetLeaveBalanceReport(ctx context.Context, vis user.Visibility, year int) ([]report.LeaveBalanceRow, error) {
	args := m.Called(ctx, vis, year)
	return args.Get(0).([]report.LeaveBalanceRow), args.Error(1)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

var (
	admin   = user.Principal{EmployeeID: "0190c0de-0000-7000-8000-000000000001", Role: user.RoleAdmin}
	manager = user.Principal{EmployeeID: "0190c0de-0000-7000-8000-000000000002", Role: user.RoleManager}
	worker  = user.Principal{EmployeeID: "0190c0de-0000-7000-8000-000000000003", Role: user.RoleEmployee}
)

func newService(t *testing.T, repo *mockReportRepository) *ReportServiceImpl {
	t.Helper()
	store := memory.NewStore()
	_, err := store.Holidays().Create(context.Background(), holiday.Holiday{Name: "Nyepi", Date: day("2026-03-04"), Type: holiday.HolidayTypePublic})
	require.NoError(t, err)

	svc := NewReportService(repo, store.Holidays(), time.UTC).(*ReportServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestMonthlyAttendance(t *testing.T) {
	ctx := context.Background()
	repo := &mockReportRepository{}
	svc := newService(t, repo)

	team := mock.MatchedBy(func(v user.Visibility) bool {
		return v.Scope == user.ScopeTeam && v.ViewerID == manager.EmployeeID
	})
	repo.On("ListEmployees", mock.Anything, team).Return([]report.EmployeeRef{
		{ID: "a", Name: "Ana", Department: "Eng"},
		{ID: "b", Name: "Budi", Department: "Ops"},
	}, nil)
	repo.On("ListDayRecords", mock.Anything, team, day("2026-03-01"), day("2026-03-31")).Return([]report.DayRecord{
		{EmployeeID: "a", Date: day("2026-03-02"), Status: attendance.DayStatusPresent},
		{EmployeeID: "a", Date: day("2026-03-03"), Status: attendance.DayStatusLate},
	}, nil)
	repo.On("ListApprovedLeave", mock.Anything, team, day("2026-03-01"), day("2026-03-31")).Return([]report.LeaveSpan{
		{EmployeeID: "b", Start: day("2026-03-02"), End: day("2026-03-03")},
	}, nil)

	got, err := svc.MonthlyAttendance(ctx, manager, report.AttendanceReportRequest{Month: "2026-03"})
	require.NoError(t, err)

	assert.Equal(t, "2026-03", got.Month)
	assert.Equal(t, "2026-03-31", got.PeriodEnd)
	require.NotNil(t, got.CountedThrough)
	assert.Equal(t, "2026-03-05", *got.CountedThrough)
	// 2, 3 and 5 March; the 4th is a holiday
	assert.Equal(t, 3, got.WorkingDays)

	require.Len(t, got.Employees, 2)
	assert.Equal(t, report.AttendanceReportRow{EmployeeID: "a", EmployeeName: "Ana", Department: "Eng", WorkingDays: 3, Present: 1, Late: 1, Absent: 1}, got.Employees[0])
	assert.Equal(t, report.AttendanceReportRow{EmployeeID: "b", EmployeeName: "Budi", Department: "Ops", WorkingDays: 3, LeaveDays: 2, Absent: 1}, got.Employees[1])
	repo.AssertExpectations(t)
}

func TestMonthlyAttendanceFutureMonth(t *testing.T) {
	repo := &mockReportRepository{}
	svc := newService(t, repo)

	repo.On("ListEmployees", mock.Anything, mock.Anything).Return([]report.EmployeeRef{{ID: "a", Name: "Ana"}}, nil)
	repo.On("ListDayRecords", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]report.DayRecord{}, nil)
	repo.On("ListApprovedLeave", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]report.LeaveSpan{}, nil)

	got, err := svc.MonthlyAttendance(context.Background(), admin, report.AttendanceReportRequest{Month: "2026-04"})
	require.NoError(t, err)
	assert.Nil(t, got.CountedThrough)
	assert.Zero(t, got.WorkingDays)
	require.Len(t, got.Employees, 1)
	assert.Zero(t, got.Employees[0].Absent)
}

func TestMonthlyAttendanceErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("employees cannot run reports", func(t *testing.T) {
		svc := newService(t, &mockReportRepository{})
		_, err := svc.MonthlyAttendance(ctx, worker, report.AttendanceReportRequest{})
		assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
		_, err = svc.LeaveBalances(ctx, worker, report.LeaveBalanceReportRequest{})
		assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
	})

	t.Run("bad month", func(t *testing.T) {
		svc := newService(t, &mockReportRepository{})
		_, err := svc.MonthlyAttendance(ctx, admin, report.AttendanceReportRequest{Month: "March"})
		assert.Error(t, err)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := &mockReportRepository{}
		svc := newService(t, repo)
		repo.On("ListEmployees", mock.Anything, mock.Anything).Return([]report.EmployeeRef(nil), errors.New("db down"))
		repo.On("ListDayRecords", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]report.DayRecord{}, nil).Maybe()
		repo.On("ListApprovedLeave", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]report.LeaveSpan{}, nil).Maybe()

		_, err := svc.MonthlyAttendance(ctx, admin, report.AttendanceReportRequest{Month: "2026-03"})
		assert.ErrorContains(t, err, "db down")
	})
}

func TestLeaveBalances(t *testing.T) {
	repo := &mockReportRepository{}
	svc := newService(t, repo)

	all := mock.MatchedBy(func(v user.Visibility) bool { return v.Scope == user.ScopeAll })
	repo.On("GetLeaveBalanceReport", mock.Anything, all, 2025).Return([]report.LeaveBalanceRow{
		{EmployeeID: "a", EmployeeName: "Ana", LeaveBalance: 12, ApprovedDays: 5, PendingDays: 2},
	}, nil)

	got, err := svc.LeaveBalances(context.Background(), admin, report.LeaveBalanceReportRequest{Year: "2025"})
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year)
	require.Len(t, got.Employees, 1)
	assert.Equal(t, 12, got.Employees[0].LeaveBalance)

	_, err = svc.LeaveBalances(context.Background(), admin, report.LeaveBalanceReportRequest{Year: "1999"})
	assert.Error(t, err)
	repo.AssertExpectations(t)
}

func TestRender(t *testing.T) {
	svc := newService(t, &mockReportRepository{})
	counted := "2026-03-05"
	attendanceReport := report.AttendanceReport{
		Month: "2026-03", PeriodStart: "2026-03-01", PeriodEnd: "2026-03-31", CountedThrough: &counted, WorkingDays: 3,
		Employees: []report.AttendanceReportRow{{EmployeeName: "Ana", Department: "Eng", WorkingDays: 3, Present: 2, Absent: 1}},
	}

	xlsx, err := svc.RenderAttendance(attendanceReport, report.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "attendance-2026-03.xlsx", xlsx.Filename)
	assert.True(t, bytes.HasPrefix(xlsx.Body, []byte("PK")))

	pdf, err := svc.RenderLeaveBalances(report.LeaveBalanceReport{Year: 2026, Employees: []report.LeaveBalanceRow{{EmployeeName: "Ana", LeaveBalance: 10}}}, report.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.Equal(t, "leave-balances-2026.pdf", pdf.Filename)
	assert.True(t, bytes.HasPrefix(pdf.Body, []byte("%PDF")))

	_, err = svc.RenderAttendance(attendanceReport, report.FormatJSON)
	assert.ErrorIs(t, err, report.ErrUnsupportedFormat)
}
