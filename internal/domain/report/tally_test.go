package report

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/holiday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTally(t *testing.T) {
	// 2026-03-02 is a Monday. The week of 2..8 has five working days, one of
	// which (the 4th) is a holiday.
	cal := holiday.NewCalendar([]time.Time{day("2026-03-04")})
	employees := []EmployeeRef{
		{ID: "a", Name: "Ana", Department: "Eng"},
		{ID: "b", Name: "Budi", Department: "Ops"},
	}
	records := []DayRecord{
		{EmployeeID: "a", Date: day("2026-03-02"), Status: attendance.DayStatusPresent},
		{EmployeeID: "a", Date: day("2026-03-03"), Status: attendance.DayStatusLate},
		{EmployeeID: "a", Date: day("2026-03-07"), Status: attendance.DayStatusAbsent}, // Saturday
		{EmployeeID: "b", Date: day("2026-03-02"), Status: attendance.DayStatusAbsent},
		{EmployeeID: "b", Date: day("2026-03-03"), Status: attendance.DayStatusHoliday},
	}
	leave := []LeaveSpan{
		{EmployeeID: "a", Start: day("2026-03-05"), End: day("2026-03-06")},
	}

	rows := Tally(employees, records, leave, cal, day("2026-03-02"), day("2026-03-08"))
	require.Len(t, rows, 2)

	assert.Equal(t, AttendanceReportRow{
		EmployeeID: "a", EmployeeName: "Ana", Department: "Eng",
		WorkingDays: 4, Present: 1, Late: 1, Absent: 1, LeaveDays: 2,
	}, rows[0])
	assert.Equal(t, AttendanceReportRow{
		EmployeeID: "b", EmployeeName: "Budi", Department: "Ops",
		WorkingDays: 4, Absent: 3,
	}, rows[1])
}

func TestTallyNoEmployees(t *testing.T) {
	rows := Tally(nil, nil, nil, holiday.NewCalendar(nil), day("2026-03-01"), day("2026-03-31"))
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestCountedThrough(t *testing.T) {
	first, last := holiday.MonthBounds(2026, time.March)

	through, ok := CountedThrough(first, last, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, day("2026-03-10"), through)

	through, ok = CountedThrough(first, last, day("2026-05-01"))
	require.True(t, ok)
	assert.Equal(t, last, through)

	_, ok = CountedThrough(first, last, day("2026-02-27"))
	assert.False(t, ok)
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("")
	assert.True(t, ok)
	assert.Equal(t, FormatJSON, f)

	f, ok = ParseFormat("XLSX")
	assert.True(t, ok)
	assert.Equal(t, FormatXLSX, f)

	_, ok = ParseFormat("csv")
	assert.False(t, ok)
}

func TestLeaveBalanceReportRequestValidate(t *testing.T) {
	now := day("2026-10-18")

	req := LeaveBalanceReportRequest{}
	require.NoError(t, req.Validate(now))
	assert.Equal(t, 2026, req.YearValue)
	assert.Equal(t, FormatJSON, req.ParsedFormat)

	req = LeaveBalanceReportRequest{Year: "abc", Format: "doc"}
	err := req.Validate(now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year")
	assert.Contains(t, err.Error(), "format")
}
