package report

import (
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/holiday"
)

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Tally builds one row per employee over the working days of [from, through].
//
// A working day counts as Present or Late when the employee has such a record,
// as a leave day when approved leave covers it, and as absent otherwise. An
// explicit Absent record on a non-working day is counted as well. A Holiday
// record excuses the day.
func Tally(employees []EmployeeRef, records []DayRecord, leave []LeaveSpan, cal holiday.Calendar, from, through time.Time) []AttendanceReportRow {
	byEmployee := make(map[string]map[string]attendance.DayStatus, len(employees))
	for _, r := range records {
		if byEmployee[r.EmployeeID] == nil {
			byEmployee[r.EmployeeID] = make(map[string]attendance.DayStatus)
		}
		byEmployee[r.EmployeeID][dateKey(r.Date)] = r.Status
	}
	spans := make(map[string][]LeaveSpan)
	for _, s := range leave {
		spans[s.EmployeeID] = append(spans[s.EmployeeID], s)
	}

	var days []time.Time
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(through.Year(), through.Month(), through.Day(), 0, 0, 0, 0, time.UTC)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	rows := make([]AttendanceReportRow, 0, len(employees))
	for _, e := range employees {
		row := AttendanceReportRow{
			EmployeeID:   e.ID,
			EmployeeName: e.Name,
			Department:   e.Department,
		}
		statuses := byEmployee[e.ID]
		for _, d := range days {
			status, hasRecord := statuses[dateKey(d)]
			if !cal.IsWorkingDay(d) {
				if hasRecord && status == attendance.DayStatusAbsent {
					row.Absent++
				}
				continue
			}

			row.WorkingDays++
			switch {
			case hasRecord && status == attendance.DayStatusPresent:
				row.Present++
			case hasRecord && status == attendance.DayStatusLate:
				row.Late++
			case hasRecord && status == attendance.DayStatusHoliday:
			case onLeave(spans[e.ID], d):
				row.LeaveDays++
			default:
				row.Absent++
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func onLeave(spans []LeaveSpan, day time.Time) bool {
	k := dateKey(day)
	for _, s := range spans {
		if dateKey(s.Start) <= k && k <= dateKey(s.End) {
			return true
		}
	}
	return false
}

// CountedThrough clips the report window to today so future days of the
// current month are not reported as absences. ok is false when the whole
// month lies in the future.
func CountedThrough(first, last, today time.Time) (through time.Time, ok bool) {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if t.Before(first) {
		return time.Time{}, false
	}
	if t.After(last) {
		return last, true
	}
	return t, true
}
