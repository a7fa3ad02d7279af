package holiday

import "time"

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	return dayKey{t.Year(), t.Month(), t.Day()}
}

// Calendar answers working-day questions for a fixed set of holiday dates.
type Calendar struct {
	holidays map[dayKey]struct{}
}

func NewCalendar(dates []time.Time) Calendar {
	c := Calendar{holidays: make(map[dayKey]struct{}, len(dates))}
	for _, d := range dates {
		c.holidays[keyOf(d)] = struct{}{}
	}
	return c
}

// IsWorkingDay is false on Saturdays, Sundays and holidays.
func (c Calendar) IsWorkingDay(day time.Time) bool {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, isHoliday := c.holidays[keyOf(day)]
	return !isHoliday
}

// WorkingDaysBetween counts working days in [from, to], inclusive.
func (c Calendar) WorkingDaysBetween(from, to time.Time) int {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsWorkingDay(d) {
			count++
		}
	}
	return count
}

// WorkingDaysInMonth is the number of days in the month that are neither
// weekend days nor holidays. Holidays outside the month are ignored.
func WorkingDaysInMonth(year int, month time.Month, holidays []time.Time) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return NewCalendar(holidays).WorkingDaysBetween(first, last)
}

// MonthBounds returns the first and last calendar day of a month.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}
