package holiday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestWorkingDaysInMonth(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		month    time.Month
		holidays []time.Time
		want     int
	}{
		// March 2026 starts on a Sunday: 31 days, 5 Sundays, 4 Saturdays
		{"31-day month starting Sunday", 2026, time.March, nil, 22},
		{"weekday holiday removed", 2026, time.March, []time.Time{d(2026, 3, 2)}, 21},
		{"weekend holiday not double counted", 2026, time.March, []time.Time{d(2026, 3, 7)}, 22},
		{"holiday in another month ignored", 2026, time.March, []time.Time{d(2026, 4, 1)}, 22},
		{"duplicate holiday dates counted once", 2026, time.March, []time.Time{d(2026, 3, 2), d(2026, 3, 2)}, 21},
		// February 2026 starts on a Sunday: exactly four full weeks
		{"february 2026", 2026, time.February, nil, 20},
		{"leap february 2028", 2028, time.February, nil, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WorkingDaysInMonth(tt.year, tt.month, tt.holidays))
		})
	}
}

func TestWorkingDaysInMonthIsDeterministic(t *testing.T) {
	holidays := []time.Time{d(2026, 3, 17), d(2026, 3, 20)}
	first := WorkingDaysInMonth(2026, time.March, holidays)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, WorkingDaysInMonth(2026, time.March, holidays))
	}
}

func TestCalendar(t *testing.T) {
	cal := NewCalendar([]time.Time{d(2026, 3, 2)})

	assert.False(t, cal.IsWorkingDay(d(2026, 3, 1)), "Sunday")
	assert.False(t, cal.IsWorkingDay(d(2026, 3, 2)), "holiday")
	assert.True(t, cal.IsWorkingDay(d(2026, 3, 3)))
	assert.False(t, cal.IsWorkingDay(d(2026, 3, 7)), "Saturday")

	// Mon 2 (holiday) .. Fri 6
	assert.Equal(t, 4, cal.WorkingDaysBetween(d(2026, 3, 2), d(2026, 3, 6)))
	assert.Equal(t, 0, cal.WorkingDaysBetween(d(2026, 3, 6), d(2026, 3, 2)))
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(2028, time.February)
	assert.Equal(t, d(2028, 2, 1), first)
	assert.Equal(t, d(2028, 2, 29), last)
}
