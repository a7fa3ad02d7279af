package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
)

// DateOf returns the calendar day of t in loc, as midnight UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// DayStatusFor classifies a clock-in: at or before cutoff (minute precision,
// local time) is Present, anything later is Late.
func DayStatusFor(clockIn time.Time, cutoff validator.ClockTime, loc *time.Location) DayStatus {
	local := clockIn.In(loc)
	if local.Hour()*60+local.Minute() <= cutoff.Minutes() {
		return DayStatusPresent
	}
	return DayStatusLate
}

// ParseClockValue reads a clock-in/out value. "HH:MM" and "HH:MM:SS" are
// placed on day (in loc); anything else must be RFC 3339.
func ParseClockValue(value string, day time.Time, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ct, err := validator.ParseClockTime(value); err == nil {
		return time.Date(day.Year(), day.Month(), day.Day(), ct.Hour, ct.Minute, ct.Second, 0, loc), nil
	}
	if t, ok := validator.IsValidDateTime(value); ok {
		return t, nil
	}
	return time.Time{}, ErrInvalidClockValue
}

// FormatClock renders a timestamp as "HH:MM" in loc.
func FormatClock(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format("15:04")
	return &s
}
