package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayStatusFor(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	cutoff := validator.ClockTime{Hour: 9, Minute: 15}
	day := func(h, m, s int) time.Time { return time.Date(2026, 3, 2, h, m, s, 0, loc) }

	tests := []struct {
		name    string
		clockIn time.Time
		want    DayStatus
	}{
		{"early", day(8, 0, 0), DayStatusPresent},
		{"exactly on cutoff", day(9, 15, 0), DayStatusPresent},
		{"within cutoff minute", day(9, 15, 59), DayStatusPresent},
		{"one minute late", day(9, 16, 0), DayStatusLate},
		{"afternoon", day(13, 0, 0), DayStatusLate},
		{"utc instant judged in local time", time.Date(2026, 3, 2, 2, 10, 0, 0, time.UTC), DayStatusPresent},
		{"utc instant late in local time", time.Date(2026, 3, 2, 2, 20, 0, 0, time.UTC), DayStatusLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayStatusFor(tt.clockIn, cutoff, loc))
		})
	}
}

func TestParseClockValue(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	got, err := ParseClockValue("09:05", day, loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 2, 9, 5, 0, 0, loc)))

	got, err = ParseClockValue("17:30:15", day, loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 2, 17, 30, 15, 0, loc)))

	got, err = ParseClockValue("2026-03-02T02:00:00Z", day, loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 2, 9, 0, 0, 0, loc)))

	_, err = ParseClockValue("nine o'clock", day, loc)
	assert.ErrorIs(t, err, ErrInvalidClockValue)
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	// 2026-03-02 20:00 UTC is already 2026-03-03 in WIB
	got := DateOf(time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), got)
}

func TestRecordIsLocked(t *testing.T) {
	assert.False(t, Record{ApprovalStatus: "Pending_Manager"}.IsLocked())
	assert.True(t, Record{ApprovalStatus: "Pending_Manager", IsConfirmed: true}.IsLocked())
	assert.True(t, Record{ApprovalStatus: "Approved"}.IsLocked())
	assert.True(t, Record{ApprovalStatus: "Rejected"}.IsLocked())
}
