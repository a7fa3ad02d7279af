package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysRequested(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"single day", date(2026, 2, 15), date(2026, 2, 15), 1},
		{"three days across a weekend", date(2026, 2, 15), date(2026, 2, 17), 3},
		{"work week", date(2026, 3, 1), date(2026, 3, 5), 5},
		{"across month end", date(2026, 2, 27), date(2026, 3, 2), 4},
		{"across year end", date(2025, 12, 30), date(2026, 1, 2), 4},
		{"reversed clamps to one", date(2026, 3, 5), date(2026, 3, 1), 1},
		{"leap year february", date(2028, 2, 28), date(2028, 3, 1), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysRequested(tt.start, tt.end))
		})
	}
}

func TestCovers(t *testing.T) {
	r := LeaveRequest{StartDate: date(2026, 3, 1), EndDate: date(2026, 3, 5)}
	assert.True(t, r.Covers(date(2026, 3, 1)))
	assert.True(t, r.Covers(time.Date(2026, 3, 5, 18, 0, 0, 0, time.UTC)))
	assert.False(t, r.Covers(date(2026, 2, 28)))
	assert.False(t, r.Covers(date(2026, 3, 6)))
}
