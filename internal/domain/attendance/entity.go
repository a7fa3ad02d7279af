package attendance

import (
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
)

type DayStatus string

const (
	DayStatusPresent DayStatus = "Present"
	DayStatusLate    DayStatus = "Late"
	DayStatusAbsent  DayStatus = "Absent"
	DayStatusHoliday DayStatus = "Holiday"
)

var DayStatuses = []DayStatus{DayStatusPresent, DayStatusLate, DayStatusAbsent, DayStatusHoliday}

func (s DayStatus) IsValid() bool {
	for _, known := range DayStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Attended reports whether the employee showed up that day.
func (s DayStatus) Attended() bool {
	return s == DayStatusPresent || s == DayStatusLate
}

type EntryType string

const (
	EntryTypeIn  EntryType = "in"
	EntryTypeOut EntryType = "out"
)

func (t EntryType) IsValid() bool {
	return t == EntryTypeIn || t == EntryTypeOut
}

// Record is one employee's attendance for one calendar day.
type Record struct {
	ID             string
	EmployeeID     string
	Date           time.Time // calendar day, midnight UTC
	ClockIn        *time.Time
	ClockOut       *time.Time
	Status         DayStatus
	ApprovalStatus approval.Status
	Trail          approval.Trail
	IsConfirmed    bool
	ConfirmedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Join
	EmployeeName    string
	EmployeeManager *string
	EntriesCount    int
}

// IsLocked is true once the record is confirmed or its approval is final.
func (r Record) IsLocked() bool {
	return r.IsConfirmed || r.ApprovalStatus.IsTerminal()
}

// Entry is a single clock-in or clock-out event on a record.
type Entry struct {
	ID        string
	RecordID  string
	Type      EntryType
	Timestamp time.Time
	Reason    *string
	CreatedAt time.Time
}
