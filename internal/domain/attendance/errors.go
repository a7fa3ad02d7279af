package attendance

import "errors"

var (
	ErrAttendanceNotFound     = errors.New("attendance record not found")
	ErrEntryNotFound          = errors.New("attendance entry not found")
	ErrAttendanceExists       = errors.New("attendance already recorded for this employee and date")
	ErrAlreadyClockedOut      = errors.New("already clocked out today")
	ErrClockOutBeforeClockIn  = errors.New("clock-out must be after clock-in")
	ErrAttendanceLocked       = errors.New("attendance record is confirmed or finalized and can no longer change")
	ErrAlreadyConfirmed       = errors.New("attendance record is already confirmed")
	ErrNothingToConfirm       = errors.New("attendance record has no entries or clock-in to confirm")
	ErrInvalidClockValue      = errors.New("time must be HH:MM, HH:MM:SS or an RFC 3339 timestamp")
	ErrNotRecordOwner         = errors.New("you can only change your own attendance")
	ErrCannotMarkForOthers    = errors.New("only administrators can mark attendance for other employees")
	ErrStatusOverrideNotAllow = errors.New("only administrators can set the day status")
	ErrClockOverrideNotAllow  = errors.New("only administrators can set clock times when marking attendance")
)
