package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// OrNil returns nil for an empty list so callers can `return errs.OrNil()`.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// IsValidMonth parses "YYYY-MM".
func IsValidMonth(monthStr string) (year int, month time.Month, ok bool) {
	t, err := time.Parse("2006-01", monthStr)
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), t.Month(), true
}

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Phone number validation. Spaces, dashes and parentheses are ignored.
func IsValidPhoneNumber(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	return phoneRegex.MatchString(cleaned)
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// IsValidDateTime checks if a string is a valid ISO8601 timestamp.
// Accepts formats like: "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00+07:00"
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, dateTimeStr)
	if err == nil {
		return t, true
	}

	t, err = time.Parse(time.RFC3339Nano, dateTimeStr)
	if err == nil {
		return t, true
	}

	return time.Time{}, false
}

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

// ParseClockTime accepts "HH:MM" or "HH:MM:SS".
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return ClockTime{}, fmt.Errorf("invalid clock time %q, expected HH:MM or HH:MM:SS", s)
}

// On places the clock time on the calendar day of d in loc.
func (c ClockTime) On(d time.Time, loc *time.Location) time.Time {
	d = d.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, c.Second, 0, loc)
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page is a resolved pagination window.
type Page struct {
	Page   int
	Limit  int
	Offset int
}

// ResolvePage accepts either page-based or skip-based pagination. A positive
// skip wins over page.
func ResolvePage(page, limit, skip int) Page {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if skip > 0 {
		return Page{Page: skip/limit + 1, Limit: limit, Offset: skip}
	}
	if page <= 0 {
		page = 1
	}
	return Page{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// ParseSortOrder accepts "", "asc" or "desc" (any case). Empty means desc.
func ParseSortOrder(order string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "desc":
		return "desc", true
	case "asc":
		return "asc", true
	default:
		return "", false
	}
}
