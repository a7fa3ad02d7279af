package dashboard

import (
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
)

// StatsRequest selects the month for the working-day count. Empty means the
// current month in the company timezone.
type StatsRequest struct {
	Month string

	Year       int
	MonthValue time.Month
}

func (r *StatsRequest) Validate(now time.Time) error {
	if r.Month == "" {
		r.Year, r.MonthValue = now.Year(), now.Month()
		return nil
	}
	year, month, ok := validator.IsValidMonth(r.Month)
	if !ok {
		return validator.ValidationErrors{{Field: "month", Message: "month must be in YYYY-MM format"}}
	}
	r.Year, r.MonthValue = year, month
	return nil
}

// StatsResponse is the role-aware dashboard payload. Counts in the top level
// are scoped to what the caller may see: own data for employees, the team for
// managers and the company for admins.
type StatsResponse struct {
	Date               string `json:"date"`  // YYYY-MM-DD
	Month              string `json:"month"` // YYYY-MM
	TotalEmployees     int64  `json:"totalEmployees"`
	PresentToday       int64  `json:"presentToday"`
	LateToday          int64  `json:"lateToday"`
	OnLeaveToday       int64  `json:"onLeaveToday"`
	PendingLeaves      int64  `json:"pendingLeaves"`
	UpcomingHolidays   int64  `json:"upcomingHolidays"`
	WorkingDaysInMonth int    `json:"workingDaysInMonth"`

	Personal PersonalSection `json:"personal"`
	Team     *TeamSection    `json:"team,omitempty"`
	Admin    *AdminSection   `json:"admin,omitempty"`
}

type PersonalSection struct {
	LeaveBalance    int   `json:"leaveBalance"`
	PresentDays     int64 `json:"presentDays"`
	LateDays        int64 `json:"lateDays"`
	PendingRequests int64 `json:"pendingRequests"`
}

type TeamSection struct {
	TeamSize                int64 `json:"teamSize"`
	PendingManagerApprovals int64 `json:"pendingManagerApprovals"`
}

type AdminSection struct {
	PendingAdminApprovals   int64 `json:"pendingAdminApprovals"`
	PendingProjectProposals int64 `json:"pendingProjectProposals"`
}
