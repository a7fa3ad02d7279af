package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/dashboard"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/holiday"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	holiday.HolidayRepository
	loc *time.Location
	now func() time.Time
}

func NewDashboardService(repo dashboard.DashboardRepository, holidayRepository holiday.HolidayRepository, loc *time.Location) dashboard.DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		HolidayRepository:   holidayRepository,
		loc:                 loc,
		now:                 time.Now,
	}
}

// Stats returns the combined dashboard using parallel goroutines, one query each.
func (s *DashboardServiceImpl) Stats(ctx context.Context, actor user.Principal, req dashboard.StatsRequest) (dashboard.StatsResponse, error) {
	if !actor.Can(user.PermissionDashboardView) {
		return dashboard.StatsResponse{}, user.ErrInsufficientPermissions
	}

	now := s.now().In(s.loc)
	if err := req.Validate(now); err != nil {
		return dashboard.StatsResponse{}, err
	}
	today := attendance.DateOf(now, s.loc)
	first, last := holiday.MonthBounds(req.Year, req.MonthValue)
	vis := user.VisibilityFor(actor, user.PermissionAttendanceViewAll, user.PermissionAttendanceViewTeam)

	resp := dashboard.StatsResponse{
		Date:  today.Format("2006-01-02"),
		Month: first.Format("2006-01"),
	}

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Headline counts for today
	g.Go(func() error {
		counts, err := s.GetDailyCounts(gCtx, vis, today)
		if err != nil {
			return fmt.Errorf("failed to get daily counts: %w", err)
		}
		resp.TotalEmployees = counts.Employees
		resp.PresentToday = counts.Present
		resp.LateToday = counts.Late
		resp.OnLeaveToday = counts.OnLeave
		resp.PendingLeaves = counts.PendingLeaves
		return nil
	})

	// 2. Upcoming holidays from today on
	g.Go(func() error {
		n, err := s.CountFrom(gCtx, today)
		if err != nil {
			return fmt.Errorf("failed to count upcoming holidays: %w", err)
		}
		resp.UpcomingHolidays = n
		return nil
	})

	// 3. Working days of the selected month
	g.Go(func() error {
		dates, err := s.DatesBetween(gCtx, first, last)
		if err != nil {
			return fmt.Errorf("failed to load holidays: %w", err)
		}
		resp.WorkingDaysInMonth = holiday.WorkingDaysInMonth(req.Year, req.MonthValue, dates)
		return nil
	})

	// 4. The caller's own month
	g.Go(func() error {
		stats, err := s.GetPersonalStats(gCtx, actor.EmployeeID, first, last)
		if err != nil {
			return fmt.Errorf("failed to get personal stats: %w", err)
		}
		resp.Personal = dashboard.PersonalSection{
			LeaveBalance:    stats.LeaveBalance,
			PresentDays:     stats.PresentDays,
			LateDays:        stats.LateDays,
			PendingRequests: stats.PendingRequests,
		}
		return nil
	})

	// 5. First-stage queue for managers
	if actor.Role.IsManager() {
		g.Go(func() error {
			stats, err := s.GetTeamStats(gCtx, actor.EmployeeID)
			if err != nil {
				return fmt.Errorf("failed to get team stats: %w", err)
			}
			resp.Team = &dashboard.TeamSection{
				TeamSize:                stats.TeamSize,
				PendingManagerApprovals: stats.PendingLeave + stats.PendingRecords,
			}
			return nil
		})
	}

	// 6. Second-stage queue for admins
	if actor.Role.IsAdmin() {
		g.Go(func() error {
			stats, err := s.GetAdminStats(gCtx)
			if err != nil {
				return fmt.Errorf("failed to get admin stats: %w", err)
			}
			resp.Admin = &dashboard.AdminSection{
				PendingAdminApprovals:   stats.PendingLeave + stats.PendingRecords,
				PendingProjectProposals: stats.PendingProposals,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return dashboard.StatsResponse{}, err
	}
	return resp, nil
}
