package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/holiday"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/report"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/export"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	report.ReportRepository
	holiday.HolidayRepository
	loc *time.Location
	now func() time.Time
}

func NewReportService(reportRepository report.ReportRepository, holidayRepository holiday.HolidayRepository, loc *time.Location) report.ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportServiceImpl{
		ReportRepository:  reportRepository,
		HolidayRepository: holidayRepository,
		loc:               loc,
		now:               time.Now,
	}
}

// MonthlyAttendance tallies the month up to today. Days after today are not
// counted, so the current month only shows elapsed working days.
func (s *ReportServiceImpl) MonthlyAttendance(ctx context.Context, actor user.Principal, req report.AttendanceReportRequest) (report.AttendanceReport, error) {
	if !actor.Can(user.PermissionReportsView) {
		return report.AttendanceReport{}, user.ErrInsufficientPermissions
	}
	now := s.now().In(s.loc)
	if err := req.Validate(now); err != nil {
		return report.AttendanceReport{}, err
	}
	vis := user.VisibilityFor(actor, user.PermissionReportsViewAll, user.PermissionReportsView)

	first, last := holiday.MonthBounds(req.Year, req.MonthValue)
	through, elapsed := report.CountedThrough(first, last, attendance.DateOf(now, s.loc))
	if !elapsed {
		// nothing counted yet; Tally walks an empty window
		through = first.AddDate(0, 0, -1)
	}

	var (
		employees []report.EmployeeRef
		records   []report.DayRecord
		spans     []report.LeaveSpan
		holidays  []time.Time
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if employees, err = s.ListEmployees(gCtx, vis); err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if records, err = s.ListDayRecords(gCtx, vis, first, last); err != nil {
			return fmt.Errorf("failed to list attendance records: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if spans, err = s.ListApprovedLeave(gCtx, vis, first, last); err != nil {
			return fmt.Errorf("failed to list approved leave: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if holidays, err = s.DatesBetween(gCtx, first, last); err != nil {
			return fmt.Errorf("failed to load holidays: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.AttendanceReport{}, err
	}

	cal := holiday.NewCalendar(holidays)
	resp := report.AttendanceReport{
		Month:       first.Format("2006-01"),
		PeriodStart: first.Format("2006-01-02"),
		PeriodEnd:   last.Format("2006-01-02"),
		GeneratedAt: now,
		Employees:   report.Tally(employees, records, spans, cal, first, through),
	}
	if elapsed {
		counted := through.Format("2006-01-02")
		resp.CountedThrough = &counted
		resp.WorkingDays = cal.WorkingDaysBetween(first, through)
	}
	return resp, nil
}

func (s *ReportServiceImpl) LeaveBalances(ctx context.Context, actor user.Principal, req report.LeaveBalanceReportRequest) (report.LeaveBalanceReport, error) {
	if !actor.Can(user.PermissionReportsView) {
		return report.LeaveBalanceReport{}, user.ErrInsufficientPermissions
	}
	now := s.now().In(s.loc)
	if err := req.Validate(now); err != nil {
		return report.LeaveBalanceReport{}, err
	}
	vis := user.VisibilityFor(actor, user.PermissionReportsViewAll, user.PermissionReportsView)

	rows, err := s.GetLeaveBalanceReport(ctx, vis, req.YearValue)
	if err != nil {
		return report.LeaveBalanceReport{}, fmt.Errorf("failed to get leave balance report: %w", err)
	}
	return report.LeaveBalanceReport{
		Year:        req.YearValue,
		GeneratedAt: now,
		Employees:   rows,
	}, nil
}

func (s *ReportServiceImpl) RenderAttendance(r report.AttendanceReport, format report.Format) (report.File, error) {
	subtitle := fmt.Sprintf("%s to %s, %d working days", r.PeriodStart, r.PeriodEnd, r.WorkingDays)
	if r.CountedThrough != nil {
		subtitle = fmt.Sprintf("%s to %s, %d working days elapsed", r.PeriodStart, *r.CountedThrough, r.WorkingDays)
	}
	table := export.Table{
		Title:    "Attendance " + r.Month,
		Subtitle: subtitle,
		Headers:  []string{"Employee", "Department", "Working Days", "Present", "Late", "Absent", "Leave Days"},
		Rows:     make([][]string, 0, len(r.Employees)),
	}
	for _, e := range r.Employees {
		table.Rows = append(table.Rows, []string{
			e.EmployeeName,
			e.Department,
			strconv.Itoa(e.WorkingDays),
			strconv.Itoa(e.Present),
			strconv.Itoa(e.Late),
			strconv.Itoa(e.Absent),
			strconv.Itoa(e.LeaveDays),
		})
	}
	return render(table, "attendance-"+r.Month, format)
}

func (s *ReportServiceImpl) RenderLeaveBalances(r report.LeaveBalanceReport, format report.Format) (report.File, error) {
	year := strconv.Itoa(r.Year)
	table := export.Table{
		Title:    "Leave Balances " + year,
		Subtitle: "Generated " + r.GeneratedAt.Format("2006-01-02 15:04"),
		Headers:  []string{"Employee", "Department", "Balance", "Approved Days", "Pending Days"},
		Rows:     make([][]string, 0, len(r.Employees)),
	}
	for _, e := range r.Employees {
		table.Rows = append(table.Rows, []string{
			e.EmployeeName,
			e.Department,
			strconv.Itoa(e.LeaveBalance),
			strconv.Itoa(e.ApprovedDays),
			strconv.Itoa(e.PendingDays),
		})
	}
	return render(table, "leave-balances-"+year, format)
}

func render(table export.Table, name string, format report.Format) (report.File, error) {
	switch format {
	case report.FormatXLSX:
		body, err := export.WriteXLSX(table)
		if err != nil {
			return report.File{}, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
		}
		return report.File{ContentType: export.ContentTypeXLSX, Filename: name + ".xlsx", Body: body}, nil
	case report.FormatPDF:
		body, err := export.WritePDF(table)
		if err != nil {
			return report.File{}, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
		}
		return report.File{ContentType: export.ContentTypePDF, Filename: name + ".pdf", Body: body}, nil
	default:
		return report.File{}, report.ErrUnsupportedFormat
	}
}
