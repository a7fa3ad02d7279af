package report

import (
	"context"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

type ReportService interface {
	MonthlyAttendance(ctx context.Context, actor user.Principal, req AttendanceReportRequest) (AttendanceReport, error)
	LeaveBalances(ctx context.Context, actor user.Principal, req LeaveBalanceReportRequest) (LeaveBalanceReport, error)

	// Render turns a report into an xlsx or pdf file.
	RenderAttendance(r AttendanceReport, format Format) (File, error)
	RenderLeaveBalances(r LeaveBalanceReport, format Format) (File, error)
}
