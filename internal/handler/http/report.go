package http

import (
	"net/http"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/report"
	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/response"
)

type ReportHandler interface {
	// Monthly Attendance Report
	GetMonthlyAttendanceReport(w http.ResponseWriter, r *http.Request)

	// Leave Balance Report
	GetLeaveBalanceReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetMonthlyAttendanceReport handles GET /reports/attendance?month=YYYY-MM&format=
func (h *reportHandlerImpl) GetMonthlyAttendanceReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	req := report.AttendanceReportRequest{
		Month:  r.URL.Query().Get("month"),
		Format: r.URL.Query().Get("format"),
	}
	result, err := h.reportService.MonthlyAttendance(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// the service already rejected unknown formats
	format, _ := report.ParseFormat(req.Format)
	if format == report.FormatJSON {
		response.Success(w, result)
		return
	}

	file, err := h.reportService.RenderAttendance(result, format)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.File(w, file.ContentType, file.Filename, file.Body)
}

// GetLeaveBalanceReport handles GET /reports/leave-balances?year=YYYY&format=
func (h *reportHandlerImpl) GetLeaveBalanceReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	req := report.LeaveBalanceReportRequest{
		Year:   r.URL.Query().Get("year"),
		Format: r.URL.Query().Get("format"),
	}
	result, err := h.reportService.LeaveBalances(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	format, _ := report.ParseFormat(req.Format)
	if format == report.FormatJSON {
		response.Success(w, result)
		return
	}

	file, err := h.reportService.RenderLeaveBalances(result, format)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.File(w, file.ContentType, file.Filename, file.Body)
}
