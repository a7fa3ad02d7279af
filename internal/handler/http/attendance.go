package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/response"
)

type AttendanceHandler interface {
	Mark(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	ListEntries(w http.ResponseWriter, r *http.Request)
	AddEntry(w http.ResponseWriter, r *http.Request)
	DeleteEntry(w http.ResponseWriter, r *http.Request)

	Confirm(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService}
}

// Mark implements AttendanceHandler.
func (h *attendanceHandlerImpl) Mark(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req attendance.MarkAttendanceRequest
	if !decodeOptionalJSON(w, r, "MarkAttendance", &req) {
		return
	}

	record, err := h.attendanceService.Mark(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	slog.Info("Attendance marked", "record_id", record.ID, "employee_id", record.EmployeeID)
	response.SuccessWithMessage(w, "Attendance marked successfully", record)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, limit, skip := pagination(r)
	filter := attendance.AttendanceFilter{
		EmployeeID:     q.Get("employee_id"),
		StartDate:      q.Get("start_date"),
		EndDate:        q.Get("end_date"),
		Status:         q.Get("status"),
		ApprovalStatus: q.Get("approval_status"),
		Search:         q.Get("search"),
		Page:           page,
		Limit:          limit,
		Skip:           skip,
		SortBy:         q.Get("sort_by"),
		SortOrder:      q.Get("order"),
	}

	list, err := h.attendanceService.List(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Records, response.NewMeta(list.Page, list.Limit, list.Total))
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	record, err := h.attendanceService.Get(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, record)
}

// Create implements AttendanceHandler.
func (h *attendanceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req attendance.CreateAttendanceRequest
	if !decodeJSON(w, r, "CreateAttendance", &req) {
		return
	}

	record, err := h.attendanceService.Create(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Attendance record created successfully", record)
}

// Update implements AttendanceHandler.
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req attendance.UpdateAttendanceRequest
	if !decodeJSON(w, r, "UpdateAttendance", &req) {
		return
	}

	record, err := h.attendanceService.Update(r.Context(), actor, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance record updated successfully", record)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.attendanceService.Delete(r.Context(), actor, id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance record deleted successfully", nil)
}

// ListEntries implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListEntries(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.attendanceService.ListEntries(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, entries)
}

// AddEntry implements AttendanceHandler.
func (h *attendanceHandlerImpl) AddEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req attendance.CreateEntryRequest
	if !decodeJSON(w, r, "AddEntry", &req) {
		return
	}

	entry, err := h.attendanceService.AddEntry(r.Context(), actor, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Entry added successfully", entry)
}

// DeleteEntry implements AttendanceHandler.
func (h *attendanceHandlerImpl) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryId")
	if !ok {
		return
	}

	err := h.attendanceService.DeleteEntry(r.Context(), actor, id, entryID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Entry deleted successfully", nil)
}

// Confirm implements AttendanceHandler.
func (h *attendanceHandlerImpl) Confirm(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	record, err := h.attendanceService.Confirm(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance confirmed and submitted for approval", record)
}

// Approve implements AttendanceHandler.
func (h *attendanceHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	record, err := h.attendanceService.Approve(r.Context(), actor, id)
	if err != nil {
		slog.Warn("Attendance approve failed", "record_id", id, "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance record approved", record)
}

// Reject implements AttendanceHandler.
func (h *attendanceHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req approval.DecisionRequest
	if !decodeOptionalJSON(w, r, "RejectAttendance", &req) {
		return
	}

	record, err := h.attendanceService.Reject(r.Context(), actor, id, req)
	if err != nil {
		slog.Warn("Attendance reject failed", "record_id", id, "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance record rejected", record)
}
