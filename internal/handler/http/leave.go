package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/response"
)

type LeaveHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{leaveService: leaveService}
}

// List implements LeaveHandler.
func (h *leaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, limit, skip := pagination(r)
	filter := leave.LeaveFilter{
		EmployeeID: q.Get("employee_id"),
		Status:     q.Get("status"),
		Type:       q.Get("type"),
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
		Search:     q.Get("search"),
		Page:       page,
		Limit:      limit,
		Skip:       skip,
		SortBy:     q.Get("sort_by"),
		SortOrder:  q.Get("order"),
	}

	list, err := h.leaveService.List(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Requests, response.NewMeta(list.Page, list.Limit, list.Total))
}

// Get implements LeaveHandler.
func (h *leaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.leaveService.Get(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Create implements LeaveHandler.
func (h *leaveHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req leave.CreateLeaveRequest
	if !decodeJSON(w, r, "CreateLeaveRequest", &req) {
		return
	}

	result, err := h.leaveService.Create(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	slog.Info("Leave request created", "leave_id", result.ID, "employee_id", result.EmployeeID)
	response.Created(w, "Leave request created successfully", result)
}

// Update implements LeaveHandler.
func (h *leaveHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req leave.UpdateLeaveRequest
	if !decodeJSON(w, r, "UpdateLeaveRequest", &req) {
		return
	}

	result, err := h.leaveService.Update(r.Context(), actor, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request updated successfully", result)
}

// Delete implements LeaveHandler.
func (h *leaveHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.leaveService.Delete(r.Context(), actor, id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request deleted successfully", nil)
}

// Approve implements LeaveHandler.
func (h *leaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.leaveService.Approve(r.Context(), actor, id)
	if err != nil {
		slog.Warn("Leave approve failed", "leave_id", id, "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request approved", result)
}

// Reject implements LeaveHandler.
func (h *leaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req approval.DecisionRequest
	if !decodeOptionalJSON(w, r, "RejectLeaveRequest", &req) {
		return
	}

	result, err := h.leaveService.Reject(r.Context(), actor, id, req)
	if err != nil {
		slog.Warn("Leave reject failed", "leave_id", id, "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request rejected", result)
}
