package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/response"
)

type EmployeeHandler interface {
	ListEmployees(w http.ResponseWriter, r *http.Request)
	GetEmployee(w http.ResponseWriter, r *http.Request)
	CreateEmployee(w http.ResponseWriter, r *http.Request)
	UpdateEmployee(w http.ResponseWriter, r *http.Request)
	DeleteEmployee(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &employeeHandlerImpl{employeeService: employeeService}
}

// ListEmployees implements EmployeeHandler
func (h *employeeHandlerImpl) ListEmployees(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, limit, skip := pagination(r)
	filter := employee.EmployeeFilter{
		Search:     q.Get("search"),
		Role:       q.Get("role"),
		Department: q.Get("department"),
		Status:     q.Get("status"),
		ManagerID:  q.Get("manager_id"),
		Page:       page,
		Limit:      limit,
		Skip:       skip,
		SortBy:     q.Get("sort_by"),
		SortOrder:  q.Get("order"),
	}

	list, err := h.employeeService.List(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Employees, response.NewMeta(list.Page, list.Limit, list.Total))
}

// GetEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) GetEmployee(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.employeeService.Get(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// CreateEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req employee.CreateEmployeeRequest
	if !decodeJSON(w, r, "CreateEmployee", &req) {
		return
	}

	result, err := h.employeeService.Create(r.Context(), actor, req)
	if err != nil {
		slog.Error("CreateEmployee service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Employee created successfully", result)
}

// UpdateEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req employee.UpdateEmployeeRequest
	if !decodeJSON(w, r, "UpdateEmployee", &req) {
		return
	}

	result, err := h.employeeService.Update(r.Context(), actor, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee updated successfully", result)
}

// DeleteEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.employeeService.Delete(r.Context(), actor, id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee deleted successfully", nil)
}
