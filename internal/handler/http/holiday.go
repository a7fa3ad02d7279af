package http

import (
	"net/http"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/holiday"
	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/response"
)

type HolidayHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type holidayHandlerImpl struct {
	holidayService holiday.HolidayService
}

func NewHolidayHandler(holidayService holiday.HolidayService) HolidayHandler {
	return &holidayHandlerImpl{holidayService: holidayService}
}

// List handles GET /holidays?year=&month=&type=
func (h *holidayHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	page, limit, skip := pagination(r)
	filter := holiday.HolidayFilter{
		Year:  getIntQueryParam(r, "year", 0),
		Month: getIntQueryParam(r, "month", 0),
		Type:  r.URL.Query().Get("type"),
		Page:  page,
		Limit: limit,
		Skip:  skip,
	}

	list, err := h.holidayService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Holidays, response.NewMeta(list.Page, list.Limit, list.Total))
}

// Get handles GET /holidays/{id}
func (h *holidayHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.holidayService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Create handles POST /holidays
func (h *holidayHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req holiday.CreateHolidayRequest
	if !decodeJSON(w, r, "CreateHoliday", &req) {
		return
	}

	result, err := h.holidayService.Create(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Holiday created successfully", result)
}

// Update handles PUT /holidays/{id}
func (h *holidayHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req holiday.UpdateHolidayRequest
	if !decodeJSON(w, r, "UpdateHoliday", &req) {
		return
	}

	result, err := h.holidayService.Update(r.Context(), actor, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Holiday updated successfully", result)
}

// Delete handles DELETE /holidays/{id}
func (h *holidayHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.holidayService.Delete(r.Context(), actor, id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Holiday deleted successfully", nil)
}
