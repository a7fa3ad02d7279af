package http

import (
	"net/http"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/dashboard"
	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/response"
)

type DashboardHandler interface {
	// GetStats returns the caller's role-specific dashboard counts
	GetStats(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// GetStats handles GET /dashboard/stats
func (h *dashboardHandlerImpl) GetStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	month := r.URL.Query().Get("month") // format: YYYY-MM, default: current month

	result, err := h.dashboardService.Stats(r.Context(), actor, dashboard.StatsRequest{Month: month})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
