package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/project"
	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/response"
)

type ProjectHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Propose(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type projectHandlerImpl struct {
	proposalService project.ProposalService
}

func NewProjectHandler(proposalService project.ProposalService) ProjectHandler {
	return &projectHandlerImpl{proposalService: proposalService}
}

// List handles GET /projects
func (h *projectHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	page, limit, skip := pagination(r)
	filter := project.ProposalFilter{
		Status: r.URL.Query().Get("status"),
		Page:   page,
		Limit:  limit,
		Skip:   skip,
	}

	list, err := h.proposalService.List(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Proposals, response.NewMeta(list.Page, list.Limit, list.Total))
}

// Get handles GET /projects/{id}
func (h *projectHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.proposalService.Get(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Propose handles POST /projects
func (h *projectHandlerImpl) Propose(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req project.CreateProposalRequest
	if !decodeJSON(w, r, "ProposeProject", &req) {
		return
	}

	result, err := h.proposalService.Create(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	slog.Info("Project proposed", "proposal_id", result.ID)
	response.Created(w, "Project proposal submitted", result)
}

// Approve handles POST /projects/{id}/approve
func (h *projectHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.proposalService.Approve(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Project proposal approved", result)
}

// Delete handles DELETE /projects/{id}
func (h *projectHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.proposalService.Delete(r.Context(), actor, id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Project proposal deleted successfully", nil)
}
