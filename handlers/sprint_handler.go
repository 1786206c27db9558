package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/123jagadeesh/ProFlow/auth"
	"github.com/123jagadeesh/ProFlow/services"
)

type SprintHandler struct {
	service *services.SprintService
}

func NewSprintHandler(service *services.SprintService) *SprintHandler {
	return &SprintHandler{service: service}
}

func (h *SprintHandler) CreateSprint(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.SprintWrite) {
		writeMessage(w, http.StatusForbidden, "only administrators can create sprints")
		return
	}

	var input services.CreateSprintInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	sprint, err := h.service.CreateSprint(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sprint)
}

func (h *SprintHandler) GetSprints(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.SprintRead) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	sprints, err := h.service.GetSprints(r.Context(), actor, r.URL.Query().Get("projectId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sprints)
}

func (h *SprintHandler) GetSprintByID(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.SprintRead) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	sprint, err := h.service.GetSprintByID(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sprint)
}

func (h *SprintHandler) UpdateSprint(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.SprintWrite) {
		writeMessage(w, http.StatusForbidden, "only administrators can update sprints")
		return
	}

	var input services.UpdateSprintInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	sprint, err := h.service.UpdateSprint(r.Context(), actor, mux.Vars(r)["id"], input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sprint)
}

func (h *SprintHandler) DeleteSprint(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.SprintWrite) {
		writeMessage(w, http.StatusForbidden, "only administrators can delete sprints")
		return
	}

	if err := h.service.DeleteSprint(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Sprint deleted")
}

func (h *SprintHandler) AddIssue(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.SprintIssue) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	var input struct {
		SprintID string `json:"sprintId"`
		TaskID   string `json:"taskId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	sprint, err := h.service.AddIssue(r.Context(), actor, input.SprintID, input.TaskID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sprint)
}

func (h *SprintHandler) RemoveIssue(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.SprintIssue) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	var input struct {
		SprintID string `json:"sprintId"`
		TaskID   string `json:"taskId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	sprint, err := h.service.RemoveIssue(r.Context(), actor, input.SprintID, input.TaskID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sprint)
}
