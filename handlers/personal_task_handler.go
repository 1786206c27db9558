package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/123jagadeesh/ProFlow/auth"
	"github.com/123jagadeesh/ProFlow/services"
)

type PersonalTaskHandler struct {
	service *services.PersonalTaskService
}

func NewPersonalTaskHandler(service *services.PersonalTaskService) *PersonalTaskHandler {
	return &PersonalTaskHandler{service: service}
}

func (h *PersonalTaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.PersonalTaskUse) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	var input services.PersonalTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	task, err := h.service.Create(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *PersonalTaskHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}

	tasks, err := h.service.List(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (h *PersonalTaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}

	task, err := h.service.Get(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *PersonalTaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}

	var input services.PersonalTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	task, err := h.service.Update(r.Context(), actor, mux.Vars(r)["id"], input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *PersonalTaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}

	if err := h.service.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Personal task removed")
}
