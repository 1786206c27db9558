package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/123jagadeesh/ProFlow/auth"
	"github.com/123jagadeesh/ProFlow/services"
)

type EmployeeHandler struct {
	service *services.EmployeeService
}

func NewEmployeeHandler(service *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.EmployeeManage) {
		writeMessage(w, http.StatusForbidden, "admin access required")
		return
	}

	var input services.InviteEmployeeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	employee, err := h.service.CreateEmployee(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Employee created successfully",
		"employee": employee,
	})
}

func (h *EmployeeHandler) GetEmployees(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.EmployeeManage) {
		writeMessage(w, http.StatusForbidden, "admin access required")
		return
	}

	employees, err := h.service.GetEmployees(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"employees": employees})
}

func (h *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.EmployeeManage) {
		writeMessage(w, http.StatusForbidden, "admin access required")
		return
	}

	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid employee ID format")
		return
	}

	employee, err := h.service.GetUserInCompany(r.Context(), actor, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"employee": employee})
}
