package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/123jagadeesh/ProFlow/services"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// AdminSignup creates a company and its admin in a single call.
func (h *AuthHandler) AdminSignup(w http.ResponseWriter, r *http.Request) {
	var input services.AdminSignupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	company, admin, err := h.service.RegisterCompany(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Company & admin registered",
		"company": company,
		"admin":   admin,
	})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, token, err := h.service.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":      user.ID,
			"name":    user.Name,
			"email":   user.Email,
			"role":    user.Role,
			"company": user.Company,
		},
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.service.ForgotPassword(r.Context(), input.Email); err != nil {
		writeError(w, err)
		return
	}

	// Same answer whether or not the address exists.
	writeMessage(w, http.StatusOK, "If the address is registered, a reset link has been sent")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.service.ResetPassword(r.Context(), input.Token, input.Password); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password updated")
}
