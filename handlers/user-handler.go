package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"lindsay-precast/backend/design-service/middleware"
	"lindsay-precast/backend/design-service/services"
)

type UserHandler struct {
	Service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusCreated, "Account created successfully", map[string]interface{}{
		"id":    user.ID.Hex(),
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	token, user, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// An unknown email and a wrong password both answer the same way.
		var notFoundErr *services.NotFoundError
		var preconditionErr *services.PreconditionError
		if errors.As(err, &notFoundErr) || errors.As(err, &preconditionErr) {
			respondJSON(w, http.StatusUnauthorized, response{Success: false, Message: "Invalid credentials"})
			return
		}
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, "", LoginResponse{
		Token: token,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	})
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromRequest(r)
	if claims == nil {
		http.Error(w, "Invalid user identity", http.StatusUnauthorized)
		return
	}

	user, err := h.Service.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromRequest(r)
	if claims == nil {
		http.Error(w, "Invalid user identity", http.StatusUnauthorized)
		return
	}

	var changes map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.Service.UpdateProfile(r.Context(), claims.UserID, changes)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Profile updated successfully", user)
}
