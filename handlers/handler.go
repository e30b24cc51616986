package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"lindsay-precast/backend/design-service/logging"
	"lindsay-precast/backend/design-service/middleware"
	"lindsay-precast/backend/design-service/services"
)

// response is the JSON envelope every endpoint answers with.
type response struct {
	Success         bool                  `json:"success"`
	Message         string                `json:"message,omitempty"`
	Data            interface{}           `json:"data,omitempty"`
	Errors          []services.FieldError `json:"errors,omitempty"`
	ExistingProject *services.ProjectRef  `json:"existingProject,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func respondData(w http.ResponseWriter, status int, message string, data interface{}) {
	respondJSON(w, status, response{Success: true, Message: message, Data: data})
}

// respondError maps the service error taxonomy onto HTTP statuses and the
// structured payloads the clients expect.
func respondError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var conflictErr *services.ConflictError
	var preconditionErr *services.PreconditionError

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, response{
			Success: false,
			Message: "Validation error",
			Errors:  validationErr.Fields,
		})
	case errors.As(err, &notFoundErr):
		respondJSON(w, http.StatusNotFound, response{Success: false, Message: notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		respondJSON(w, http.StatusConflict, response{
			Success:         false,
			Message:         conflictErr.Message,
			ExistingProject: conflictErr.Existing,
		})
	case errors.As(err, &preconditionErr):
		respondJSON(w, http.StatusPreconditionFailed, response{Success: false, Message: preconditionErr.Message})
	default:
		logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: %v", err)
		respondJSON(w, http.StatusInternalServerError, response{Success: false, Message: "Internal server error"})
	}
}

// checkRole verifies the authenticated caller holds one of the allowed roles.
func checkRole(r *http.Request, allowedRoles []string) error {
	claims := middleware.ClaimsFromRequest(r)
	if claims == nil || claims.Role == "" {
		return fmt.Errorf("role is missing in request context")
	}

	for _, role := range allowedRoles {
		if role == claims.Role {
			return nil
		}
	}
	return fmt.Errorf("access forbidden: user does not have the required role")
}
