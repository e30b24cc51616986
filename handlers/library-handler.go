package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"lindsay-precast/backend/design-service/services"
)

type LibraryHandler struct {
	Service *services.LibraryService
}

func NewLibraryHandler(service *services.LibraryService) *LibraryHandler {
	return &LibraryHandler{Service: service}
}

func (h *LibraryHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"engineer", "manager"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Invalid user identity", http.StatusUnauthorized)
		return
	}

	var input services.CreateTemplateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	template, err := h.Service.CreateTemplate(r.Context(), input, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusCreated, "Template created successfully", map[string]interface{}{
		"id":           template.ID.Hex(),
		"templateName": template.TemplateName,
	})
}

func (h *LibraryHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	activeOnly := q.Get("active") != "false"

	templates, err := h.Service.ListTemplates(r.Context(), q.Get("category"), activeOnly)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", templates)
}

func (h *LibraryHandler) GetTemplateByID(w http.ResponseWriter, r *http.Request) {
	template, err := h.Service.GetTemplateByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", template)
}

// UseTemplate bumps the usage counter when a template is pulled into a design.
func (h *LibraryHandler) UseTemplate(w http.ResponseWriter, r *http.Request) {
	template, err := h.Service.UseTemplate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Template usage recorded", template)
}

func (h *LibraryHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"engineer", "manager"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	var changes map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	template, err := h.Service.UpdateTemplate(r.Context(), mux.Vars(r)["id"], changes)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Template updated successfully", template)
}

func (h *LibraryHandler) DeactivateTemplate(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	if err := h.Service.DeactivateTemplate(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Template deactivated", nil)
}
