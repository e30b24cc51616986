package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lindsay-precast/backend/design-service/middleware"
	"lindsay-precast/backend/design-service/models"
	"lindsay-precast/backend/design-service/services"
)

type ProjectHandler struct {
	Service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

// callerID extracts the authenticated user's id from the request claims.
func callerID(r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.ClaimsFromRequest(r)
	if claims == nil {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Invalid user identity", http.StatusUnauthorized)
		return
	}

	var input services.CreateProjectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	project, err := h.Service.CreateProject(r.Context(), input, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusCreated, "Project created successfully", map[string]interface{}{
		"id":            project.ID.Hex(),
		"projectNumber": project.ProjectNumber,
		"status":        project.Status,
		"createdAt":     project.CreatedAt,
	})
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	sortOrder := -1
	if q.Get("sortOrder") == "asc" {
		sortOrder = 1
	}

	filter := services.ProjectFilter{
		Status:     q.Get("status"),
		Type:       q.Get("type"),
		CustomerID: q.Get("customerId"),
		Search:     q.Get("search"),
		Page:       page,
		Limit:      limit,
		SortBy:     q.Get("sortBy"),
		SortOrder:  sortOrder,
	}

	projects, pagination, err := h.Service.ListProjects(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, "", map[string]interface{}{
		"projects":   projects,
		"pagination": pagination,
	})
}

// designerCanAccess reports whether a caller may read or modify the project.
// Designers are scoped to projects they created or are assigned to; every
// other role has full access.
func designerCanAccess(role, userID string, project *models.Project) bool {
	if role != "designer" {
		return true
	}
	return project.CreatedBy.Hex() == userID || project.AssignedTo.Hex() == userID
}

// checkProjectAccess applies the designer scoping for the authenticated caller.
func checkProjectAccess(r *http.Request, project *models.Project) bool {
	claims := middleware.ClaimsFromRequest(r)
	if claims == nil {
		return false
	}
	return designerCanAccess(claims.Role, claims.UserID, project)
}

func (h *ProjectHandler) GetProjectByID(w http.ResponseWriter, r *http.Request) {
	project, err := h.Service.GetProjectByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if !checkProjectAccess(r, project) {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}
	respondData(w, http.StatusOK, "", project)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.Service.GetProjectByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	if !checkProjectAccess(r, project) {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	var changes map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := h.Service.UpdateProject(r.Context(), mux.Vars(r)["id"], changes)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Project updated successfully", result)
}

func (h *ProjectHandler) SetProjectStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.ProjectStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	project, err := h.Service.SetProjectStatus(r.Context(), mux.Vars(r)["id"], body.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Project status updated", project)
}

func (h *ProjectHandler) SendToProduction(w http.ResponseWriter, r *http.Request) {
	project, err := h.Service.SendToProduction(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Project sent to production", project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	if err := h.Service.DeleteProject(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Project deleted successfully", nil)
}

// TrackTime handles the combined start/stop timer endpoint.
func (h *ProjectHandler) TrackTime(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Invalid user identity", http.StatusUnauthorized)
		return
	}

	var body struct {
		Action string `json:"action"`
		Notes  string `json:"notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	projectID := mux.Vars(r)["id"]

	switch body.Action {
	case "start":
		result, err := h.Service.StartTimer(r.Context(), projectID, userID, body.Notes)
		if err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, "", result)
	case "stop":
		result, err := h.Service.StopTimer(r.Context(), projectID, userID, body.Notes)
		if err != nil {
			// No running timer is a malformed request, not a failed
			// precondition gate.
			var preconditionErr *services.PreconditionError
			if errors.As(err, &preconditionErr) {
				respondJSON(w, http.StatusBadRequest, response{Success: false, Message: preconditionErr.Message})
				return
			}
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, "", result)
	default:
		respondJSON(w, http.StatusBadRequest, response{Success: false, Message: "Invalid action"})
	}
}

func (h *ProjectHandler) AllocateProjectNumber(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year <= 0 {
		year = h.Service.Now().Year()
	}

	number, err := h.Service.AllocateProjectNumber(r.Context(), year)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", map[string]string{"projectNumber": number})
}

func (h *ProjectHandler) AddRFI(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Invalid user identity", http.StatusUnauthorized)
		return
	}

	var body struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	rfi, err := h.Service.AddRFI(r.Context(), mux.Vars(r)["id"], body.Question, userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, "RFI added", rfi)
}

func (h *ProjectHandler) AnswerRFI(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Invalid user identity", http.StatusUnauthorized)
		return
	}

	var body struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	if err := h.Service.AnswerRFI(r.Context(), vars["id"], vars["rfiId"], body.Answer, userID); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "RFI answered", nil)
}
