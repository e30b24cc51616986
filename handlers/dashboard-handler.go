package handlers

import (
	"net/http"

	"lindsay-precast/backend/design-service/services"
)

type DashboardHandler struct {
	Service *services.ProjectService
}

func NewDashboardHandler(service *services.ProjectService) *DashboardHandler {
	return &DashboardHandler{Service: service}
}

func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetDashboardStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", stats)
}
