package handlers

import (
	"net/http"

	"github.com/Dosada05/team-hub/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(s services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: s}
}

// Stats godoc
// @Summary Статистика платформы
// @Tags admin
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Failure 403 {object} map[string]string "Только для администраторов"
// @Security BearerAuth
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.dashboardService.GetStats(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DashboardHandler) Player(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.GetPlayerDashboard(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, dashboard, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
