package handlers

import (
	"net/http"

	"github.com/Dosada05/team-hub/models"
	"github.com/Dosada05/team-hub/services"
)

type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

func NewAttendanceHandler(as services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: as}
}

type voteInput struct {
	Status models.AttendanceStatus `json:"status"`
}

// Vote godoc
// @Summary Проголосовать за участие
// @Tags attendance
// @Description Повторный голос заменяет предыдущий.
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param body body voteInput true "attending или not_attending"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string "Голосование закрыто или неверный статус"
// @Security BearerAuth
// @Router /events/{eventID}/attendance [put]
func (h *AttendanceHandler) Vote(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input voteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	attendance, err := h.attendanceService.Vote(r.Context(), userID, eventID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"attendance": attendance}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AttendanceHandler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	list, err := h.attendanceService.ListAttendance(r.Context(), userID, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	attending, err := h.attendanceService.AttendeeCount(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"attendance": list, "attending_count": attending}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
