package handlers

import (
	"net/http"

	"github.com/Dosada05/team-hub/services"
)

type EventHandler struct {
	eventService services.EventService
}

func NewEventHandler(es services.EventService) *EventHandler {
	return &EventHandler{eventService: es}
}

// CreateEvent godoc
// @Summary Создать событие
// @Tags events
// @Description Только администратор команды. Событие создаётся неподтверждённым.
// @Accept json
// @Produce json
// @Param teamID path string true "Team ID"
// @Param body body services.CreateEventInput true "Данные события"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Не администратор команды"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /teams/{teamID}/events [post]
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), userID, teamID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTeamEvents godoc
// @Summary События команды
// @Tags events
// @Produce json
// @Param teamID path string true "Team ID"
// @Param confirmed query bool false "Только подтверждённые (true) или только ожидающие (false)"
// @Param upcoming query bool false "Только будущие"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teams/{teamID}/events [get]
func (h *EventHandler) ListTeamEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	confirmed, err := queryBool(r, "confirmed")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	upcoming, err := queryBool(r, "upcoming")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filter := services.EventListFilter{Confirmed: confirmed, Upcoming: upcoming != nil && *upcoming}
	events, err := h.eventService.ListTeamEvents(r.Context(), userID, teamID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.eventService.GetEventSummary(r.Context(), userID, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, summary, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var patch services.EventPatch
	if err := readJSON(w, r, &patch); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), userID, eventID, patch)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ConfirmEvent godoc
// @Summary Подтвердить событие
// @Tags events
// @Description Идемпотентно: повторное подтверждение возвращает 200.
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /events/{eventID}/confirm [post]
func (h *EventHandler) ConfirmEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.ConfirmEvent(r.Context(), userID, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.eventService.DeleteEvent(r.Context(), userID, eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
