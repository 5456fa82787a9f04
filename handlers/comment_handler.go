package handlers

import (
	"net/http"

	"github.com/Dosada05/team-hub/services"
)

type CommentHandler struct {
	commentService services.CommentService
}

func NewCommentHandler(cs services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: cs}
}

func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AddCommentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	comment, err := h.commentService.AddComment(r.Context(), userID, eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"comment": comment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	thread, err := h.commentService.ListComments(r.Context(), userID, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, thread, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
