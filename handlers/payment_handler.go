package handlers

import (
	"net/http"

	"github.com/Dosada05/team-hub/models"
	"github.com/Dosada05/team-hub/services"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(ps services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

type createPaymentInput struct {
	AmountCents int64 `json:"amount_cents"`
}

type updatePaymentInput struct {
	Status models.PaymentStatus `json:"status"`
}

// CreatePayment godoc
// @Summary Создать платёж за событие
// @Tags payments
// @Description Один платёж на участника и событие, статус pending.
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param body body createPaymentInput true "Сумма в центах"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Платёж уже существует"
// @Security BearerAuth
// @Router /events/{eventID}/payments [post]
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input createPaymentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	payment, err := h.paymentService.CreatePayment(r.Context(), userID, eventID, input.AmountCents)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"payment": payment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdatePaymentStatus godoc
// @Summary Изменить статус платежа
// @Tags payments
// @Description pending→paid (плательщик или админ), paid→refunded (админ).
// @Accept json
// @Produce json
// @Param paymentID path string true "Payment ID"
// @Param body body updatePaymentInput true "Новый статус"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Платёж изменён параллельно"
// @Failure 422 {object} map[string]string "Недопустимый переход"
// @Security BearerAuth
// @Router /payments/{paymentID} [patch]
func (h *PaymentHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	paymentID, err := getUUIDFromURL(r, "paymentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updatePaymentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	payment, err := h.paymentService.UpdatePaymentStatus(r.Context(), userID, paymentID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"payment": payment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) ListEventPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	payments, err := h.paymentService.ListEventPayments(r.Context(), userID, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"payments": payments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) ListMyPendingPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	payments, err := h.paymentService.ListMyPendingPayments(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"payments": payments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
