package adaptor

import (
	"net/http"

	"stay-concierge/internal/dto/request"
	"stay-concierge/internal/usecase"
	"stay-concierge/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service usecase.ReservationService
	log     *zap.Logger
}

func NewReservationHandler(service usecase.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log.With(zap.String("handler", "reservation")),
	}
}

// Quote handles POST /api/properties/{id}/quote (public)
func (h *ReservationHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req request.QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quote, err := h.service.QuoteReservation(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "quote reservation")
		return
	}

	utils.ResponseSuccess(w, "success", quote)
}

// CreateReservation handles POST /api/reservations
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.CreateReservationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reservation, err := h.service.CreateReservation(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create reservation")
		return
	}

	utils.ResponseCreated(w, "Reservation created successfully", reservation)
}

// ListMyReservations handles GET /api/reservations
func (h *ReservationHandler) ListMyReservations(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req := paginationFromQuery(r)
	reservations, err := h.service.ListMyReservations(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list reservations")
		return
	}

	utils.ResponseSuccess(w, "success", reservations)
}

// ListOwnerReservations handles GET /api/owner/reservations (owner/admin)
func (h *ReservationHandler) ListOwnerReservations(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req := paginationFromQuery(r)
	reservations, err := h.service.ListOwnerReservations(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list owner reservations")
		return
	}

	utils.ResponseSuccess(w, "success", reservations)
}

// GetReservation handles GET /api/reservations/{id}
func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	reservation, err := h.service.GetReservation(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get reservation")
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}

// UpdateStatus handles PUT /api/reservations/{id}/status (owner/admin)
func (h *ReservationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.UpdateReservationStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reservation, err := h.service.UpdateStatus(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update reservation status")
		return
	}

	utils.ResponseSuccess(w, "Reservation status updated", reservation)
}

// Cancel handles POST /api/reservations/{id}/cancel (guest)
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	reservation, err := h.service.RequestCancellation(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "cancel reservation")
		return
	}

	utils.ResponseSuccess(w, "Cancellation processed", reservation)
}

// Pay handles POST /api/reservations/{id}/pay (guest)
func (h *ReservationHandler) Pay(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.PayReservationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reservation, err := h.service.PayReservation(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "pay reservation")
		return
	}

	utils.ResponseSuccess(w, "Payment recorded", reservation)
}
