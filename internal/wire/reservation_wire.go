package wire

import (
	"stay-concierge/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireReservation(r chi.Router, reservationHandler *adaptor.ReservationHandler, rt *routes) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/properties/{id}/quote", reservationHandler.Quote)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(rt.auth)

		r.Post("/api/reservations", reservationHandler.CreateReservation)
		r.Get("/api/reservations", reservationHandler.ListMyReservations)
		r.Get("/api/reservations/{id}", reservationHandler.GetReservation)
		r.Post("/api/reservations/{id}/cancel", reservationHandler.Cancel)
		r.Post("/api/reservations/{id}/pay", reservationHandler.Pay)

		r.With(rt.ownerOnly).Get("/api/owner/reservations", reservationHandler.ListOwnerReservations)
		r.With(rt.ownerOnly).Put("/api/reservations/{id}/status", reservationHandler.UpdateStatus)
	})
}
