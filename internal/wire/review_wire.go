package wire

import (
	"stay-concierge/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireReview(r chi.Router, reviewHandler *adaptor.ReviewHandler, rt *routes) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/properties/{id}/reviews", reviewHandler.GetPropertyReviews)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(rt.auth)

		r.Post("/api/properties/{id}/reviews", reviewHandler.CreateReview)
		r.Delete("/api/reviews/{id}", reviewHandler.DeleteReview)
	})
}
