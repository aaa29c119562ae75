package wire

import (
	"stay-concierge/internal/adaptor"
	"stay-concierge/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireProperty(r chi.Router, propertyHandler *adaptor.PropertyHandler, rt *routes) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/properties", propertyHandler.ListProperties)
	// owners may see their own inactive listing
	r.With(middleware.OptionalAuthSession(rt.repo.Session, rt.log)).Get("/api/properties/{id}", propertyHandler.GetProperty)
	r.Get("/api/properties/{id}/calendar", propertyHandler.GetCalendar)
	r.Get("/api/properties/{id}/addons", propertyHandler.ListAddOns)

	// ==================== OWNER / ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(rt.auth, rt.ownerOnly)

		r.Post("/api/properties", propertyHandler.CreateProperty)
		r.Put("/api/properties/{id}", propertyHandler.UpdateProperty)
		r.Delete("/api/properties/{id}", propertyHandler.DeleteProperty)
		r.Get("/api/owner/properties", propertyHandler.ListMyProperties)

		r.Post("/api/properties/{id}/blocked-dates", propertyHandler.BlockDates)
		r.Delete("/api/properties/{id}/blocked-dates", propertyHandler.UnblockDates)

		r.Post("/api/properties/{id}/addons", propertyHandler.CreateAddOn)
		r.Delete("/api/properties/{id}/addons/{addonId}", propertyHandler.DeleteAddOn)
	})
}
