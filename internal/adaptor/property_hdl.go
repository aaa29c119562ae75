package adaptor

import (
	"net/http"
	"strings"

	"stay-concierge/internal/dto/request"
	"stay-concierge/internal/usecase"
	"stay-concierge/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PropertyHandler struct {
	service usecase.PropertyService
	log     *zap.Logger
}

func NewPropertyHandler(service usecase.PropertyService, log *zap.Logger) *PropertyHandler {
	return &PropertyHandler{
		service: service,
		log:     log.With(zap.String("handler", "property")),
	}
}

// ListProperties handles GET /api/properties?city=&min_guests=&page=&per_page=
func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.ListPropertiesRequest{
		PaginatedRequest: paginationFromQuery(r),
		City:             strings.TrimSpace(query.Get("city")),
		MinGuests:        utils.ParseInt(query.Get("min_guests"), 0),
	}

	properties, err := h.service.ListProperties(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list properties")
		return
	}

	utils.ResponseSuccess(w, "success", properties)
}

// GetProperty handles GET /api/properties/{id}. Auth is optional here.
func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	var viewer *usecase.Actor
	if actor, ok := actorFromContext(r); ok {
		viewer = &actor
	}

	property, err := h.service.GetProperty(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get property")
		return
	}

	utils.ResponseSuccess(w, "success", property)
}

// ListMyProperties handles GET /api/owner/properties
func (h *PropertyHandler) ListMyProperties(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req := paginationFromQuery(r)
	properties, err := h.service.ListMyProperties(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list own properties")
		return
	}

	utils.ResponseSuccess(w, "success", properties)
}

// CreateProperty handles POST /api/properties (owner/admin)
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.CreatePropertyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	property, err := h.service.CreateProperty(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create property")
		return
	}

	utils.ResponseCreated(w, "Property created successfully", property)
}

// UpdateProperty handles PUT /api/properties/{id} (owner/admin)
func (h *PropertyHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.UpdatePropertyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	property, err := h.service.UpdateProperty(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update property")
		return
	}

	utils.ResponseSuccess(w, "Property updated successfully", property)
}

// DeleteProperty handles DELETE /api/properties/{id} (owner/admin)
func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteProperty(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete property")
		return
	}

	utils.ResponseSuccess(w, "Property deleted successfully", nil)
}

// GetCalendar handles GET /api/properties/{id}/calendar?from=&to=
func (h *PropertyHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.CalendarRequest{
		From: query.Get("from"),
		To:   query.Get("to"),
	}

	calendar, err := h.service.GetCalendar(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, h.log, err, "get calendar")
		return
	}

	utils.ResponseSuccess(w, "success", calendar)
}

// BlockDates handles POST /api/properties/{id}/blocked-dates (owner/admin)
func (h *PropertyHandler) BlockDates(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.BlockDatesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	dates, err := h.service.BlockDates(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "block dates")
		return
	}

	utils.ResponseSuccess(w, "Dates blocked", map[string][]string{"blocked_dates": dates})
}

// UnblockDates handles DELETE /api/properties/{id}/blocked-dates (owner/admin)
func (h *PropertyHandler) UnblockDates(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.BlockDatesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	dates, err := h.service.UnblockDates(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "unblock dates")
		return
	}

	utils.ResponseSuccess(w, "Dates unblocked", map[string][]string{"blocked_dates": dates})
}

// ListAddOns handles GET /api/properties/{id}/addons
func (h *PropertyHandler) ListAddOns(w http.ResponseWriter, r *http.Request) {
	addOns, err := h.service.ListAddOns(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "list add-ons")
		return
	}

	utils.ResponseSuccess(w, "success", addOns)
}

// CreateAddOn handles POST /api/properties/{id}/addons (owner/admin)
func (h *PropertyHandler) CreateAddOn(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.CreateAddOnRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	addOn, err := h.service.CreateAddOn(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create add-on")
		return
	}

	utils.ResponseCreated(w, "Add-on created successfully", addOn)
}

// DeleteAddOn handles DELETE /api/properties/{id}/addons/{addonId} (owner/admin)
func (h *PropertyHandler) DeleteAddOn(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteAddOn(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "addonId"))
	if err != nil {
		handleServiceError(w, h.log, err, "delete add-on")
		return
	}

	utils.ResponseSuccess(w, "Add-on deleted successfully", nil)
}
