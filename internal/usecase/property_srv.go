package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stay-concierge/internal/data/cache"
	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/data/repository"
	"stay-concierge/internal/domain/availability"
	"stay-concierge/internal/dto/request"
	"stay-concierge/internal/dto/response"
	"stay-concierge/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxCalendarDays bounds a single calendar query.
const maxCalendarDays = 366

type PropertyService interface {
	CreateProperty(ctx context.Context, actor Actor, req *request.CreatePropertyRequest) (*response.PropertyResponse, error)
	UpdateProperty(ctx context.Context, actor Actor, propertyID string, req *request.UpdatePropertyRequest) (*response.PropertyResponse, error)
	// GetProperty hides inactive listings unless viewer owns them or is an admin. viewer may be nil.
	GetProperty(ctx context.Context, viewer *Actor, propertyID string) (*response.PropertyResponse, error)
	ListProperties(ctx context.Context, req *request.ListPropertiesRequest) (*response.PaginatedResponse[response.PropertyResponse], error)
	ListMyProperties(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PropertyResponse], error)
	DeleteProperty(ctx context.Context, actor Actor, propertyID string) error

	// Concierge add-ons
	CreateAddOn(ctx context.Context, actor Actor, propertyID string, req *request.CreateAddOnRequest) (*response.AddOnResponse, error)
	ListAddOns(ctx context.Context, propertyID string) ([]response.AddOnResponse, error)
	DeleteAddOn(ctx context.Context, actor Actor, propertyID, addOnID string) error

	// Calendar
	GetCalendar(ctx context.Context, propertyID string, req *request.CalendarRequest) (*response.CalendarResponse, error)
	BlockDates(ctx context.Context, actor Actor, propertyID string, req *request.BlockDatesRequest) ([]string, error)
	UnblockDates(ctx context.Context, actor Actor, propertyID string, req *request.BlockDatesRequest) ([]string, error)
}

type propertyService struct {
	repo  *repository.Repository
	cache cache.AvailabilityCache
	log   *zap.Logger
}

func NewPropertyService(repo *repository.Repository, availabilityCache cache.AvailabilityCache, log *zap.Logger) PropertyService {
	return &propertyService{
		repo:  repo,
		cache: availabilityCache,
		log:   log.With(zap.String("service", "property")),
	}
}

func (s *propertyService) CreateProperty(ctx context.Context, actor Actor, req *request.CreatePropertyRequest) (*response.PropertyResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create property validation failed", zap.Error(err))
		return nil, err
	}
	if actor.Role != entity.RoleOwner && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only owners can list properties", ErrForbidden)
	}
	if err := checkRates(req.NightlyRate, req.CleaningFee, req.TouristTaxPerNight, req.WeeklyDiscount, req.MonthlyDiscount); err != nil {
		return nil, err
	}

	minNights := req.MinNights
	if minNights < 1 {
		minNights = 1
	}

	now := time.Now()
	property := &entity.Property{
		Base: entity.Base{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OwnerID:            actor.ID,
		Title:              req.Title,
		Description:        req.Description,
		City:               req.City,
		Address:            req.Address,
		MaxGuests:          req.MaxGuests,
		PetsAllowed:        req.PetsAllowed,
		MinNights:          minNights,
		NightlyRate:        req.NightlyRate,
		CleaningFee:        req.CleaningFee,
		TouristTaxPerNight: req.TouristTaxPerNight,
		WeeklyDiscount:     req.WeeklyDiscount,
		MonthlyDiscount:    req.MonthlyDiscount,
		BlockedDates:       []time.Time{},
		IsActive:           true,
	}

	if err := s.repo.Property.Create(ctx, property); err != nil {
		s.log.Error("Failed to create property", zap.Error(err), zap.String("owner_id", actor.ID.String()))
		return nil, fmt.Errorf("create property: %w", err)
	}

	s.log.Info("Property created",
		zap.String("property_id", property.ID.String()),
		zap.String("owner_id", actor.ID.String()),
		zap.String("city", property.City),
	)

	resp := response.PropertyToResponse(property)
	return &resp, nil
}

func (s *propertyService) UpdateProperty(ctx context.Context, actor Actor, propertyID string, req *request.UpdatePropertyRequest) (*response.PropertyResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	property, err := s.loadManaged(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		property.Title = *req.Title
	}
	if req.Description != nil {
		property.Description = *req.Description
	}
	if req.City != nil {
		property.City = *req.City
	}
	if req.Address != nil {
		property.Address = *req.Address
	}
	if req.MaxGuests != nil {
		property.MaxGuests = *req.MaxGuests
	}
	if req.PetsAllowed != nil {
		property.PetsAllowed = *req.PetsAllowed
	}
	if req.MinNights != nil {
		property.MinNights = *req.MinNights
	}
	if req.NightlyRate != nil {
		property.NightlyRate = *req.NightlyRate
	}
	if req.CleaningFee != nil {
		property.CleaningFee = *req.CleaningFee
	}
	if req.TouristTaxPerNight != nil {
		property.TouristTaxPerNight = *req.TouristTaxPerNight
	}
	if req.WeeklyDiscount != nil {
		property.WeeklyDiscount = *req.WeeklyDiscount
	}
	if req.MonthlyDiscount != nil {
		property.MonthlyDiscount = *req.MonthlyDiscount
	}
	if req.IsActive != nil {
		property.IsActive = *req.IsActive
	}

	if err := checkRates(property.NightlyRate, property.CleaningFee, property.TouristTaxPerNight, property.WeeklyDiscount, property.MonthlyDiscount); err != nil {
		return nil, err
	}

	property.UpdatedAt = time.Now()
	if err := s.repo.Property.Update(ctx, property); err != nil {
		s.log.Error("Failed to update property", zap.Error(err), zap.String("property_id", propertyID))
		return nil, fmt.Errorf("update property: %w", err)
	}

	s.log.Info("Property updated", zap.String("property_id", propertyID), zap.String("by", actor.ID.String()))

	resp := response.PropertyToResponse(property)
	return &resp, nil
}

func (s *propertyService) GetProperty(ctx context.Context, viewer *Actor, propertyID string) (*response.PropertyResponse, error) {
	property, err := s.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsActive && (viewer == nil || (viewer.ID != property.OwnerID && !viewer.IsAdmin())) {
		return nil, notFound("property")
	}

	resp := response.PropertyToResponse(property)

	avg, count, err := s.repo.Review.GetPropertyRatingStats(ctx, property.ID)
	if err != nil {
		s.log.Warn("Failed to load rating stats", zap.Error(err), zap.String("property_id", propertyID))
	} else {
		resp.AverageRating = avg
		resp.ReviewCount = count
	}

	addOns, err := s.repo.AddOn.FindByProperty(ctx, property.ID)
	if err != nil {
		s.log.Warn("Failed to load add-ons", zap.Error(err), zap.String("property_id", propertyID))
	}
	for _, a := range addOns {
		resp.AddOns = append(resp.AddOns, response.AddOnToResponse(a))
	}

	return &resp, nil
}

func (s *propertyService) ListProperties(ctx context.Context, req *request.ListPropertiesRequest) (*response.PaginatedResponse[response.PropertyResponse], error) {
	filter := entity.PropertyFilter{City: req.City, MinGuests: req.MinGuests}
	return s.list(ctx, filter, &req.PaginatedRequest)
}

func (s *propertyService) ListMyProperties(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PropertyResponse], error) {
	ownerID := actor.ID
	return s.list(ctx, entity.PropertyFilter{OwnerID: &ownerID}, req)
}

func (s *propertyService) list(ctx context.Context, filter entity.PropertyFilter, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PropertyResponse], error) {
	limit, offset := req.Limit(), req.Offset()

	properties, err := s.repo.Property.FindAll(ctx, filter, limit, offset)
	if err != nil {
		s.log.Error("Failed to list properties", zap.Error(err))
		return nil, fmt.Errorf("list properties: %w", err)
	}

	total, err := s.repo.Property.Count(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count properties", zap.Error(err))
		return nil, fmt.Errorf("count properties: %w", err)
	}

	items := make([]response.PropertyResponse, len(properties))
	for i, p := range properties {
		items[i] = response.PropertyToResponse(p)
	}

	return response.NewPaginatedResponse(items, req.Page, limit, total), nil
}

func (s *propertyService) DeleteProperty(ctx context.Context, actor Actor, propertyID string) error {
	property, err := s.loadManaged(ctx, actor, propertyID)
	if err != nil {
		return err
	}

	if err := s.repo.Property.Delete(ctx, property.ID); err != nil {
		s.log.Error("Failed to delete property", zap.Error(err), zap.String("property_id", propertyID))
		return fmt.Errorf("delete property: %w", err)
	}

	s.invalidate(ctx, property.ID)
	s.log.Info("Property deleted", zap.String("property_id", propertyID), zap.String("by", actor.ID.String()))
	return nil
}

func (s *propertyService) CreateAddOn(ctx context.Context, actor Actor, propertyID string, req *request.CreateAddOnRequest) (*response.AddOnResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, invalid("price must not be negative")
	}

	property, err := s.loadManaged(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}

	addOn := &entity.AddOn{
		BaseNoDelete: entity.NewBaseNoDelete(time.Now()),
		PropertyID:   property.ID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		IsActive:     true,
	}

	if err := s.repo.AddOn.Create(ctx, addOn); err != nil {
		s.log.Error("Failed to create add-on", zap.Error(err), zap.String("property_id", propertyID))
		return nil, fmt.Errorf("create add-on: %w", err)
	}

	resp := response.AddOnToResponse(addOn)
	return &resp, nil
}

func (s *propertyService) ListAddOns(ctx context.Context, propertyID string) ([]response.AddOnResponse, error) {
	property, err := s.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	addOns, err := s.repo.AddOn.FindByProperty(ctx, property.ID)
	if err != nil {
		s.log.Error("Failed to list add-ons", zap.Error(err), zap.String("property_id", propertyID))
		return nil, fmt.Errorf("list add-ons: %w", err)
	}

	items := make([]response.AddOnResponse, len(addOns))
	for i, a := range addOns {
		items[i] = response.AddOnToResponse(a)
	}
	return items, nil
}

func (s *propertyService) DeleteAddOn(ctx context.Context, actor Actor, propertyID, addOnID string) error {
	property, err := s.loadManaged(ctx, actor, propertyID)
	if err != nil {
		return err
	}

	id, err := parseID(addOnID, "add-on")
	if err != nil {
		return err
	}

	if err := s.repo.AddOn.Delete(ctx, property.ID, id); err != nil {
		s.log.Warn("Failed to delete add-on", zap.Error(err), zap.String("addon_id", addOnID))
		return notFound("add-on")
	}

	return nil
}

// GetCalendar serves the blocked dates in [from, to), reading through the cache.
func (s *propertyService) GetCalendar(ctx context.Context, propertyID string, req *request.CalendarRequest) (*response.CalendarResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	from, err := utils.ParseDate(req.From)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	to, err := utils.ParseDate(req.To)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	if !to.After(from) {
		return nil, invalid("to must be after from")
	}
	if to.Sub(from) > maxCalendarDays*24*time.Hour {
		return nil, invalid("calendar window is limited to %d days", maxCalendarDays)
	}

	property, err := s.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	if dates, ok, err := s.cache.Get(ctx, property.ID, from, to); err != nil {
		s.log.Warn("Calendar cache read failed", zap.Error(err), zap.String("property_id", propertyID))
	} else if ok {
		resp := response.CalendarToResponse(property.ID.String(), from, to, dates)
		return &resp, nil
	}

	ranges, err := s.blockingRanges(ctx, property.ID, from, to)
	if err != nil {
		return nil, err
	}

	dates := availability.BlockedDates(ranges, property.BlockedDates, from, to)

	if err := s.cache.Set(ctx, property.ID, from, to, dates); err != nil {
		s.log.Warn("Calendar cache write failed", zap.Error(err), zap.String("property_id", propertyID))
	}

	resp := response.CalendarToResponse(property.ID.String(), from, to, dates)
	return &resp, nil
}

func (s *propertyService) BlockDates(ctx context.Context, actor Actor, propertyID string, req *request.BlockDatesRequest) ([]string, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	dates, err := utils.ParseDates(req.Dates)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}

	property, err := s.loadManaged(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}

	updated := availability.Block(property.BlockedDates, dates)
	if err := s.repo.Property.UpdateBlockedDates(ctx, property.ID, updated); err != nil {
		s.log.Error("Failed to block dates", zap.Error(err), zap.String("property_id", propertyID))
		return nil, fmt.Errorf("block dates: %w", err)
	}

	s.invalidate(ctx, property.ID)
	s.log.Info("Dates blocked", zap.String("property_id", propertyID), zap.Int("dates", len(dates)))

	return formatDates(updated), nil
}

// UnblockDates refuses dates held by a pending or confirmed reservation;
// those free up only when the reservation is cancelled.
func (s *propertyService) UnblockDates(ctx context.Context, actor Actor, propertyID string, req *request.BlockDatesRequest) ([]string, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	dates, err := utils.ParseDates(req.Dates)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}

	property, err := s.loadManaged(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}

	from, to := dateSpan(dates)
	ranges, err := s.blockingRanges(ctx, property.ID, from, to)
	if err != nil {
		return nil, err
	}

	updated, err := availability.Unblock(property.BlockedDates, dates, ranges)
	if errors.Is(err, availability.ErrReservedDate) {
		return nil, fmt.Errorf("%w: %s", ErrConflict, err.Error())
	}
	if err != nil {
		return nil, fmt.Errorf("unblock dates: %w", err)
	}

	if err := s.repo.Property.UpdateBlockedDates(ctx, property.ID, updated); err != nil {
		s.log.Error("Failed to unblock dates", zap.Error(err), zap.String("property_id", propertyID))
		return nil, fmt.Errorf("unblock dates: %w", err)
	}

	s.invalidate(ctx, property.ID)
	s.log.Info("Dates unblocked", zap.String("property_id", propertyID), zap.Int("dates", len(dates)))

	return formatDates(updated), nil
}

// ==================== HELPER METHODS ====================

func (s *propertyService) load(ctx context.Context, propertyID string) (*entity.Property, error) {
	id, err := parseID(propertyID, "property")
	if err != nil {
		return nil, err
	}

	property, err := s.repo.Property.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find property", zap.Error(err), zap.String("property_id", propertyID))
		return nil, fmt.Errorf("find property: %w", err)
	}
	if property == nil {
		return nil, notFound("property")
	}
	return property, nil
}

// loadManaged loads a property the actor may change: its owner or an admin.
func (s *propertyService) loadManaged(ctx context.Context, actor Actor, propertyID string) (*entity.Property, error) {
	property, err := s.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.OwnerID != actor.ID && !actor.IsAdmin() {
		s.log.Warn("Property access denied",
			zap.String("property_id", propertyID),
			zap.String("user_id", actor.ID.String()))
		return nil, fmt.Errorf("%w: not the owner of this property", ErrForbidden)
	}
	return property, nil
}

func (s *propertyService) blockingRanges(ctx context.Context, propertyID uuid.UUID, from, to time.Time) ([]availability.Range, error) {
	reservations, err := s.repo.Reservation.FindBlockingByProperty(ctx, propertyID, from, to)
	if err != nil {
		s.log.Error("Failed to load reservations", zap.Error(err), zap.String("property_id", propertyID.String()))
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	return toRanges(reservations), nil
}

func (s *propertyService) invalidate(ctx context.Context, propertyID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, propertyID); err != nil {
		s.log.Warn("Calendar cache invalidation failed", zap.Error(err), zap.String("property_id", propertyID.String()))
	}
}

func toRanges(reservations []*entity.Reservation) []availability.Range {
	ranges := make([]availability.Range, len(reservations))
	for i, r := range reservations {
		ranges[i] = availability.Range{CheckIn: r.CheckIn, CheckOut: r.CheckOut, Status: string(r.Status)}
	}
	return ranges
}

// dateSpan returns the smallest [from, to) covering dates.
func dateSpan(dates []time.Time) (time.Time, time.Time) {
	from, to := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(from) {
			from = d
		}
		if d.After(to) {
			to = d
		}
	}
	return from, to.AddDate(0, 0, 1)
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = utils.FormatDate(d)
	}
	return out
}

var hundred = decimal.NewFromInt(100)

func checkRates(nightly, cleaning, touristTax, weekly, monthly decimal.Decimal) error {
	switch {
	case !nightly.IsPositive():
		return invalid("nightly_rate must be greater than 0")
	case cleaning.IsNegative():
		return invalid("cleaning_fee must not be negative")
	case touristTax.IsNegative():
		return invalid("tourist_tax_per_night must not be negative")
	case weekly.IsNegative() || weekly.GreaterThan(hundred):
		return invalid("weekly_discount must be between 0 and 100")
	case monthly.IsNegative() || monthly.GreaterThan(hundred):
		return invalid("monthly_discount must be between 0 and 100")
	}
	return nil
}
