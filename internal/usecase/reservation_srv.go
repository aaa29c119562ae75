package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"stay-concierge/internal/data/cache"
	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/data/repository"
	"stay-concierge/internal/domain/availability"
	"stay-concierge/internal/domain/pricing"
	"stay-concierge/internal/dto/request"
	"stay-concierge/internal/dto/response"
	"stay-concierge/pkg/metrics"
	"stay-concierge/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// transitions lists the statuses an owner or admin may move a reservation to.
// Cancelled and completed are terminal.
var transitions = map[entity.ReservationStatus][]entity.ReservationStatus{
	entity.ReservationPending: {
		entity.ReservationConfirmed,
		entity.ReservationCancelled,
	},
	entity.ReservationConfirmed: {
		entity.ReservationCompleted,
		entity.ReservationCancelled,
		entity.ReservationPendingCancellation,
	},
	entity.ReservationPendingCancellation: {
		entity.ReservationCancelled,
		entity.ReservationConfirmed,
	},
}

func CanTransition(from, to entity.ReservationStatus) bool {
	return slices.Contains(transitions[from], to)
}

type ReservationService interface {
	QuoteReservation(ctx context.Context, propertyID string, req *request.QuoteRequest) (*response.QuoteResponse, error)
	CreateReservation(ctx context.Context, actor Actor, req *request.CreateReservationRequest) (*response.ReservationResponse, error)
	GetReservation(ctx context.Context, actor Actor, reservationID string) (*response.ReservationResponse, error)
	ListMyReservations(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error)
	// ListOwnerReservations covers the owner's properties; admins see every reservation.
	ListOwnerReservations(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error)
	UpdateStatus(ctx context.Context, actor Actor, reservationID string, req *request.UpdateReservationStatusRequest) (*response.ReservationResponse, error)
	RequestCancellation(ctx context.Context, actor Actor, reservationID string) (*response.ReservationResponse, error)
	PayReservation(ctx context.Context, actor Actor, reservationID string, req *request.PayReservationRequest) (*response.ReservationResponse, error)
}

type reservationService struct {
	repo    *repository.Repository
	cache   cache.AvailabilityCache
	pricing utils.PricingConfig
	now     func() time.Time
	log     *zap.Logger
}

func NewReservationService(
	repo *repository.Repository,
	availabilityCache cache.AvailabilityCache,
	config *utils.Config,
	log *zap.Logger,
) ReservationService {
	return &reservationService{
		repo:    repo,
		cache:   availabilityCache,
		pricing: config.Pricing,
		now:     time.Now,
		log:     log.With(zap.String("service", "reservation")),
	}
}

// stay is a validated, priced request against one property.
type stay struct {
	property  *entity.Property
	checkIn   time.Time
	checkOut  time.Time
	addOnIDs  []uuid.UUID
	breakdown pricing.Breakdown
}

func (s *reservationService) QuoteReservation(ctx context.Context, propertyID string, req *request.QuoteRequest) (*response.QuoteResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	st, err := s.prepareStay(ctx, propertyID, req)
	if err != nil {
		return nil, err
	}

	metrics.IncQuote()

	return &response.QuoteResponse{
		PropertyID: st.property.ID.String(),
		CheckIn:    utils.FormatDate(st.checkIn),
		CheckOut:   utils.FormatDate(st.checkOut),
		Guests:     req.Adults + req.Children,
		AddOnIDs:   uuidStrings(st.addOnIDs),
		Breakdown:  st.breakdown,
	}, nil
}

func (s *reservationService) CreateReservation(ctx context.Context, actor Actor, req *request.CreateReservationRequest) (*response.ReservationResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create reservation validation failed", zap.Error(err))
		return nil, err
	}
	if actor.Role != entity.RoleTraveler {
		return nil, fmt.Errorf("%w: only travelers can book a stay", ErrForbidden)
	}

	st, err := s.prepareStay(ctx, req.PropertyID, &req.QuoteRequest)
	if err != nil {
		return nil, err
	}

	today := availability.Day(s.now())
	if st.checkIn.Before(today) {
		return nil, invalid("check-in %s is in the past", utils.FormatDate(st.checkIn))
	}
	if st.property.OwnerID == actor.ID {
		return nil, invalid("cannot book your own property")
	}

	// Domain check first for a precise error; the insert re-checks under a lock.
	reservations, err := s.repo.Reservation.FindBlockingByProperty(ctx, st.property.ID, st.checkIn, st.checkOut)
	if err != nil {
		s.log.Error("Failed to load reservations", zap.Error(err))
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	if ok, conflicts := availability.IsRangeAvailable(toRanges(reservations), st.property.BlockedDates, st.checkIn, st.checkOut); !ok {
		metrics.IncReservation("unavailable")
		return nil, fmt.Errorf("%w: dates not available: %s", ErrConflict, strings.Join(formatDates(conflicts), ", "))
	}

	b := st.breakdown
	now := s.now()
	reservation := &entity.Reservation{
		BaseNoDelete:  entity.NewBaseNoDelete(now),
		OrderID:       utils.GenerateOrderID(),
		PropertyID:    st.property.ID,
		GuestID:       actor.ID,
		CheckIn:       st.checkIn,
		CheckOut:      st.checkOut,
		Adults:        req.Adults,
		Children:      req.Children,
		Infants:       req.Infants,
		Pets:          req.Pets,
		AddOnIDs:      st.addOnIDs,
		Subtotal:      b.Subtotal,
		Discount:      b.Discount,
		CleaningFee:   b.CleaningFee,
		AddOnsTotal:   b.AddOnsTotal,
		ServiceFee:    b.ServiceFee,
		TouristTax:    b.TouristTax,
		TotalAmount:   b.Total,
		Status:        entity.ReservationPending,
		PaymentStatus: entity.PaymentUnpaid,
	}

	if err := s.repo.Reservation.CreateIfAvailable(ctx, reservation); err != nil {
		if errors.Is(err, repository.ErrDatesUnavailable) {
			metrics.IncReservation("unavailable")
			return nil, fmt.Errorf("%w: %s", ErrConflict, err.Error())
		}
		metrics.IncReservation("failed")
		s.log.Error("Failed to create reservation", zap.Error(err), zap.String("guest_id", actor.ID.String()))
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	metrics.IncReservation("created")
	s.invalidate(ctx, reservation.PropertyID)

	s.log.Info("Reservation created",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("order_id", reservation.OrderID),
		zap.String("property_id", reservation.PropertyID.String()),
		zap.String("total", reservation.TotalAmount.String()),
	)

	resp := response.ReservationToResponse(reservation)
	return &resp, nil
}

func (s *reservationService) GetReservation(ctx context.Context, actor Actor, reservationID string) (*response.ReservationResponse, error) {
	reservation, err := s.load(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if reservation.GuestID != actor.ID && !actor.IsAdmin() {
		if _, err := s.managedProperty(ctx, actor, reservation); err != nil {
			return nil, err
		}
	}

	resp := response.ReservationToResponse(reservation)
	return &resp, nil
}

func (s *reservationService) ListMyReservations(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error) {
	limit, offset := req.Limit(), req.Offset()

	reservations, err := s.repo.Reservation.FindByGuest(ctx, actor.ID, limit, offset)
	if err != nil {
		s.log.Error("Failed to list guest reservations", zap.Error(err))
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	total, err := s.repo.Reservation.CountByGuest(ctx, actor.ID)
	if err != nil {
		s.log.Error("Failed to count guest reservations", zap.Error(err))
		return nil, fmt.Errorf("count reservations: %w", err)
	}

	return response.NewPaginatedResponse(toReservationResponses(reservations), req.Page, limit, total), nil
}

func (s *reservationService) ListOwnerReservations(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error) {
	limit, offset := req.Limit(), req.Offset()

	var ownerID *uuid.UUID
	if !actor.IsAdmin() {
		ownerID = &actor.ID
	}

	reservations, err := s.repo.Reservation.FindByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		s.log.Error("Failed to list owner reservations", zap.Error(err))
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	total, err := s.repo.Reservation.CountByOwner(ctx, ownerID)
	if err != nil {
		s.log.Error("Failed to count owner reservations", zap.Error(err))
		return nil, fmt.Errorf("count reservations: %w", err)
	}

	return response.NewPaginatedResponse(toReservationResponses(reservations), req.Page, limit, total), nil
}

func (s *reservationService) UpdateStatus(ctx context.Context, actor Actor, reservationID string, req *request.UpdateReservationStatusRequest) (*response.ReservationResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	reservation, err := s.load(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.managedProperty(ctx, actor, reservation); err != nil {
		return nil, err
	}

	to := entity.ReservationStatus(req.Status)
	if err := s.transition(ctx, reservation, to); err != nil {
		return nil, err
	}

	s.log.Info("Reservation status updated",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("status", string(to)),
		zap.String("by", actor.ID.String()),
	)

	resp := response.ReservationToResponse(reservation)
	return &resp, nil
}

// RequestCancellation cancels a pending stay outright; a confirmed stay
// waits for the owner in pending_cancellation.
func (s *reservationService) RequestCancellation(ctx context.Context, actor Actor, reservationID string) (*response.ReservationResponse, error) {
	reservation, err := s.load(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.GuestID != actor.ID {
		return nil, fmt.Errorf("%w: only the guest can cancel this reservation", ErrForbidden)
	}

	var to entity.ReservationStatus
	switch reservation.Status {
	case entity.ReservationPending:
		to = entity.ReservationCancelled
	case entity.ReservationConfirmed:
		to = entity.ReservationPendingCancellation
	default:
		return nil, fmt.Errorf("%w: reservation is %s", ErrConflict, reservation.Status)
	}

	if err := s.transition(ctx, reservation, to); err != nil {
		return nil, err
	}

	s.log.Info("Cancellation requested",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("status", string(to)),
	)

	resp := response.ReservationToResponse(reservation)
	return &resp, nil
}

func (s *reservationService) PayReservation(ctx context.Context, actor Actor, reservationID string, req *request.PayReservationRequest) (*response.ReservationResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	reservation, err := s.load(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.GuestID != actor.ID {
		return nil, fmt.Errorf("%w: only the guest can pay this reservation", ErrForbidden)
	}
	if reservation.Status != entity.ReservationPending && reservation.Status != entity.ReservationConfirmed {
		return nil, fmt.Errorf("%w: cannot pay a %s reservation", ErrConflict, reservation.Status)
	}
	if reservation.PaymentStatus != entity.PaymentUnpaid {
		return nil, fmt.Errorf("%w: reservation is already %s", ErrConflict, reservation.PaymentStatus)
	}
	if !req.Amount.Equal(reservation.TotalAmount) {
		return nil, invalid("amount %s does not match total %s", req.Amount.StringFixed(2), reservation.TotalAmount.StringFixed(2))
	}

	err = s.repo.Reservation.UpdatePaymentStatus(ctx, reservation.ID, entity.PaymentUnpaid, entity.PaymentPaid)
	if errors.Is(err, repository.ErrStatusChanged) {
		return nil, fmt.Errorf("%w: %s", ErrConflict, err.Error())
	}
	if err != nil {
		s.log.Error("Failed to record payment", zap.Error(err), zap.String("reservation_id", reservationID))
		return nil, fmt.Errorf("record payment: %w", err)
	}

	reservation.PaymentStatus = entity.PaymentPaid
	reservation.UpdatedAt = s.now()

	s.log.Info("Reservation paid",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("amount", req.Amount.StringFixed(2)),
	)

	resp := response.ReservationToResponse(reservation)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

func (s *reservationService) prepareStay(ctx context.Context, propertyID string, req *request.QuoteRequest) (*stay, error) {
	id, err := parseID(propertyID, "property")
	if err != nil {
		return nil, err
	}

	checkIn, err := utils.ParseDate(req.CheckIn)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	checkOut, err := utils.ParseDate(req.CheckOut)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}

	nights := pricing.Nights(checkIn, checkOut)
	if nights < 1 {
		return nil, invalid("check_out must be after check_in")
	}

	property, err := s.repo.Property.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find property", zap.Error(err), zap.String("property_id", propertyID))
		return nil, fmt.Errorf("find property: %w", err)
	}
	if property == nil || !property.IsActive {
		return nil, notFound("property")
	}

	if nights < property.MinNights {
		return nil, invalid("minimum stay is %d nights", property.MinNights)
	}
	if guests := req.Adults + req.Children; guests > property.MaxGuests {
		return nil, invalid("property sleeps at most %d guests, got %d", property.MaxGuests, guests)
	}
	if req.Pets > 0 && !property.PetsAllowed {
		return nil, invalid("pets are not allowed at this property")
	}

	addOnIDs, addOnPrices, err := s.resolveAddOns(ctx, property.ID, req.AddOnIDs)
	if err != nil {
		return nil, err
	}

	breakdown, err := pricing.Quote(pricing.Input{
		Nights:             nights,
		NightlyRate:        property.NightlyRate,
		CleaningFee:        property.CleaningFee,
		AddOns:             addOnPrices,
		ServiceFeeRate:     decimal.NewFromFloat(s.pricing.ServiceFeeRate),
		TouristTaxPerNight: property.TouristTaxPerNight,
		WeeklyDiscount:     property.WeeklyDiscount,
		MonthlyDiscount:    property.MonthlyDiscount,
		WeeklyThreshold:    s.pricing.WeeklyThreshold,
		MonthlyThreshold:   s.pricing.MonthlyThreshold,
	})
	if errors.Is(err, pricing.ErrInvalidStay) {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if err != nil {
		return nil, fmt.Errorf("quote stay: %w", err)
	}

	return &stay{
		property:  property,
		checkIn:   checkIn,
		checkOut:  checkOut,
		addOnIDs:  addOnIDs,
		breakdown: breakdown,
	}, nil
}

// resolveAddOns checks that every requested add-on is active on the property.
func (s *reservationService) resolveAddOns(ctx context.Context, propertyID uuid.UUID, raw []string) ([]uuid.UUID, []decimal.Decimal, error) {
	if len(raw) == 0 {
		return []uuid.UUID{}, nil, nil
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(r, "add-on")
		if err != nil {
			return nil, nil, err
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	addOns, err := s.repo.AddOn.FindByIDs(ctx, propertyID, ids)
	if err != nil {
		s.log.Error("Failed to load add-ons", zap.Error(err))
		return nil, nil, fmt.Errorf("load add-ons: %w", err)
	}
	if len(addOns) != len(ids) {
		return nil, nil, invalid("unknown or inactive add-on for this property")
	}

	prices := make([]decimal.Decimal, len(addOns))
	for i, a := range addOns {
		prices[i] = a.Price
	}
	return ids, prices, nil
}

// transition writes a status change as a compare-and-set and keeps the
// payment status and calendar cache in step.
func (s *reservationService) transition(ctx context.Context, reservation *entity.Reservation, to entity.ReservationStatus) error {
	from := reservation.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cannot move reservation from %s to %s", ErrConflict, from, to)
	}

	var err error
	if to.Blocking() && !from.Blocking() {
		// The dates were released while in from; take them back under the property lock.
		err = s.repo.Reservation.ReinstateIfAvailable(ctx, reservation, from, to)
	} else {
		err = s.repo.Reservation.UpdateStatus(ctx, reservation.ID, from, to)
	}
	if errors.Is(err, repository.ErrDatesUnavailable) {
		metrics.IncReservation("unavailable")
		return fmt.Errorf("%w: %s", ErrConflict, err.Error())
	}
	if errors.Is(err, repository.ErrStatusChanged) {
		return fmt.Errorf("%w: %s", ErrConflict, err.Error())
	}
	if err != nil {
		s.log.Error("Failed to update reservation status", zap.Error(err), zap.String("reservation_id", reservation.ID.String()))
		return fmt.Errorf("update status: %w", err)
	}

	reservation.Status = to
	reservation.UpdatedAt = s.now()

	if to == entity.ReservationCancelled && reservation.PaymentStatus == entity.PaymentPaid {
		err := s.repo.Reservation.UpdatePaymentStatus(ctx, reservation.ID, entity.PaymentPaid, entity.PaymentRefundPending)
		if err != nil {
			s.log.Error("Failed to flag refund", zap.Error(err), zap.String("reservation_id", reservation.ID.String()))
		} else {
			reservation.PaymentStatus = entity.PaymentRefundPending
		}
	}

	s.invalidate(ctx, reservation.PropertyID)
	return nil
}

func (s *reservationService) load(ctx context.Context, reservationID string) (*entity.Reservation, error) {
	id, err := parseID(reservationID, "reservation")
	if err != nil {
		return nil, err
	}

	reservation, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find reservation", zap.Error(err), zap.String("reservation_id", reservationID))
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	if reservation == nil {
		return nil, notFound("reservation")
	}
	return reservation, nil
}

// managedProperty returns the reserved property when actor owns it or is an admin.
func (s *reservationService) managedProperty(ctx context.Context, actor Actor, reservation *entity.Reservation) (*entity.Property, error) {
	property, err := s.repo.Property.FindByID(ctx, reservation.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("find property: %w", err)
	}
	if actor.IsAdmin() {
		return property, nil
	}
	if property == nil || property.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: not allowed to manage this reservation", ErrForbidden)
	}
	return property, nil
}

func (s *reservationService) invalidate(ctx context.Context, propertyID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, propertyID); err != nil {
		s.log.Warn("Calendar cache invalidation failed", zap.Error(err), zap.String("property_id", propertyID.String()))
	}
}

func toReservationResponses(reservations []*entity.Reservation) []response.ReservationResponse {
	items := make([]response.ReservationResponse, len(reservations))
	for i, r := range reservations {
		items[i] = response.ReservationToResponse(r)
	}
	return items
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
