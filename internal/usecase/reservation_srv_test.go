package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/data/repository"
	"stay-concierge/internal/dto/request"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newReservationService(t *testing.T) (*mocks, *reservationService) {
	t.Helper()
	m, repo := newMocks()
	srv := NewReservationService(repo, m.cache, testConfig(), nopLog).(*reservationService)
	srv.now = func() time.Time { return testNow }
	return m, srv
}

func testProperty(ownerID uuid.UUID) *entity.Property {
	return &entity.Property{
		Base:        entity.Base{ID: uuid.New()},
		OwnerID:     ownerID,
		Title:       "Lake cabin",
		City:        "Bandung",
		MaxGuests:   4,
		MinNights:   2,
		NightlyRate: decimal.NewFromInt(100),
		CleaningFee: decimal.NewFromInt(50),
		IsActive:    true,
	}
}

func createRequest(propertyID uuid.UUID) *request.CreateReservationRequest {
	return &request.CreateReservationRequest{
		PropertyID: propertyID.String(),
		QuoteRequest: request.QuoteRequest{
			CheckIn:  "2026-03-10",
			CheckOut: "2026-03-13",
			Adults:   2,
		},
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to entity.ReservationStatus
		want     bool
	}{
		{entity.ReservationPending, entity.ReservationConfirmed, true},
		{entity.ReservationPending, entity.ReservationCancelled, true},
		{entity.ReservationPending, entity.ReservationCompleted, false},
		{entity.ReservationConfirmed, entity.ReservationCompleted, true},
		{entity.ReservationConfirmed, entity.ReservationPendingCancellation, true},
		{entity.ReservationPendingCancellation, entity.ReservationConfirmed, true},
		{entity.ReservationPendingCancellation, entity.ReservationCancelled, true},
		{entity.ReservationCancelled, entity.ReservationConfirmed, false},
		{entity.ReservationCompleted, entity.ReservationCancelled, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestQuoteReservation(t *testing.T) {
	m, srv := newReservationService(t)
	property := testProperty(uuid.New())
	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)

	quote, err := srv.QuoteReservation(context.Background(), property.ID.String(), &request.QuoteRequest{
		CheckIn:  "2026-03-10",
		CheckOut: "2026-03-13",
		Adults:   2,
		Children: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, quote.Nights)
	assert.Equal(t, 3, quote.Guests)
	assert.True(t, quote.Subtotal.Equal(decimal.NewFromInt(300)), "subtotal %s", quote.Subtotal)
	assert.True(t, quote.ServiceFee.Equal(decimal.NewFromInt(35)), "service fee %s", quote.ServiceFee)
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(385)), "total %s", quote.Total)
	assert.Empty(t, quote.AddOnIDs)
}

func TestQuoteReservationRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *entity.Property, q *request.QuoteRequest)
	}{
		{"below minimum nights", func(p *entity.Property, q *request.QuoteRequest) { q.CheckOut = "2026-03-11" }},
		{"too many guests", func(p *entity.Property, q *request.QuoteRequest) { q.Adults, q.Children = 3, 2 }},
		{"pets not allowed", func(p *entity.Property, q *request.QuoteRequest) { q.Pets = 1 }},
		{"check-out before check-in", func(p *entity.Property, q *request.QuoteRequest) { q.CheckOut = "2026-03-09" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, srv := newReservationService(t)
			property := testProperty(uuid.New())
			q := &request.QuoteRequest{CheckIn: "2026-03-10", CheckOut: "2026-03-13", Adults: 2}
			tt.mutate(property, q)
			m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil).Maybe()

			_, err := srv.QuoteReservation(context.Background(), property.ID.String(), q)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestQuoteReservationInactiveProperty(t *testing.T) {
	m, srv := newReservationService(t)
	property := testProperty(uuid.New())
	property.IsActive = false
	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)

	_, err := srv.QuoteReservation(context.Background(), property.ID.String(), &request.QuoteRequest{
		CheckIn: "2026-03-10", CheckOut: "2026-03-13", Adults: 1,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuoteReservationUnknownAddOn(t *testing.T) {
	m, srv := newReservationService(t)
	property := testProperty(uuid.New())
	addOnID := uuid.New()
	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.addOn.On("FindByIDs", mock.Anything, property.ID, []uuid.UUID{addOnID}).Return([]*entity.AddOn{}, nil)

	_, err := srv.QuoteReservation(context.Background(), property.ID.String(), &request.QuoteRequest{
		CheckIn: "2026-03-10", CheckOut: "2026-03-13", Adults: 1, AddOnIDs: []string{addOnID.String()},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateReservation(t *testing.T) {
	m, srv := newReservationService(t)
	guest := Actor{ID: uuid.New(), Role: entity.RoleTraveler}
	property := testProperty(uuid.New())

	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.reservation.On("FindBlockingByProperty", mock.Anything, property.ID, mock.Anything, mock.Anything).Return(nil, nil)
	m.reservation.On("CreateIfAvailable", mock.Anything, mock.MatchedBy(func(r *entity.Reservation) bool {
		return r.GuestID == guest.ID && r.PropertyID == property.ID && r.TotalAmount.Equal(decimal.NewFromInt(385))
	})).Return(nil)
	m.cache.On("Invalidate", mock.Anything, property.ID).Return(nil)

	resp, err := srv.CreateReservation(context.Background(), guest, createRequest(property.ID))

	require.NoError(t, err)
	assert.Equal(t, entity.ReservationPending, resp.Status)
	assert.Equal(t, entity.PaymentUnpaid, resp.PaymentStatus)
	assert.Equal(t, "2026-03-10", resp.CheckIn)
	assert.NotEmpty(t, resp.OrderID)
	m.reservation.AssertExpectations(t)
	m.cache.AssertExpectations(t)
}

func TestCreateReservationOverlapIsConflict(t *testing.T) {
	m, srv := newReservationService(t)
	guest := Actor{ID: uuid.New(), Role: entity.RoleTraveler}
	property := testProperty(uuid.New())
	existing := &entity.Reservation{
		PropertyID: property.ID,
		CheckIn:    time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:     entity.ReservationConfirmed,
	}

	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.reservation.On("FindBlockingByProperty", mock.Anything, property.ID, mock.Anything, mock.Anything).
		Return([]*entity.Reservation{existing}, nil)

	_, err := srv.CreateReservation(context.Background(), guest, createRequest(property.ID))

	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "2026-03-12")
	m.reservation.AssertNotCalled(t, "CreateIfAvailable", mock.Anything, mock.Anything)
}

func TestCreateReservationManualBlockIsConflict(t *testing.T) {
	m, srv := newReservationService(t)
	guest := Actor{ID: uuid.New(), Role: entity.RoleTraveler}
	property := testProperty(uuid.New())
	property.BlockedDates = []time.Time{time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)}

	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.reservation.On("FindBlockingByProperty", mock.Anything, property.ID, mock.Anything, mock.Anything).Return(nil, nil)

	_, err := srv.CreateReservation(context.Background(), guest, createRequest(property.ID))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateReservationLostRace(t *testing.T) {
	m, srv := newReservationService(t)
	guest := Actor{ID: uuid.New(), Role: entity.RoleTraveler}
	property := testProperty(uuid.New())

	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.reservation.On("FindBlockingByProperty", mock.Anything, property.ID, mock.Anything, mock.Anything).Return(nil, nil)
	m.reservation.On("CreateIfAvailable", mock.Anything, mock.Anything).
		Return(fmt.Errorf("property %s: %w", property.ID, repository.ErrDatesUnavailable))

	_, err := srv.CreateReservation(context.Background(), guest, createRequest(property.ID))

	assert.ErrorIs(t, err, ErrConflict)
	m.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestCreateReservationRejections(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name    string
		actor   Actor
		checkIn string
		wantErr error
	}{
		{"owner role cannot book", Actor{ID: uuid.New(), Role: entity.RoleOwner}, "2026-03-10", ErrForbidden},
		{"check-in in the past", Actor{ID: uuid.New(), Role: entity.RoleTraveler}, "2026-02-20", ErrValidation},
		{"own property", Actor{ID: owner, Role: entity.RoleTraveler}, "2026-03-10", ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, srv := newReservationService(t)
			property := testProperty(owner)
			m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil).Maybe()

			req := createRequest(property.ID)
			req.CheckIn = tt.checkIn
			req.CheckOut = "2026-03-13"
			if tt.checkIn == "2026-02-20" {
				req.CheckOut = "2026-02-23"
			}

			_, err := srv.CreateReservation(context.Background(), tt.actor, req)
			assert.ErrorIs(t, err, tt.wantErr)
			m.reservation.AssertNotCalled(t, "CreateIfAvailable", mock.Anything, mock.Anything)
		})
	}
}

func testReservation(propertyID, guestID uuid.UUID, status entity.ReservationStatus, payment entity.PaymentStatus) *entity.Reservation {
	return &entity.Reservation{
		BaseNoDelete:  entity.BaseNoDelete{ID: uuid.New()},
		OrderID:       "RSV-TEST",
		PropertyID:    propertyID,
		GuestID:       guestID,
		CheckIn:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:      time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
		TotalAmount:   decimal.NewFromInt(385),
		Status:        status,
		PaymentStatus: payment,
	}
}

func TestUpdateStatusByOwner(t *testing.T) {
	m, srv := newReservationService(t)
	ownerID := uuid.New()
	property := testProperty(ownerID)
	reservation := testReservation(property.ID, uuid.New(), entity.ReservationPending, entity.PaymentUnpaid)

	m.reservation.On("FindByID", mock.Anything, reservation.ID).Return(reservation, nil)
	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.reservation.On("UpdateStatus", mock.Anything, reservation.ID, entity.ReservationPending, entity.ReservationConfirmed).Return(nil)
	m.cache.On("Invalidate", mock.Anything, property.ID).Return(nil)

	resp, err := srv.UpdateStatus(context.Background(), Actor{ID: ownerID, Role: entity.RoleOwner}, reservation.ID.String(),
		&request.UpdateReservationStatusRequest{Status: "confirmed"})

	require.NoError(t, err)
	assert.Equal(t, entity.ReservationConfirmed, resp.Status)
	m.cache.AssertExpectations(t)
}

func TestUpdateStatusRejectsOtherOwner(t *testing.T) {
	m, srv := newReservationService(t)
	property := testProperty(uuid.New())
	reservation := testReservation(property.ID, uuid.New(), entity.ReservationPending, entity.PaymentUnpaid)

	m.reservation.On("FindByID", mock.Anything, reservation.ID).Return(reservation, nil)
	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)

	_, err := srv.UpdateStatus(context.Background(), Actor{ID: uuid.New(), Role: entity.RoleOwner}, reservation.ID.String(),
		&request.UpdateReservationStatusRequest{Status: "confirmed"})

	assert.ErrorIs(t, err, ErrForbidden)
	m.reservation.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	m, srv := newReservationService(t)
	property := testProperty(uuid.New())
	reservation := testReservation(property.ID, uuid.New(), entity.ReservationCompleted, entity.PaymentPaid)

	m.reservation.On("FindByID", mock.Anything, reservation.ID).Return(reservation, nil)
	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)

	_, err := srv.UpdateStatus(context.Background(), Actor{ID: uuid.New(), Role: entity.RoleAdmin}, reservation.ID.String(),
		&request.UpdateReservationStatusRequest{Status: "confirmed"})

	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateStatusConcurrentChange(t *testing.T) {
	m, srv := newReservationService(t)
	property := testProperty(uuid.New())
	reservation := testReservation(property.ID, uuid.New(), entity.ReservationPending, entity.PaymentUnpaid)

	m.reservation.On("FindByID", mock.Anything, reservation.ID).Return(reservation, nil)
	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.reservation.On("UpdateStatus", mock.Anything, reservation.ID, entity.ReservationPending, entity.ReservationCancelled).
		Return(repository.ErrStatusChanged)

	_, err := srv.UpdateStatus(context.Background(), Actor{ID: uuid.New(), Role: entity.RoleAdmin}, reservation.ID.String(),
		&request.UpdateReservationStatusRequest{Status: "cancelled"})

	assert.ErrorIs(t, err, ErrConflict)
	m.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestUpdateStatusReinstateChecksAvailability(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{"dates still free", nil, nil},
		{"dates rebooked meanwhile", fmt.Errorf("%w: overlaps an existing reservation", repository.ErrDatesUnavailable), ErrConflict},
		{"status moved on", repository.ErrStatusChanged, ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, srv := newReservationService(t)
			ownerID := uuid.New()
			property := testProperty(ownerID)
			reservation := testReservation(property.ID, uuid.New(), entity.ReservationPendingCancellation, entity.PaymentPaid)

			m.reservation.On("FindByID", mock.Anything, reservation.ID).Return(reservation, nil)
			m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
			m.reservation.On("ReinstateIfAvailable", mock.Anything, reservation,
				entity.ReservationPendingCancellation, entity.ReservationConfirmed).Return(tt.repoErr)
			m.cache.On("Invalidate", mock.Anything, property.ID).Return(nil).Maybe()

			resp, err := srv.UpdateStatus(context.Background(), Actor{ID: ownerID, Role: entity.RoleOwner}, reservation.ID.String(),
				&request.UpdateReservationStatusRequest{Status: "confirmed"})

			m.reservation.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, entity.ReservationPendingCancellation, reservation.Status)
				m.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, entity.ReservationConfirmed, resp.Status)
		})
	}
}

func TestRequestCancellation(t *testing.T) {
	tests := []struct {
		name        string
		status      entity.ReservationStatus
		payment     entity.PaymentStatus
		wantStatus  string
		wantPayment string
	}{
		{"pending unpaid is cancelled", entity.ReservationPending, entity.PaymentUnpaid, "cancelled", "unpaid"},
		{"pending paid is refunded", entity.ReservationPending, entity.PaymentPaid, "cancelled", "refund_pending"},
		{"confirmed waits for owner", entity.ReservationConfirmed, entity.PaymentPaid, "pending_cancellation", "paid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, srv := newReservationService(t)
			guestID := uuid.New()
			reservation := testReservation(uuid.New(), guestID, tt.status, tt.payment)

			m.reservation.On("FindByID", mock.Anything, reservation.ID).Return(reservation, nil)
			m.reservation.On("UpdateStatus", mock.Anything, reservation.ID, tt.status, entity.ReservationStatus(tt.wantStatus)).Return(nil)
			m.reservation.On("UpdatePaymentStatus", mock.Anything, reservation.ID, entity.PaymentPaid, entity.PaymentRefundPending).Return(nil).Maybe()
			m.cache.On("Invalidate", mock.Anything, reservation.PropertyID).Return(nil)

			resp, err := srv.RequestCancellation(context.Background(), Actor{ID: guestID, Role: entity.RoleTraveler}, reservation.ID.String())

			require.NoError(t, err)
			assert.Equal(t, entity.ReservationStatus(tt.wantStatus), resp.Status)
			assert.Equal(t, entity.PaymentStatus(tt.wantPayment), resp.PaymentStatus)
		})
	}
}

func TestRequestCancellationByStranger(t *testing.T) {
	m, srv := newReservationService(t)
	reservation := testReservation(uuid.New(), uuid.New(), entity.ReservationPending, entity.PaymentUnpaid)
	m.reservation.On("FindByID", mock.Anything, reservation.ID).Return(reservation, nil)

	_, err := srv.RequestCancellation(context.Background(), Actor{ID: uuid.New(), Role: entity.RoleTraveler}, reservation.ID.String())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPayReservation(t *testing.T) {
	m, srv := newReservationService(t)
	guestID := uuid.New()
	reservation := testReservation(uuid.New(), guestID, entity.ReservationConfirmed, entity.PaymentUnpaid)

	m.reservation.On("FindByID", mock.Anything, reservation.ID).Return(reservation, nil)
	m.reservation.On("UpdatePaymentStatus", mock.Anything, reservation.ID, entity.PaymentUnpaid, entity.PaymentPaid).Return(nil)

	resp, err := srv.PayReservation(context.Background(), Actor{ID: guestID, Role: entity.RoleTraveler}, reservation.ID.String(),
		&request.PayReservationRequest{Amount: decimal.RequireFromString("385.00")})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, resp.PaymentStatus)
}

func TestPayReservationRejections(t *testing.T) {
	guestID := uuid.New()

	tests := []struct {
		name    string
		status  entity.ReservationStatus
		payment entity.PaymentStatus
		amount  string
		wantErr error
	}{
		{"wrong amount", entity.ReservationPending, entity.PaymentUnpaid, "300", ErrValidation},
		{"zero amount", entity.ReservationPending, entity.PaymentUnpaid, "0", ErrValidation},
		{"already paid", entity.ReservationConfirmed, entity.PaymentPaid, "385", ErrConflict},
		{"cancelled stay", entity.ReservationCancelled, entity.PaymentUnpaid, "385", ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, srv := newReservationService(t)
			reservation := testReservation(uuid.New(), guestID, tt.status, tt.payment)
			m.reservation.On("FindByID", mock.Anything, reservation.ID).Return(reservation, nil)

			_, err := srv.PayReservation(context.Background(), Actor{ID: guestID, Role: entity.RoleTraveler}, reservation.ID.String(),
				&request.PayReservationRequest{Amount: decimal.RequireFromString(tt.amount)})

			assert.ErrorIs(t, err, tt.wantErr)
			m.reservation.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestListOwnerReservationsAdminSeesAll(t *testing.T) {
	m, srv := newReservationService(t)
	m.reservation.On("FindByOwner", mock.Anything, (*uuid.UUID)(nil), 10, 0).Return([]*entity.Reservation{}, nil)
	m.reservation.On("CountByOwner", mock.Anything, (*uuid.UUID)(nil)).Return(int64(0), nil)

	resp, err := srv.ListOwnerReservations(context.Background(), Actor{ID: uuid.New(), Role: entity.RoleAdmin},
		&request.PaginatedRequest{Page: 1, PerPage: 10})

	require.NoError(t, err)
	assert.Empty(t, resp.Data)
	m.reservation.AssertExpectations(t)
}
