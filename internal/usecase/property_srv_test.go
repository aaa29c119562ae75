package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/domain/availability"
	"stay-concierge/internal/dto/request"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func newPropertyService() (*mocks, PropertyService) {
	m, repo := newMocks()
	return m, NewPropertyService(repo, m.cache, nopLog)
}

func TestCreatePropertyRequiresOwner(t *testing.T) {
	m, srv := newPropertyService()

	req := &request.CreatePropertyRequest{
		Title:       "Villa Ubud",
		City:        "Gianyar",
		Address:     "Jl. Raya Ubud 1",
		MaxGuests:   4,
		NightlyRate: decimal.NewFromInt(80),
	}

	_, err := srv.CreateProperty(context.Background(), Actor{ID: uuid.New(), Role: entity.RoleTraveler}, req)
	assert.ErrorIs(t, err, ErrForbidden)

	ownerID := uuid.New()
	m.property.On("Create", mock.Anything, mock.MatchedBy(func(p *entity.Property) bool {
		return p.OwnerID == ownerID && p.MinNights == 1 && p.IsActive
	})).Return(nil)

	resp, err := srv.CreateProperty(context.Background(), Actor{ID: ownerID, Role: entity.RoleOwner}, req)
	require.NoError(t, err)
	assert.Equal(t, "Villa Ubud", resp.Title)
	m.property.AssertExpectations(t)
}

func TestCreatePropertyRejectsBadRates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *request.CreatePropertyRequest)
	}{
		{"zero nightly rate", func(r *request.CreatePropertyRequest) { r.NightlyRate = decimal.Zero }},
		{"negative cleaning fee", func(r *request.CreatePropertyRequest) { r.CleaningFee = decimal.NewFromInt(-1) }},
		{"weekly discount over 100", func(r *request.CreatePropertyRequest) { r.WeeklyDiscount = decimal.NewFromInt(101) }},
		{"negative monthly discount", func(r *request.CreatePropertyRequest) { r.MonthlyDiscount = decimal.NewFromInt(-5) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, srv := newPropertyService()
			req := &request.CreatePropertyRequest{
				Title:       "Villa Ubud",
				City:        "Gianyar",
				Address:     "Jl. Raya Ubud 1",
				MaxGuests:   4,
				NightlyRate: decimal.NewFromInt(80),
			}
			tt.mutate(req)

			_, err := srv.CreateProperty(context.Background(), Actor{ID: uuid.New(), Role: entity.RoleOwner}, req)
			assert.ErrorIs(t, err, ErrValidation)
			m.property.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestGetPropertyHidesInactiveListing(t *testing.T) {
	m, srv := newPropertyService()
	ownerID := uuid.New()
	property := testProperty(ownerID)
	property.IsActive = false

	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.review.On("GetPropertyRatingStats", mock.Anything, property.ID).Return(4.5, int64(2), nil)
	m.addOn.On("FindByProperty", mock.Anything, property.ID).Return([]*entity.AddOn{}, nil)

	_, err := srv.GetProperty(context.Background(), nil, property.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)

	stranger := &Actor{ID: uuid.New(), Role: entity.RoleTraveler}
	_, err = srv.GetProperty(context.Background(), stranger, property.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)

	resp, err := srv.GetProperty(context.Background(), &Actor{ID: ownerID, Role: entity.RoleOwner}, property.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 4.5, resp.AverageRating)
	assert.Equal(t, int64(2), resp.ReviewCount)
}

func TestUpdatePropertyByStranger(t *testing.T) {
	m, srv := newPropertyService()
	property := testProperty(uuid.New())
	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)

	title := "Renamed"
	_, err := srv.UpdateProperty(context.Background(), Actor{ID: uuid.New(), Role: entity.RoleOwner}, property.ID.String(),
		&request.UpdatePropertyRequest{Title: &title})

	assert.ErrorIs(t, err, ErrForbidden)
	m.property.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestGetCalendarCacheHit(t *testing.T) {
	m, srv := newPropertyService()
	property := testProperty(uuid.New())
	cached := []availability.BlockedDate{{Date: day("2026-03-11"), Reason: availability.ReasonManual}}

	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.cache.On("Get", mock.Anything, property.ID, day("2026-03-01"), day("2026-04-01")).Return(cached, true, nil)

	resp, err := srv.GetCalendar(context.Background(), property.ID.String(), &request.CalendarRequest{From: "2026-03-01", To: "2026-04-01"})

	require.NoError(t, err)
	require.Len(t, resp.BlockedDates, 1)
	assert.Equal(t, "2026-03-11", resp.BlockedDates[0].Date)
	m.reservation.AssertNotCalled(t, "FindBlockingByProperty", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetCalendarCacheMissComputesAndStores(t *testing.T) {
	m, srv := newPropertyService()
	property := testProperty(uuid.New())
	property.BlockedDates = []time.Time{day("2026-03-20")}
	from, to := day("2026-03-01"), day("2026-04-01")

	booked := &entity.Reservation{
		CheckIn:  day("2026-03-10"),
		CheckOut: day("2026-03-12"),
		Status:   entity.ReservationConfirmed,
	}

	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.cache.On("Get", mock.Anything, property.ID, from, to).Return(nil, false, nil)
	m.reservation.On("FindBlockingByProperty", mock.Anything, property.ID, from, to).Return([]*entity.Reservation{booked}, nil)
	m.cache.On("Set", mock.Anything, property.ID, from, to, mock.MatchedBy(func(d []availability.BlockedDate) bool {
		return len(d) == 3
	})).Return(nil)

	resp, err := srv.GetCalendar(context.Background(), property.ID.String(), &request.CalendarRequest{From: "2026-03-01", To: "2026-04-01"})

	require.NoError(t, err)
	require.Len(t, resp.BlockedDates, 3)
	assert.Equal(t, "2026-03-10", resp.BlockedDates[0].Date)
	assert.Equal(t, "2026-03-11", resp.BlockedDates[1].Date)
	assert.Equal(t, "2026-03-20", resp.BlockedDates[2].Date)
	m.cache.AssertExpectations(t)
}

func TestGetCalendarCacheErrorFallsThrough(t *testing.T) {
	m, srv := newPropertyService()
	property := testProperty(uuid.New())

	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.cache.On("Get", mock.Anything, property.ID, mock.Anything, mock.Anything).Return(nil, false, errors.New("redis down"))
	m.reservation.On("FindBlockingByProperty", mock.Anything, property.ID, mock.Anything, mock.Anything).Return(nil, nil)
	m.cache.On("Set", mock.Anything, property.ID, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	resp, err := srv.GetCalendar(context.Background(), property.ID.String(), &request.CalendarRequest{From: "2026-03-01", To: "2026-03-08"})

	require.NoError(t, err)
	assert.Empty(t, resp.BlockedDates)
}

func TestGetCalendarRejectsBadWindow(t *testing.T) {
	_, srv := newPropertyService()
	id := uuid.New().String()

	_, err := srv.GetCalendar(context.Background(), id, &request.CalendarRequest{From: "2026-03-10", To: "2026-03-10"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = srv.GetCalendar(context.Background(), id, &request.CalendarRequest{From: "2026-01-01", To: "2027-06-01"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBlockDatesInvalidatesCache(t *testing.T) {
	m, srv := newPropertyService()
	ownerID := uuid.New()
	property := testProperty(ownerID)
	property.BlockedDates = []time.Time{day("2026-03-05")}

	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.property.On("UpdateBlockedDates", mock.Anything, property.ID, []time.Time{day("2026-03-01"), day("2026-03-05")}).Return(nil)
	m.cache.On("Invalidate", mock.Anything, property.ID).Return(nil)

	dates, err := srv.BlockDates(context.Background(), Actor{ID: ownerID, Role: entity.RoleOwner}, property.ID.String(),
		&request.BlockDatesRequest{Dates: []string{"2026-03-05", "2026-03-01"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-01", "2026-03-05"}, dates)
	m.cache.AssertExpectations(t)
}

func TestUnblockDatesRefusesReservedDate(t *testing.T) {
	m, srv := newPropertyService()
	ownerID := uuid.New()
	property := testProperty(ownerID)
	property.BlockedDates = []time.Time{day("2026-03-11")}

	booked := &entity.Reservation{
		CheckIn:  day("2026-03-10"),
		CheckOut: day("2026-03-12"),
		Status:   entity.ReservationPending,
	}

	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.reservation.On("FindBlockingByProperty", mock.Anything, property.ID, day("2026-03-11"), day("2026-03-12")).
		Return([]*entity.Reservation{booked}, nil)

	_, err := srv.UnblockDates(context.Background(), Actor{ID: ownerID, Role: entity.RoleOwner}, property.ID.String(),
		&request.BlockDatesRequest{Dates: []string{"2026-03-11"}})

	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "2026-03-11")
	m.property.AssertNotCalled(t, "UpdateBlockedDates", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnblockDatesReleasesManualDate(t *testing.T) {
	m, srv := newPropertyService()
	property := testProperty(uuid.New())
	property.BlockedDates = []time.Time{day("2026-03-11"), day("2026-03-12")}

	m.property.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	m.reservation.On("FindBlockingByProperty", mock.Anything, property.ID, mock.Anything, mock.Anything).Return(nil, nil)
	m.property.On("UpdateBlockedDates", mock.Anything, property.ID, []time.Time{day("2026-03-12")}).Return(nil)
	m.cache.On("Invalidate", mock.Anything, property.ID).Return(nil)

	dates, err := srv.UnblockDates(context.Background(), Actor{ID: uuid.New(), Role: entity.RoleAdmin}, property.ID.String(),
		&request.BlockDatesRequest{Dates: []string{"2026-03-11"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-12"}, dates)
}
