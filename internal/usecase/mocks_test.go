package usecase

import (
	"context"
	"time"

	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/data/repository"
	"stay-concierge/internal/domain/availability"
	"stay-concierge/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mocks struct {
	user        *mockUserRepo
	session     *mockSessionRepo
	property    *mockPropertyRepo
	addOn       *mockAddOnRepo
	reservation *mockReservationRepo
	message     *mockMessageRepo
	review      *mockReviewRepo
	cache       *mockCache
}

func newMocks() (*mocks, *repository.Repository) {
	m := &mocks{
		user:        new(mockUserRepo),
		session:     new(mockSessionRepo),
		property:    new(mockPropertyRepo),
		addOn:       new(mockAddOnRepo),
		reservation: new(mockReservationRepo),
		message:     new(mockMessageRepo),
		review:      new(mockReviewRepo),
		cache:       new(mockCache),
	}
	repo := &repository.Repository{
		User:        m.user,
		Session:     m.session,
		Property:    m.property,
		AddOn:       m.addOn,
		Reservation: m.reservation,
		Message:     m.message,
		Review:      m.review,
	}
	return m, repo
}

func testConfig() *utils.Config {
	return &utils.Config{
		Session: utils.SessionConfig{ExpiryHours: 24},
		Pricing: utils.PricingConfig{ServiceFeeRate: 0.10, WeeklyThreshold: 7, MonthlyThreshold: 30},
	}
}

var nopLog = zap.NewNop()

// ---- users ----

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *mockUserRepo) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepo) FindByRoles(ctx context.Context, roles []entity.UserRole, limit int) ([]*entity.User, error) {
	args := m.Called(ctx, roles, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *mockUserRepo) FindFirstByRoles(ctx context.Context, roles []entity.UserRole) (*entity.User, error) {
	args := m.Called(ctx, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role entity.UserRole) error {
	return m.Called(ctx, id, role).Error(0)
}

// ---- sessions ----

type mockSessionRepo struct{ mock.Mock }

func (m *mockSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockSessionRepo) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *mockSessionRepo) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockSessionRepo) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockSessionRepo) CleanExpiredSessions(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// ---- properties ----

type mockPropertyRepo struct{ mock.Mock }

func (m *mockPropertyRepo) Create(ctx context.Context, property *entity.Property) error {
	return m.Called(ctx, property).Error(0)
}

func (m *mockPropertyRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Property), args.Error(1)
}

func (m *mockPropertyRepo) FindAll(ctx context.Context, filter entity.PropertyFilter, limit, offset int) ([]*entity.Property, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Property), args.Error(1)
}

func (m *mockPropertyRepo) Count(ctx context.Context, filter entity.PropertyFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPropertyRepo) Update(ctx context.Context, property *entity.Property) error {
	return m.Called(ctx, property).Error(0)
}

func (m *mockPropertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPropertyRepo) UpdateBlockedDates(ctx context.Context, id uuid.UUID, dates []time.Time) error {
	return m.Called(ctx, id, dates).Error(0)
}

// ---- add-ons ----

type mockAddOnRepo struct{ mock.Mock }

func (m *mockAddOnRepo) Create(ctx context.Context, addOn *entity.AddOn) error {
	return m.Called(ctx, addOn).Error(0)
}

func (m *mockAddOnRepo) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]*entity.AddOn, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.AddOn), args.Error(1)
}

func (m *mockAddOnRepo) FindByIDs(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) ([]*entity.AddOn, error) {
	args := m.Called(ctx, propertyID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.AddOn), args.Error(1)
}

func (m *mockAddOnRepo) Delete(ctx context.Context, propertyID, id uuid.UUID) error {
	return m.Called(ctx, propertyID, id).Error(0)
}

// ---- reservations ----

type mockReservationRepo struct{ mock.Mock }

func (m *mockReservationRepo) CreateIfAvailable(ctx context.Context, reservation *entity.Reservation) error {
	return m.Called(ctx, reservation).Error(0)
}

func (m *mockReservationRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Reservation), args.Error(1)
}

func (m *mockReservationRepo) FindByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	args := m.Called(ctx, guestID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Reservation), args.Error(1)
}

func (m *mockReservationRepo) CountByGuest(ctx context.Context, guestID uuid.UUID) (int64, error) {
	args := m.Called(ctx, guestID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReservationRepo) FindByOwner(ctx context.Context, ownerID *uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Reservation), args.Error(1)
}

func (m *mockReservationRepo) CountByOwner(ctx context.Context, ownerID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReservationRepo) FindBlockingByProperty(ctx context.Context, propertyID uuid.UUID, from, to time.Time) ([]*entity.Reservation, error) {
	args := m.Called(ctx, propertyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Reservation), args.Error(1)
}

func (m *mockReservationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.ReservationStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *mockReservationRepo) ReinstateIfAvailable(ctx context.Context, reservation *entity.Reservation, from, to entity.ReservationStatus) error {
	return m.Called(ctx, reservation, from, to).Error(0)
}

func (m *mockReservationRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, from, to entity.PaymentStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *mockReservationRepo) HasCompletedStay(ctx context.Context, guestID, propertyID uuid.UUID) (bool, error) {
	args := m.Called(ctx, guestID, propertyID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReservationRepo) FindOwnerIDsByGuest(ctx context.Context, guestID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *mockReservationRepo) FindGuestIDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// ---- messages ----

type mockMessageRepo struct{ mock.Mock }

func (m *mockMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *mockMessageRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Message), args.Error(1)
}

func (m *mockMessageRepo) FindInbox(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	args := m.Called(ctx, receiverID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Message), args.Error(1)
}

func (m *mockMessageRepo) CountInbox(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	args := m.Called(ctx, receiverID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessageRepo) FindConversation(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	args := m.Called(ctx, userID, otherID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Message), args.Error(1)
}

func (m *mockMessageRepo) CountConversation(ctx context.Context, userID, otherID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, id, receiverID uuid.UUID) error {
	return m.Called(ctx, id, receiverID).Error(0)
}

func (m *mockMessageRepo) CountUnread(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	args := m.Called(ctx, receiverID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessageRepo) FindPartnerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// ---- reviews ----

type mockReviewRepo struct{ mock.Mock }

func (m *mockReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockReviewRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *mockReviewRepo) FindByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	args := m.Called(ctx, propertyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Review), args.Error(1)
}

func (m *mockReviewRepo) FindByUserAndProperty(ctx context.Context, userID, propertyID uuid.UUID) (*entity.Review, error) {
	args := m.Called(ctx, userID, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *mockReviewRepo) CountByProperty(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, propertyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockReviewRepo) GetPropertyRatingStats(ctx context.Context, propertyID uuid.UUID) (float64, int64, error) {
	args := m.Called(ctx, propertyID)
	return args.Get(0).(float64), args.Get(1).(int64), args.Error(2)
}

// ---- cache ----

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, propertyID uuid.UUID, from, to time.Time) ([]availability.BlockedDate, bool, error) {
	args := m.Called(ctx, propertyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]availability.BlockedDate), args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, propertyID uuid.UUID, from, to time.Time, dates []availability.BlockedDate) error {
	return m.Called(ctx, propertyID, from, to, dates).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, propertyID uuid.UUID) error {
	return m.Called(ctx, propertyID).Error(0)
}
