package repository

import (
	"stay-concierge/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User        UserRepository
	Session     SessionRepository
	Property    PropertyRepository
	AddOn       AddOnRepository
	Reservation ReservationRepository
	Message     MessageRepository
	Review      ReviewRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:        NewUserRepository(db, log),
		Session:     NewSessionRepository(db, log),
		Property:    NewPropertyRepository(db, log),
		AddOn:       NewAddOnRepository(db, log),
		Reservation: NewReservationRepository(db, log),
		Message:     NewMessageRepository(db, log),
		Review:      NewReviewRepository(db, log),
	}
}
