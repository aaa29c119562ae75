package adaptor

import (
	"stay-concierge/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Property    *PropertyHandler
	Reservation *ReservationHandler
	Message     *MessageHandler
	Review      *ReviewHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(service.Auth, log),
		User:        NewUserHandler(service.User, log),
		Property:    NewPropertyHandler(service.Property, log),
		Reservation: NewReservationHandler(service.Reservation, log),
		Message:     NewMessageHandler(service.Message, log),
		Review:      NewReviewHandler(service.Review, log),
	}
}
