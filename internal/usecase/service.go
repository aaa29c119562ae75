package usecase

import (
	"stay-concierge/internal/data/cache"
	"stay-concierge/internal/data/repository"
	"stay-concierge/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth        AuthService
	User        UserService
	Property    PropertyService
	Reservation ReservationService
	Message     MessageService
	Review      ReviewService
}

func NewService(repo *repository.Repository, availabilityCache cache.AvailabilityCache, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:        NewAuthService(repo, config, log),
		User:        NewUserService(repo.User, repo.Session, log),
		Property:    NewPropertyService(repo, availabilityCache, log),
		Reservation: NewReservationService(repo, availabilityCache, config, log),
		Message:     NewMessageService(repo, log),
		Review:      NewReviewService(repo, log),
	}
}
