package usecase

import (
	"context"
	"fmt"
	"time"

	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/data/repository"
	"stay-concierge/internal/dto/request"
	"stay-concierge/internal/dto/response"
	"stay-concierge/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	CreateReview(ctx context.Context, actor Actor, propertyID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	GetPropertyReviews(ctx context.Context, propertyID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	DeleteReview(ctx context.Context, actor Actor, reviewID string) error
}

type reviewService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, log *zap.Logger) ReviewService {
	return &reviewService{
		repo: repo,
		log:  log.With(zap.String("service", "review")),
	}
}

// CreateReview requires a completed stay at the property and allows one review per guest.
func (s *reviewService) CreateReview(ctx context.Context, actor Actor, propertyID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create review validation failed", zap.Error(err))
		return nil, err
	}

	propertyUUID, err := parseID(propertyID, "property")
	if err != nil {
		return nil, err
	}

	// Check if property exists
	property, err := s.repo.Property.FindByID(ctx, propertyUUID)
	if err != nil {
		s.log.Error("Failed to find property", zap.Error(err), zap.String("property_id", propertyID))
		return nil, fmt.Errorf("find property: %w", err)
	}
	if property == nil {
		return nil, notFound("property")
	}

	stayed, err := s.repo.Reservation.HasCompletedStay(ctx, actor.ID, propertyUUID)
	if err != nil {
		s.log.Error("Failed to check completed stay", zap.Error(err))
		return nil, fmt.Errorf("check stay: %w", err)
	}
	if !stayed {
		return nil, fmt.Errorf("%w: only guests with a completed stay can review", ErrForbidden)
	}

	// Check if user has already reviewed this property
	existingReview, err := s.repo.Review.FindByUserAndProperty(ctx, actor.ID, propertyUUID)
	if err != nil {
		s.log.Error("Failed to check existing review", zap.Error(err))
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existingReview != nil {
		return nil, fmt.Errorf("%w: property already reviewed", ErrConflict)
	}

	review := &entity.Review{
		BaseSimple: entity.BaseSimple{
			ID:        utils.GenerateUUID(),
			CreatedAt: time.Now(),
		},
		UserID:     actor.ID,
		PropertyID: propertyUUID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		s.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("user_id", actor.ID.String()),
			zap.String("property_id", propertyID),
		)
		return nil, fmt.Errorf("create review: %w", err)
	}

	username := ""
	if user, _ := s.repo.User.FindByID(ctx, actor.ID); user != nil {
		username = user.Username
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("property_id", propertyID),
		zap.Int("rating", req.Rating),
	)

	resp := response.ReviewToResponse(review, username)
	return &resp, nil
}

func (s *reviewService) GetPropertyReviews(ctx context.Context, propertyID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	propertyUUID, err := parseID(propertyID, "property")
	if err != nil {
		return nil, err
	}

	limit, offset := req.Limit(), req.Offset()

	reviews, err := s.repo.Review.FindByProperty(ctx, propertyUUID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get property reviews",
			zap.Error(err),
			zap.String("property_id", propertyID),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get property reviews: %w", err)
	}

	total, err := s.repo.Review.CountByProperty(ctx, propertyUUID)
	if err != nil {
		s.log.Error("Failed to count property reviews", zap.Error(err))
		return nil, fmt.Errorf("count property reviews: %w", err)
	}

	usernames := s.usernames(ctx, reviews)

	items := make([]response.ReviewResponse, len(reviews))
	for i, review := range reviews {
		items[i] = response.ReviewToResponse(review, usernames[review.UserID])
	}

	return response.NewPaginatedResponse(items, req.Page, limit, total), nil
}

func (s *reviewService) DeleteReview(ctx context.Context, actor Actor, reviewID string) error {
	id, err := parseID(reviewID, "review")
	if err != nil {
		return err
	}

	review, err := s.repo.Review.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find review", zap.Error(err), zap.String("review_id", reviewID))
		return fmt.Errorf("find review: %w", err)
	}
	if review == nil {
		return notFound("review")
	}
	if review.UserID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("%w: only the author or an admin can delete a review", ErrForbidden)
	}

	if err := s.repo.Review.Delete(ctx, id); err != nil {
		s.log.Error("Failed to delete review", zap.Error(err), zap.String("review_id", reviewID))
		return fmt.Errorf("delete review: %w", err)
	}

	return nil
}

// usernames resolves review authors in one query; failures only drop the names.
func (s *reviewService) usernames(ctx context.Context, reviews []*entity.Review) map[uuid.UUID]string {
	ids := make([]uuid.UUID, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.UserID)
	}

	names := make(map[uuid.UUID]string, len(ids))
	users, err := s.repo.User.FindByIDs(ctx, ids)
	if err != nil {
		s.log.Warn("Failed to load review authors", zap.Error(err))
		return names
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names
}
