package repository

import (
	"context"
	"errors"
	"fmt"

	"stay-concierge/internal/data/entity"
	"stay-concierge/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	FindByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*entity.Review, error)
	FindByUserAndProperty(ctx context.Context, userID, propertyID uuid.UUID) (*entity.Review, error)
	CountByProperty(ctx context.Context, propertyID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Business queries
	GetPropertyRatingStats(ctx context.Context, propertyID uuid.UUID) (float64, int64, error) // rating, count
}

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

const reviewColumns = `id, user_id, property_id, rating, comment, created_at`

func scanReview(row rowScanner) (*entity.Review, error) {
	var review entity.Review
	err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.PropertyID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, property_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		review.ID,
		review.UserID,
		review.PropertyID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("user_id", review.UserID.String()),
			zap.String("property_id", review.PropertyID.String()),
		)
		return fmt.Errorf("create review for property %s by user %s: %w",
			review.PropertyID.String(), review.UserID.String(), err)
	}

	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by ID",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return nil, fmt.Errorf("find review by ID %s: %w", id.String(), err)
	}

	return review, nil
}

func (r *reviewRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE property_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, propertyID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reviews by property",
			zap.Error(err),
			zap.String("property_id", propertyID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find reviews by property %s: %w", propertyID.String(), err)
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			r.log.Error("Failed to scan review row", zap.Error(err))
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

func (r *reviewRepository) FindByUserAndProperty(ctx context.Context, userID, propertyID uuid.UUID) (*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 AND property_id = $2 LIMIT 1`

	review, err := scanReview(r.db.QueryRow(ctx, query, userID, propertyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by user and property",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("property_id", propertyID.String()),
		)
		return nil, fmt.Errorf("find review by user %s and property %s: %w",
			userID.String(), propertyID.String(), err)
	}

	return review, nil
}

func (r *reviewRepository) CountByProperty(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM reviews WHERE property_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, propertyID).Scan(&count); err != nil {
		r.log.Error("Failed to count reviews by property",
			zap.Error(err),
			zap.String("property_id", propertyID.String()),
		)
		return 0, fmt.Errorf("count reviews by property %s: %w", propertyID.String(), err)
	}

	return count, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM reviews WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete review",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return fmt.Errorf("delete review %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s not found", id.String())
	}

	r.log.Info("Review deleted", zap.String("review_id", id.String()))
	return nil
}

func (r *reviewRepository) GetPropertyRatingStats(ctx context.Context, propertyID uuid.UUID) (float64, int64, error) {
	query := `
		SELECT
			COALESCE(AVG(rating), 0)::float8 AS avg_rating,
			COUNT(*) AS review_count
		FROM reviews
		WHERE property_id = $1
	`

	var avgRating float64
	var reviewCount int64
	err := r.db.QueryRow(ctx, query, propertyID).Scan(&avgRating, &reviewCount)
	if err != nil {
		r.log.Error("Failed to get property rating stats",
			zap.Error(err),
			zap.String("property_id", propertyID.String()),
		)
		return 0, 0, fmt.Errorf("get rating stats for property %s: %w", propertyID.String(), err)
	}

	return avgRating, reviewCount, nil
}
