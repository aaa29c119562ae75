package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stay-concierge/internal/data/entity"
	"stay-concierge/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *entity.Property) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Property, error)
	FindAll(ctx context.Context, filter entity.PropertyFilter, limit, offset int) ([]*entity.Property, error)
	Count(ctx context.Context, filter entity.PropertyFilter) (int64, error)
	Update(ctx context.Context, property *entity.Property) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Calendar
	UpdateBlockedDates(ctx context.Context, id uuid.UUID, dates []time.Time) error
}

type propertyRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPropertyRepository(db database.PgxIface, log *zap.Logger) PropertyRepository {
	return &propertyRepository{
		db:  db,
		log: log.With(zap.String("repository", "property")),
	}
}

const propertyColumns = `id, owner_id, title, description, city, address, max_guests, pets_allowed, min_nights,
	nightly_rate, cleaning_fee, tourist_tax, weekly_discount, monthly_discount, blocked_dates,
	is_active, created_at, updated_at, deleted_at`

func scanProperty(row rowScanner) (*entity.Property, error) {
	var p entity.Property
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Description,
		&p.City,
		&p.Address,
		&p.MaxGuests,
		&p.PetsAllowed,
		&p.MinNights,
		&p.NightlyRate,
		&p.CleaningFee,
		&p.TouristTaxPerNight,
		&p.WeeklyDiscount,
		&p.MonthlyDiscount,
		&p.BlockedDates,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// filterClause builds the WHERE clause and args shared by FindAll and Count.
func filterClause(filter entity.PropertyFilter) (string, []any) {
	conds := []string{"deleted_at IS NULL"}
	var args []any

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conds = append(conds, fmt.Sprintf("owner_id = $%d", len(args)))
	} else {
		conds = append(conds, "is_active")
	}
	if filter.City != "" {
		args = append(args, filter.City)
		conds = append(conds, fmt.Sprintf("LOWER(city) = LOWER($%d)", len(args)))
	}
	if filter.MinGuests > 0 {
		args = append(args, filter.MinGuests)
		conds = append(conds, fmt.Sprintf("max_guests >= $%d", len(args)))
	}

	return strings.Join(conds, " AND "), args
}

func (r *propertyRepository) Create(ctx context.Context, p *entity.Property) error {
	query := `
		INSERT INTO properties (id, owner_id, title, description, city, address, max_guests, pets_allowed,
		                        min_nights, nightly_rate, cleaning_fee, tourist_tax, weekly_discount,
		                        monthly_discount, blocked_dates, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.OwnerID,
		p.Title,
		p.Description,
		p.City,
		p.Address,
		p.MaxGuests,
		p.PetsAllowed,
		p.MinNights,
		p.NightlyRate,
		p.CleaningFee,
		p.TouristTaxPerNight,
		p.WeeklyDiscount,
		p.MonthlyDiscount,
		p.BlockedDates,
		p.IsActive,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create property",
			zap.Error(err),
			zap.String("owner_id", p.OwnerID.String()),
			zap.String("title", p.Title),
		)
		return fmt.Errorf("create property %s: %w", p.Title, err)
	}

	return nil
}

func (r *propertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1 AND deleted_at IS NULL`

	p, err := scanProperty(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find property by ID", zap.Error(err), zap.String("property_id", id.String()))
		return nil, fmt.Errorf("find property by ID %s: %w", id.String(), err)
	}

	return p, nil
}

func (r *propertyRepository) FindAll(ctx context.Context, filter entity.PropertyFilter, limit, offset int) ([]*entity.Property, error) {
	where, args := filterClause(filter)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM properties
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, propertyColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find properties",
			zap.Error(err),
			zap.String("city", filter.City),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find properties: %w", err)
	}
	defer rows.Close()

	var properties []*entity.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			r.log.Error("Failed to scan property row", zap.Error(err))
			return nil, fmt.Errorf("scan property row: %w", err)
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate property rows: %w", err)
	}

	return properties, nil
}

func (r *propertyRepository) Count(ctx context.Context, filter entity.PropertyFilter) (int64, error) {
	where, args := filterClause(filter)
	query := `SELECT COUNT(*) FROM properties WHERE ` + where

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count properties", zap.Error(err))
		return 0, fmt.Errorf("count properties: %w", err)
	}

	return count, nil
}

func (r *propertyRepository) Update(ctx context.Context, p *entity.Property) error {
	query := `
		UPDATE properties
		SET title = $2, description = $3, city = $4, address = $5, max_guests = $6,
		    pets_allowed = $7, min_nights = $8, nightly_rate = $9, cleaning_fee = $10,
		    tourist_tax = $11, weekly_discount = $12, monthly_discount = $13,
		    is_active = $14, updated_at = $15
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.City,
		p.Address,
		p.MaxGuests,
		p.PetsAllowed,
		p.MinNights,
		p.NightlyRate,
		p.CleaningFee,
		p.TouristTaxPerNight,
		p.WeeklyDiscount,
		p.MonthlyDiscount,
		p.IsActive,
		p.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update property", zap.Error(err), zap.String("property_id", p.ID.String()))
		return fmt.Errorf("update property %s: %w", p.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("property %s not found", p.ID.String())
	}

	return nil
}

func (r *propertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE properties SET deleted_at = NOW(), is_active = FALSE WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete property", zap.Error(err), zap.String("property_id", id.String()))
		return fmt.Errorf("delete property %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("property %s not found", id.String())
	}

	r.log.Info("Property deleted", zap.String("property_id", id.String()))
	return nil
}

func (r *propertyRepository) UpdateBlockedDates(ctx context.Context, id uuid.UUID, dates []time.Time) error {
	query := `UPDATE properties SET blocked_dates = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	if dates == nil {
		dates = []time.Time{}
	}

	result, err := r.db.Exec(ctx, query, id, dates)
	if err != nil {
		r.log.Error("Failed to update blocked dates",
			zap.Error(err),
			zap.String("property_id", id.String()),
			zap.Int("dates", len(dates)),
		)
		return fmt.Errorf("update blocked dates of property %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("property %s not found", id.String())
	}

	return nil
}
