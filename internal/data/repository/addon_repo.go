package repository

import (
	"context"
	"fmt"

	"stay-concierge/internal/data/entity"
	"stay-concierge/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AddOnRepository interface {
	Create(ctx context.Context, addOn *entity.AddOn) error
	FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]*entity.AddOn, error)
	FindByIDs(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) ([]*entity.AddOn, error)
	Delete(ctx context.Context, propertyID, id uuid.UUID) error
}

type addOnRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAddOnRepository(db database.PgxIface, log *zap.Logger) AddOnRepository {
	return &addOnRepository{
		db:  db,
		log: log.With(zap.String("repository", "addon")),
	}
}

const addOnColumns = `id, property_id, name, description, price, is_active, created_at, updated_at`

func (r *addOnRepository) Create(ctx context.Context, a *entity.AddOn) error {
	query := `
		INSERT INTO property_addons (id, property_id, name, description, price, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		a.ID,
		a.PropertyID,
		a.Name,
		a.Description,
		a.Price,
		a.IsActive,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create add-on",
			zap.Error(err),
			zap.String("property_id", a.PropertyID.String()),
			zap.String("name", a.Name),
		)
		return fmt.Errorf("create add-on %s: %w", a.Name, err)
	}

	return nil
}

func (r *addOnRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]*entity.AddOn, error) {
	query := `SELECT ` + addOnColumns + ` FROM property_addons WHERE property_id = $1 AND is_active ORDER BY name`

	rows, err := r.db.Query(ctx, query, propertyID)
	if err != nil {
		r.log.Error("Failed to find add-ons", zap.Error(err), zap.String("property_id", propertyID.String()))
		return nil, fmt.Errorf("find add-ons of property %s: %w", propertyID.String(), err)
	}

	return r.collect(rows)
}

// FindByIDs returns the active add-ons among ids that belong to the property.
func (r *addOnRepository) FindByIDs(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) ([]*entity.AddOn, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + addOnColumns + ` FROM property_addons WHERE property_id = $1 AND id = ANY($2) AND is_active`

	rows, err := r.db.Query(ctx, query, propertyID, ids)
	if err != nil {
		r.log.Error("Failed to find add-ons by IDs", zap.Error(err), zap.String("property_id", propertyID.String()))
		return nil, fmt.Errorf("find add-ons by IDs: %w", err)
	}

	return r.collect(rows)
}

func (r *addOnRepository) Delete(ctx context.Context, propertyID, id uuid.UUID) error {
	query := `UPDATE property_addons SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND property_id = $2 AND is_active`

	result, err := r.db.Exec(ctx, query, id, propertyID)
	if err != nil {
		r.log.Error("Failed to delete add-on", zap.Error(err), zap.String("addon_id", id.String()))
		return fmt.Errorf("delete add-on %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("add-on %s not found", id.String())
	}

	return nil
}

func (r *addOnRepository) collect(rows pgx.Rows) ([]*entity.AddOn, error) {
	defer rows.Close()

	var addOns []*entity.AddOn
	for rows.Next() {
		var a entity.AddOn
		err := rows.Scan(
			&a.ID,
			&a.PropertyID,
			&a.Name,
			&a.Description,
			&a.Price,
			&a.IsActive,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan add-on row", zap.Error(err))
			return nil, fmt.Errorf("scan add-on row: %w", err)
		}
		addOns = append(addOns, &a)
	}

	return addOns, rows.Err()
}
