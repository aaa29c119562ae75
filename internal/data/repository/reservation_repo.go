package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/domain/availability"
	"stay-concierge/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	// ErrDatesUnavailable is returned when a stay overlaps a blocking reservation or a manual block.
	ErrDatesUnavailable = errors.New("dates unavailable")
	// ErrStatusChanged is returned when a compare-and-set status write loses a race.
	ErrStatusChanged = errors.New("status changed concurrently")
)

type ReservationRepository interface {
	CreateIfAvailable(ctx context.Context, reservation *entity.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
	FindByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Reservation, error)
	CountByGuest(ctx context.Context, guestID uuid.UUID) (int64, error)
	// FindByOwner lists reservations on the owner's properties; a nil owner lists all.
	FindByOwner(ctx context.Context, ownerID *uuid.UUID, limit, offset int) ([]*entity.Reservation, error)
	CountByOwner(ctx context.Context, ownerID *uuid.UUID) (int64, error)

	// Business queries
	FindBlockingByProperty(ctx context.Context, propertyID uuid.UUID, from, to time.Time) ([]*entity.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.ReservationStatus) error
	ReinstateIfAvailable(ctx context.Context, reservation *entity.Reservation, from, to entity.ReservationStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, from, to entity.PaymentStatus) error
	HasCompletedStay(ctx context.Context, guestID, propertyID uuid.UUID) (bool, error)
	FindOwnerIDsByGuest(ctx context.Context, guestID uuid.UUID) ([]uuid.UUID, error)
	FindGuestIDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
}

type reservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationRepository(db database.PgxIface, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

const reservationColumns = `r.id, r.order_id, r.property_id, r.guest_id, r.check_in, r.check_out,
	r.adults, r.children, r.infants, r.pets, r.addon_ids, r.subtotal, r.discount, r.cleaning_fee,
	r.addons_total, r.service_fee, r.tourist_tax, r.total_amount, r.status, r.payment_status,
	r.created_at, r.updated_at`

func scanReservation(row rowScanner) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(
		&res.ID,
		&res.OrderID,
		&res.PropertyID,
		&res.GuestID,
		&res.CheckIn,
		&res.CheckOut,
		&res.Adults,
		&res.Children,
		&res.Infants,
		&res.Pets,
		&res.AddOnIDs,
		&res.Subtotal,
		&res.Discount,
		&res.CleaningFee,
		&res.AddOnsTotal,
		&res.ServiceFee,
		&res.TouristTax,
		&res.TotalAmount,
		&res.Status,
		&res.PaymentStatus,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) collect(rows pgx.Rows) ([]*entity.Reservation, error) {
	defer rows.Close()

	var reservations []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation rows: %w", err)
	}

	return reservations, nil
}

// CreateIfAvailable inserts the reservation while holding a row lock on the
// property, so two bookings for overlapping nights cannot both pass the check.
func (r *reservationRepository) CreateIfAvailable(ctx context.Context, res *entity.Reservation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reservation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.lockAndCheck(ctx, tx, res, uuid.Nil); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reservations (id, order_id, property_id, guest_id, check_in, check_out,
		                          adults, children, infants, pets, addon_ids, subtotal, discount,
		                          cleaning_fee, addons_total, service_fee, tourist_tax, total_amount,
		                          status, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`,
		res.ID,
		res.OrderID,
		res.PropertyID,
		res.GuestID,
		res.CheckIn,
		res.CheckOut,
		res.Adults,
		res.Children,
		res.Infants,
		res.Pets,
		res.AddOnIDs,
		res.Subtotal,
		res.Discount,
		res.CleaningFee,
		res.AddOnsTotal,
		res.ServiceFee,
		res.TouristTax,
		res.TotalAmount,
		res.Status,
		res.PaymentStatus,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create reservation",
			zap.Error(err),
			zap.String("order_id", res.OrderID),
			zap.String("guest_id", res.GuestID.String()),
		)
		return fmt.Errorf("create reservation %s: %w", res.OrderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reservation %s: %w", res.OrderID, err)
	}

	return nil
}

// ReinstateIfAvailable moves a reservation back into a date-holding status.
// It takes the same property lock as CreateIfAvailable and checks the stay
// against every other blocking reservation before the compare-and-set.
func (r *reservationRepository) ReinstateIfAvailable(ctx context.Context, res *entity.Reservation, from, to entity.ReservationStatus) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reinstate tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.lockAndCheck(ctx, tx, res, res.ID); err != nil {
		return err
	}

	result, err := tx.Exec(ctx,
		`UPDATE reservations SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		res.ID, from, to,
	)
	if err != nil {
		r.log.Error("Failed to reinstate reservation",
			zap.Error(err),
			zap.String("reservation_id", res.ID.String()),
			zap.String("status", string(to)),
		)
		return fmt.Errorf("reinstate reservation %s as %s: %w", res.ID.String(), to, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: reservation %s is no longer %s", ErrStatusChanged, res.ID.String(), from)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reinstate %s: %w", res.ID.String(), err)
	}
	return nil
}

// lockAndCheck locks the property row and fails with ErrDatesUnavailable when
// the stay hits a manual block or a blocking reservation other than exclude.
func (r *reservationRepository) lockAndCheck(ctx context.Context, tx pgx.Tx, res *entity.Reservation, exclude uuid.UUID) error {
	var blocked []time.Time
	err := tx.QueryRow(ctx,
		`SELECT blocked_dates FROM properties WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		res.PropertyID,
	).Scan(&blocked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("property %s not found", res.PropertyID.String())
	}
	if err != nil {
		r.log.Error("Failed to lock property", zap.Error(err), zap.String("property_id", res.PropertyID.String()))
		return fmt.Errorf("lock property %s: %w", res.PropertyID.String(), err)
	}

	if ok, _ := availability.IsRangeAvailable(nil, blocked, res.CheckIn, res.CheckOut); !ok {
		return fmt.Errorf("%w: manually blocked", ErrDatesUnavailable)
	}

	var overlaps bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE property_id = $1 AND status = ANY($2)
			  AND check_in < $4 AND check_out > $3
			  AND id <> $5
		)`,
		res.PropertyID, entity.BlockingStatuses, res.CheckIn, res.CheckOut, exclude,
	).Scan(&overlaps)
	if err != nil {
		r.log.Error("Failed to check reservation overlap", zap.Error(err))
		return fmt.Errorf("check overlap: %w", err)
	}
	if overlaps {
		return fmt.Errorf("%w: overlaps an existing reservation", ErrDatesUnavailable)
	}
	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = $1`

	res, err := scanReservation(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reservation by ID", zap.Error(err), zap.String("reservation_id", id.String()))
		return nil, fmt.Errorf("find reservation by ID %s: %w", id.String(), err)
	}

	return res, nil
}

func (r *reservationRepository) FindByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.guest_id = $1
		ORDER BY r.check_in DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, guestID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reservations by guest", zap.Error(err), zap.String("guest_id", guestID.String()))
		return nil, fmt.Errorf("find reservations by guest %s: %w", guestID.String(), err)
	}

	return r.collect(rows)
}

func (r *reservationRepository) CountByGuest(ctx context.Context, guestID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reservations WHERE guest_id = $1`, guestID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count reservations by guest", zap.Error(err), zap.String("guest_id", guestID.String()))
		return 0, fmt.Errorf("count reservations by guest %s: %w", guestID.String(), err)
	}
	return count, nil
}

func (r *reservationRepository) FindByOwner(ctx context.Context, ownerID *uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		JOIN properties p ON p.id = r.property_id
		WHERE ($1::uuid IS NULL OR p.owner_id = $1)
		ORDER BY r.check_in DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reservations by owner", zap.Error(err))
		return nil, fmt.Errorf("find reservations by owner: %w", err)
	}

	return r.collect(rows)
}

func (r *reservationRepository) CountByOwner(ctx context.Context, ownerID *uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM reservations r
		JOIN properties p ON p.id = r.property_id
		WHERE ($1::uuid IS NULL OR p.owner_id = $1)
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		r.log.Error("Failed to count reservations by owner", zap.Error(err))
		return 0, fmt.Errorf("count reservations by owner: %w", err)
	}
	return count, nil
}

func (r *reservationRepository) FindBlockingByProperty(ctx context.Context, propertyID uuid.UUID, from, to time.Time) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.property_id = $1 AND r.status = ANY($2)
		  AND r.check_in < $4 AND r.check_out > $3
		ORDER BY r.check_in
	`

	rows, err := r.db.Query(ctx, query, propertyID, entity.BlockingStatuses, from, to)
	if err != nil {
		r.log.Error("Failed to find blocking reservations",
			zap.Error(err),
			zap.String("property_id", propertyID.String()),
		)
		return nil, fmt.Errorf("find blocking reservations of property %s: %w", propertyID.String(), err)
	}

	return r.collect(rows)
}

// UpdateStatus moves a reservation from one status to another and fails with
// ErrStatusChanged when the stored status is no longer from.
func (r *reservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.ReservationStatus) error {
	query := `UPDATE reservations SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	result, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		r.log.Error("Failed to update reservation status",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
			zap.String("status", string(to)),
		)
		return fmt.Errorf("update reservation %s status to %s: %w", id.String(), to, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: reservation %s is no longer %s", ErrStatusChanged, id.String(), from)
	}

	return nil
}

func (r *reservationRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, from, to entity.PaymentStatus) error {
	query := `UPDATE reservations SET payment_status = $3, updated_at = NOW() WHERE id = $1 AND payment_status = $2`

	result, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		r.log.Error("Failed to update payment status",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
			zap.String("payment_status", string(to)),
		)
		return fmt.Errorf("update reservation %s payment to %s: %w", id.String(), to, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: reservation %s payment is no longer %s", ErrStatusChanged, id.String(), from)
	}

	return nil
}

func (r *reservationRepository) HasCompletedStay(ctx context.Context, guestID, propertyID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE guest_id = $1 AND property_id = $2 AND status = $3
		)
	`

	var ok bool
	if err := r.db.QueryRow(ctx, query, guestID, propertyID, entity.ReservationCompleted).Scan(&ok); err != nil {
		r.log.Error("Failed to check completed stay", zap.Error(err))
		return false, fmt.Errorf("check completed stay: %w", err)
	}
	return ok, nil
}

func (r *reservationRepository) FindOwnerIDsByGuest(ctx context.Context, guestID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT p.owner_id
		FROM reservations r
		JOIN properties p ON p.id = r.property_id
		WHERE r.guest_id = $1
	`
	return r.queryIDs(ctx, query, guestID)
}

func (r *reservationRepository) FindGuestIDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT r.guest_id
		FROM reservations r
		JOIN properties p ON p.id = r.property_id
		WHERE p.owner_id = $1
	`
	return r.queryIDs(ctx, query, ownerID)
}

func (r *reservationRepository) queryIDs(ctx context.Context, query string, arg uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		r.log.Error("Failed to query counterpart IDs", zap.Error(err), zap.String("user_id", arg.String()))
		return nil, fmt.Errorf("query counterpart IDs of %s: %w", arg.String(), err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect counterpart IDs: %w", err)
	}
	return ids, nil
}
