package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"freight/internal/domain"
	"freight/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `
	id, customer_id, driver_id, vehicle_id,
	pickup_lat, pickup_lng, pickup_address,
	drop_lat, drop_lng, drop_address,
	product, vehicle_type, distance_km, fare, payment_mode, status,
	product_photo_key, start_time, end_time, created_at, updated_at
`

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	var driverID, vehicleID sql.NullString
	if b.Assignment != nil {
		driverID = sql.NullString{String: b.Assignment.DriverID, Valid: true}
		vehicleID = sql.NullString{String: b.Assignment.VehicleID, Valid: true}
	}

	var photoKey sql.NullString
	if b.ProductPhotoKey != "" {
		photoKey = sql.NullString{String: b.ProductPhotoKey, Valid: true}
	}

	var startTime, endTime sql.NullTime
	if !b.StartTime.IsZero() {
		startTime = sql.NullTime{Time: b.StartTime, Valid: true}
	}
	if !b.EndTime.IsZero() {
		endTime = sql.NullTime{Time: b.EndTime, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		b.ID, b.CustomerID, driverID, vehicleID,
		b.Pickup.Lat, b.Pickup.Lng, b.Pickup.Address,
		b.Drop.Lat, b.Drop.Lng, b.Drop.Address,
		b.Product, b.VehicleType, b.DistanceKm, b.Fare, b.PaymentMode, b.Status,
		photoKey, startTime, endTime, b.CreatedAt, b.UpdatedAt,
	)

	return translateError(err)
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// ListPendingUnnegotiated retrieves pending bookings with no negotiation
// rows, newest first. Bookings already under negotiation surface only via
// the negotiation feed.
func (r *BookingRepository) ListPendingUnnegotiated(ctx context.Context) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.status = $1
		  AND NOT EXISTS (
			SELECT 1 FROM fare_negotiations n WHERE n.booking_id = b.id
		  )
		ORDER BY b.created_at DESC
	`

	return r.list(ctx, query, domain.BookingStatusPending)
}

// ListByCustomer retrieves a customer's bookings, newest first. An empty
// status means all statuses.
func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID string, status domain.BookingStatus, limit, offset int) ([]*domain.Booking, error) {
	if status != "" {
		query := `
			SELECT ` + bookingColumns + `
			FROM bookings WHERE customer_id = $1 AND status = $2
			ORDER BY created_at DESC LIMIT $3 OFFSET $4
		`
		return r.list(ctx, query, customerID, status, limit, offset)
	}

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings WHERE customer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, customerID, limit, offset)
}

// ListByDriver retrieves a driver's assigned bookings, newest first.
func (r *BookingRepository) ListByDriver(ctx context.Context, driverID string, limit, offset int) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings WHERE driver_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, driverID, limit, offset)
}

// AssignIfPending confirms the booking with driver, vehicle and fare in a
// single status-guarded statement. Concurrent accepts race on the status
// predicate; exactly one sees a row affected.
func (r *BookingRepository) AssignIfPending(ctx context.Context, id, driverID, vehicleID string, fareAmount float64, now time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET driver_id = $2, vehicle_id = $3, fare = $4, status = $5, updated_at = $6
		WHERE id = $1 AND status = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		id, driverID, vehicleID, fareAmount,
		domain.BookingStatusConfirmed, now, domain.BookingStatusPending,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// UpdateStatusIf moves the booking from one status to another.
func (r *BookingRepository) UpdateStatusIf(ctx context.Context, id string, from, to domain.BookingStatus, now time.Time) (bool, error) {
	query := `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`

	result, err := r.q.ExecContext(ctx, query, id, to, now, from)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// StartTripIf moves a confirmed booking to ONGOING. The NOT EXISTS clause
// enforces at most one active trip per driver inside the same statement,
// so two trips cannot start concurrently for one driver.
func (r *BookingRepository) StartTripIf(ctx context.Context, id, driverID, photoKey string, startTime time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $2, product_photo_key = $3, start_time = $4, updated_at = $4
		WHERE id = $1
		  AND status = $5
		  AND driver_id = $6
		  AND NOT EXISTS (
			SELECT 1 FROM bookings o WHERE o.driver_id = $6 AND o.status = $2
		  )
	`

	result, err := r.q.ExecContext(ctx, query,
		id, domain.BookingStatusOngoing, photoKey, startTime,
		domain.BookingStatusConfirmed, driverID,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// CompleteIf moves an ongoing booking to COMPLETED, recording the end time.
func (r *BookingRepository) CompleteIf(ctx context.Context, id string, endTime time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $2, end_time = $3, updated_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.q.ExecContext(ctx, query,
		id, domain.BookingStatusCompleted, endTime, domain.BookingStatusOngoing,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// HasOngoingForDriver reports whether the driver has an ONGOING booking.
func (r *BookingRepository) HasOngoingForDriver(ctx context.Context, driverID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE driver_id = $1 AND status = $2)`

	var exists bool
	err := r.q.QueryRowContext(ctx, query, driverID, domain.BookingStatusOngoing).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var driverID, vehicleID, photoKey sql.NullString
	var startTime, endTime sql.NullTime

	err := row.Scan(
		&b.ID, &b.CustomerID, &driverID, &vehicleID,
		&b.Pickup.Lat, &b.Pickup.Lng, &b.Pickup.Address,
		&b.Drop.Lat, &b.Drop.Lng, &b.Drop.Address,
		&b.Product, &b.VehicleType, &b.DistanceKm, &b.Fare, &b.PaymentMode, &b.Status,
		&photoKey, &startTime, &endTime, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// driver_id and vehicle_id are written together or not at all.
	if driverID.Valid && vehicleID.Valid {
		b.Assignment = &domain.Assignment{DriverID: driverID.String, VehicleID: vehicleID.String}
	}
	if photoKey.Valid {
		b.ProductPhotoKey = photoKey.String
	}
	if startTime.Valid {
		b.StartTime = startTime.Time
	}
	if endTime.Valid {
		b.EndTime = endTime.Time
	}

	return &b, nil
}
