package postgres

import (
	"context"
	"database/sql"
	"errors"

	"freight/internal/domain"
	"freight/internal/repository"
)

// NegotiationRepository is a PostgreSQL implementation of
// repository.NegotiationRepository. The fare_negotiations table carries a
// primary key on (booking_id, driver_id).
type NegotiationRepository struct {
	q Querier
}

// NewNegotiationRepository creates a new PostgreSQL negotiation repository.
func NewNegotiationRepository(db *sql.DB) *NegotiationRepository {
	return &NegotiationRepository{q: db}
}

// NewNegotiationRepositoryWithTx creates a negotiation repository using a transaction.
func NewNegotiationRepositoryWithTx(tx *sql.Tx) *NegotiationRepository {
	return &NegotiationRepository{q: tx}
}

// Create persists a new negotiation.
func (r *NegotiationRepository) Create(ctx context.Context, n *domain.FareNegotiation) error {
	query := `
		INSERT INTO fare_negotiations (booking_id, driver_id, owner_id, negotiated_fare, status, negotiated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		n.BookingID, n.DriverID, n.OwnerID, n.NegotiatedFare, n.Status, n.NegotiatedAt,
	)
	return translateError(err)
}

// Get retrieves the negotiation for a (booking, driver) pair.
func (r *NegotiationRepository) Get(ctx context.Context, bookingID, driverID string) (*domain.FareNegotiation, error) {
	query := `
		SELECT booking_id, driver_id, owner_id, negotiated_fare, status, negotiated_at
		FROM fare_negotiations WHERE booking_id = $1 AND driver_id = $2
	`

	var n domain.FareNegotiation
	err := r.q.QueryRowContext(ctx, query, bookingID, driverID).Scan(
		&n.BookingID, &n.DriverID, &n.OwnerID, &n.NegotiatedFare, &n.Status, &n.NegotiatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// ListByBooking retrieves all negotiations for a booking, newest first.
func (r *NegotiationRepository) ListByBooking(ctx context.Context, bookingID string) ([]*domain.FareNegotiation, error) {
	query := `
		SELECT booking_id, driver_id, owner_id, negotiated_fare, status, negotiated_at
		FROM fare_negotiations WHERE booking_id = $1 ORDER BY negotiated_at DESC
	`
	return r.list(ctx, query, bookingID)
}

// ListByDriver retrieves a driver's negotiations, newest first.
func (r *NegotiationRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.FareNegotiation, error) {
	query := `
		SELECT booking_id, driver_id, owner_id, negotiated_fare, status, negotiated_at
		FROM fare_negotiations WHERE driver_id = $1 ORDER BY negotiated_at DESC
	`
	return r.list(ctx, query, driverID)
}

// UpdateStatus moves the negotiation for a (booking, driver) pair to the
// given status.
func (r *NegotiationRepository) UpdateStatus(ctx context.Context, bookingID, driverID string, status domain.NegotiationStatus) error {
	query := `UPDATE fare_negotiations SET status = $3 WHERE booking_id = $1 AND driver_id = $2`

	result, err := r.q.ExecContext(ctx, query, bookingID, driverID, status)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeclineOtherPending supersedes every other driver's pending offer for
// the booking.
func (r *NegotiationRepository) DeclineOtherPending(ctx context.Context, bookingID, keepDriverID string) (int64, error) {
	query := `
		UPDATE fare_negotiations SET status = $3
		WHERE booking_id = $1 AND driver_id <> $2 AND status = $4
	`

	result, err := r.q.ExecContext(ctx, query,
		bookingID, keepDriverID, domain.NegotiationStatusDeclined, domain.NegotiationStatusPending,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *NegotiationRepository) list(ctx context.Context, query string, args ...any) ([]*domain.FareNegotiation, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var negotiations []*domain.FareNegotiation
	for rows.Next() {
		var n domain.FareNegotiation
		if err := rows.Scan(
			&n.BookingID, &n.DriverID, &n.OwnerID, &n.NegotiatedFare, &n.Status, &n.NegotiatedAt,
		); err != nil {
			return nil, err
		}
		negotiations = append(negotiations, &n)
	}
	return negotiations, rows.Err()
}
