package repository

import (
	"context"
	"time"

	"freight/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
// Status transitions are expressed as guarded updates: the store applies
// the write only when the booking is still in the expected prior state and
// reports whether a row was affected, so concurrent writers race safely.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// ListPendingUnnegotiated retrieves pending bookings that have no
	// negotiation rows, ordered by creation time descending.
	ListPendingUnnegotiated(ctx context.Context) ([]*domain.Booking, error)

	// ListByCustomer retrieves a customer's bookings ordered by creation
	// time descending, optionally filtered by status.
	ListByCustomer(ctx context.Context, customerID string, status domain.BookingStatus, limit, offset int) ([]*domain.Booking, error)

	// ListByDriver retrieves a driver's assigned bookings ordered by
	// creation time descending.
	ListByDriver(ctx context.Context, driverID string, limit, offset int) ([]*domain.Booking, error)

	// AssignIfPending confirms the booking with driver, vehicle and the
	// agreed fare, provided it is still PENDING. Returns false without
	// error if the guard fails.
	AssignIfPending(ctx context.Context, id, driverID, vehicleID string, fareAmount float64, now time.Time) (bool, error)

	// UpdateStatusIf moves the booking from one status to another.
	// Returns false without error if the booking is no longer in the
	// expected prior status.
	UpdateStatusIf(ctx context.Context, id string, from, to domain.BookingStatus, now time.Time) (bool, error)

	// StartTripIf moves a CONFIRMED booking to ONGOING, recording the
	// product photo and start time. The same statement enforces that the
	// driver has no other ONGOING booking. Returns false without error if
	// either guard fails.
	StartTripIf(ctx context.Context, id, driverID, photoKey string, startTime time.Time) (bool, error)

	// CompleteIf moves an ONGOING booking to COMPLETED, recording the end
	// time. Returns false without error if the guard fails.
	CompleteIf(ctx context.Context, id string, endTime time.Time) (bool, error)

	// HasOngoingForDriver reports whether the driver currently has an
	// ONGOING booking.
	HasOngoingForDriver(ctx context.Context, driverID string) (bool, error)
}
