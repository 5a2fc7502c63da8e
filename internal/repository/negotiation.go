package repository

import (
	"context"

	"freight/internal/domain"
)

// NegotiationRepository defines the persistence operations for fare
// negotiations. The store enforces uniqueness of (bookingID, driverID).
type NegotiationRepository interface {
	// Create persists a new negotiation. Returns ErrDuplicate if a row for
	// the same (booking, driver) pair already exists.
	Create(ctx context.Context, n *domain.FareNegotiation) error

	// Get retrieves the negotiation for a (booking, driver) pair.
	Get(ctx context.Context, bookingID, driverID string) (*domain.FareNegotiation, error)

	// ListByBooking retrieves all negotiations for a booking ordered by
	// proposal time descending.
	ListByBooking(ctx context.Context, bookingID string) ([]*domain.FareNegotiation, error)

	// ListByDriver retrieves a driver's negotiations ordered by proposal
	// time descending. This backs the negotiation feed.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.FareNegotiation, error)

	// UpdateStatus moves the negotiation for a (booking, driver) pair to
	// the given status. Returns ErrNotFound if no such row exists.
	UpdateStatus(ctx context.Context, bookingID, driverID string, status domain.NegotiationStatus) error

	// DeclineOtherPending marks every PENDING negotiation for the booking
	// except the given driver's as DECLINED, superseding dangling offers
	// once the booking is confirmed. Returns the number of rows affected.
	DeclineOtherPending(ctx context.Context, bookingID, keepDriverID string) (int64, error)
}
