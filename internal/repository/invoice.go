package repository

import (
	"context"

	"freight/internal/domain"
)

// InvoiceRepository defines the persistence operations for invoices.
// A unique constraint on booking_id guarantees at most one invoice per
// booking; Create surfaces a violation as ErrDuplicate.
type InvoiceRepository interface {
	// Create persists a new invoice. Returns ErrDuplicate if an invoice
	// for the booking (or the same invoice number) already exists.
	Create(ctx context.Context, invoice *domain.Invoice) error

	// GetByBookingID retrieves the invoice for a booking.
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Invoice, error)

	// ListByCustomer retrieves invoices for a customer's bookings ordered
	// by creation time descending.
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Invoice, error)
}
