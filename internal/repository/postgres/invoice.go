package postgres

import (
	"context"
	"database/sql"
	"errors"

	"freight/internal/domain"
	"freight/internal/repository"
)

// InvoiceRepository is a PostgreSQL implementation of
// repository.InvoiceRepository. The invoices table carries unique
// constraints on invoice_number and booking_id.
type InvoiceRepository struct {
	q Querier
}

// NewInvoiceRepository creates a new PostgreSQL invoice repository.
func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{q: db}
}

// NewInvoiceRepositoryWithTx creates an invoice repository using a transaction.
func NewInvoiceRepositoryWithTx(tx *sql.Tx) *InvoiceRepository {
	return &InvoiceRepository{q: tx}
}

const invoiceColumns = `
	invoice_number, booking_id,
	customer_name, customer_phone, driver_name, driver_phone, owner_name, vehicle_number,
	pickup_address, drop_address,
	fare_amount, driver_fee, convenience_fee, gst_amount, grand_total, sub_total, rounding,
	trip_duration_min, payment_mode, created_at
`

// invoiceColumnsQualified carries the i. alias for queries joining bookings,
// where pickup_address, drop_address, payment_mode and created_at exist in
// both tables.
const invoiceColumnsQualified = `
	i.invoice_number, i.booking_id,
	i.customer_name, i.customer_phone, i.driver_name, i.driver_phone, i.owner_name, i.vehicle_number,
	i.pickup_address, i.drop_address,
	i.fare_amount, i.driver_fee, i.convenience_fee, i.gst_amount, i.grand_total, i.sub_total, i.rounding,
	i.trip_duration_min, i.payment_mode, i.created_at
`

// Create persists a new invoice.
func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.q.ExecContext(ctx, query,
		inv.InvoiceNumber, inv.BookingID,
		inv.CustomerName, inv.CustomerPhone, inv.DriverName, inv.DriverPhone, inv.OwnerName, inv.VehicleNumber,
		inv.PickupAddress, inv.DropAddress,
		inv.FareAmount, inv.DriverFee, inv.ConvenienceFee, inv.GSTAmount, inv.GrandTotal, inv.SubTotal, inv.Rounding,
		inv.TripDurationMin, inv.PaymentMode, inv.CreatedAt,
	)
	return translateError(err)
}

// GetByBookingID retrieves the invoice for a booking.
func (r *InvoiceRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE booking_id = $1`

	inv, err := scanInvoice(r.q.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// ListByCustomer retrieves invoices for a customer's bookings, newest first.
func (r *InvoiceRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumnsQualified + `
		FROM invoices i
		JOIN bookings b ON b.id = i.booking_id
		WHERE b.customer_id = $1
		ORDER BY i.created_at DESC LIMIT $2 OFFSET $3
	`

	rows, err := r.q.QueryContext(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(
		&inv.InvoiceNumber, &inv.BookingID,
		&inv.CustomerName, &inv.CustomerPhone, &inv.DriverName, &inv.DriverPhone, &inv.OwnerName, &inv.VehicleNumber,
		&inv.PickupAddress, &inv.DropAddress,
		&inv.FareAmount, &inv.DriverFee, &inv.ConvenienceFee, &inv.GSTAmount, &inv.GrandTotal, &inv.SubTotal, &inv.Rounding,
		&inv.TripDurationMin, &inv.PaymentMode, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
