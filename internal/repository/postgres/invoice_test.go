package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"freight/internal/domain"
	"freight/internal/repository"
)

func newMockInvoiceRepo(t *testing.T) (*InvoiceRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewInvoiceRepository(db), mock
}

var invoiceTestColumns = []string{
	"invoice_number", "booking_id",
	"customer_name", "customer_phone", "driver_name", "driver_phone", "owner_name", "vehicle_number",
	"pickup_address", "drop_address",
	"fare_amount", "driver_fee", "convenience_fee", "gst_amount", "grand_total", "sub_total", "rounding",
	"trip_duration_min", "payment_mode", "created_at",
}

func invoiceTestRow(rows *sqlmock.Rows, number, bookingID string, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(
		number, bookingID,
		"Anita", "900", "Ravi", "700", "Freight Co", "KA01AB1234",
		"Majestic", "Koramangala",
		1000.0, 941.0, 50.0, 9.0, 1000.0, 1000.0, 0.0,
		47, "CASH", createdAt,
	)
}

// The customer listing joins bookings, where pickup_address, drop_address,
// payment_mode and created_at also exist, so every selected column must be
// alias-qualified or Postgres rejects the statement as ambiguous.
func TestListByCustomer_ColumnsQualifiedAgainstJoin(t *testing.T) {
	repo, mock := newMockInvoiceRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows(invoiceTestColumns)
	rows = invoiceTestRow(rows, "INV-2", "booking-2", now)
	rows = invoiceTestRow(rows, "INV-1", "booking-1", now.Add(-time.Hour))

	mock.ExpectQuery(`(?s)SELECT\s+i\.invoice_number,.*i\.pickup_address, i\.drop_address,.*i\.payment_mode, i\.created_at\s+FROM invoices i\s+JOIN bookings b ON b\.id = i\.booking_id\s+WHERE b\.customer_id`).
		WithArgs("customer-1", 10, 0).
		WillReturnRows(rows)

	invoices, err := repo.ListByCustomer(context.Background(), "customer-1", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invoices) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(invoices))
	}
	if invoices[0].InvoiceNumber != "INV-2" || invoices[1].InvoiceNumber != "INV-1" {
		t.Errorf("unexpected ordering: %s, %s", invoices[0].InvoiceNumber, invoices[1].InvoiceNumber)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByBookingID_NotFound(t *testing.T) {
	repo, mock := newMockInvoiceRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM invoices WHERE booking_id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(invoiceTestColumns))

	_, err := repo.GetByBookingID(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateInvoice_DuplicateBookingTranslated(t *testing.T) {
	repo, mock := newMockInvoiceRepo(t)
	now := time.Now()

	mock.ExpectExec("INSERT INTO invoices").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.Invoice{
		InvoiceNumber: "INV-1",
		BookingID:     "booking-1",
		CreatedAt:     now,
	})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}
