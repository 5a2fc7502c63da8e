package tests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"freight/internal/domain"
	"freight/internal/service"
)

// ──────────────────────────────────────────────
// INVOICE COMPILATION
// ──────────────────────────────────────────────

type invoiceFixture struct {
	bookingRepo *MockBookingRepository
	invoiceRepo *MockInvoiceRepository
	cache       *MockInvoiceCache
	svc         *service.InvoiceService
}

func newInvoiceFixture() *invoiceFixture {
	bookingRepo := NewMockBookingRepository()
	invoiceRepo := NewMockInvoiceRepository()
	customerRepo := NewMockCustomerRepository()
	driverRepo := NewMockDriverRepository()
	ownerRepo := NewMockOwnerRepository()
	vehicleRepo := NewMockVehicleRepository()
	cache := NewMockInvoiceCache()

	customerRepo.AddCustomer(&domain.Customer{ID: "customer-1", Name: "Anita", Phone: "900"})
	ownerRepo.AddOwner(&domain.Owner{ID: "owner-1", Name: "Freight Co", Phone: "800"})
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", OwnerID: "owner-1", Name: "Ravi", Phone: "700"})
	vehicleRepo.AddVehicle(&domain.Vehicle{ID: "vehicle-1", OwnerID: "owner-1", Number: "KA01AB1234"})

	svc := service.NewInvoiceService(nil, invoiceRepo, bookingRepo, customerRepo, driverRepo, ownerRepo, vehicleRepo, cache, service.NewNotificationService())
	return &invoiceFixture{bookingRepo: bookingRepo, invoiceRepo: invoiceRepo, cache: cache, svc: svc}
}

func completedBooking(id string) *domain.Booking {
	b := pendingBooking(id, "customer-1")
	b.Status = domain.BookingStatusCompleted
	b.Assignment = &domain.Assignment{DriverID: "driver-1", VehicleID: "vehicle-1"}
	b.Fare = 1000
	b.StartTime = time.Now().Add(-47 * time.Minute)
	b.EndTime = b.StartTime.Add(46*time.Minute + 40*time.Second)
	return b
}

func TestCompileInvoice_SnapshotAndBreakdown(t *testing.T) {
	t.Parallel()

	f := newInvoiceFixture()
	f.bookingRepo.AddBooking(completedBooking("booking-1"))

	invoice, err := f.svc.Compile(context.Background(), "booking-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(invoice.InvoiceNumber, "INV-") {
		t.Errorf("unexpected invoice number: %s", invoice.InvoiceNumber)
	}
	if invoice.CustomerName != "Anita" || invoice.DriverName != "Ravi" {
		t.Errorf("party snapshot wrong: %s / %s", invoice.CustomerName, invoice.DriverName)
	}
	if invoice.OwnerName != "Freight Co" {
		t.Errorf("owner snapshot wrong: %s", invoice.OwnerName)
	}
	if invoice.VehicleNumber != "KA01AB1234" {
		t.Errorf("vehicle snapshot wrong: %s", invoice.VehicleNumber)
	}

	// A 1000 fare splits into 5% convenience fee, 18% GST on the fee and
	// the driver remainder.
	if invoice.ConvenienceFee != 50 {
		t.Errorf("expected convenience fee 50, got %f", invoice.ConvenienceFee)
	}
	if invoice.GSTAmount != 9 {
		t.Errorf("expected GST 9, got %f", invoice.GSTAmount)
	}
	if invoice.DriverFee != 941 {
		t.Errorf("expected driver fee 941, got %f", invoice.DriverFee)
	}
	if invoice.GrandTotal != 1000 {
		t.Errorf("expected grand total 1000, got %f", invoice.GrandTotal)
	}

	// 46m40s rounds to 47 whole minutes.
	if invoice.TripDurationMin != 47 {
		t.Errorf("expected 47 minute duration, got %d", invoice.TripDurationMin)
	}

	if f.invoiceRepo.CountInvoices() != 1 {
		t.Errorf("expected 1 persisted invoice, got %d", f.invoiceRepo.CountInvoices())
	}
}

func TestCompileInvoice_SecondCompileConflicts(t *testing.T) {
	t.Parallel()

	f := newInvoiceFixture()
	f.bookingRepo.AddBooking(completedBooking("booking-1"))

	first, err := f.svc.Compile(context.Background(), "booking-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = f.svc.Compile(context.Background(), "booking-1")
	if !errors.Is(err, service.ErrInvoiceExists) {
		t.Errorf("expected ErrInvoiceExists, got %v", err)
	}

	// The stored invoice is untouched.
	stored, err := f.invoiceRepo.GetByBookingID(context.Background(), "booking-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.InvoiceNumber != first.InvoiceNumber {
		t.Error("stored invoice replaced by second compile")
	}
}

func TestCompileInvoice_RequiresCompletedBooking(t *testing.T) {
	t.Parallel()

	f := newInvoiceFixture()
	for _, status := range []domain.BookingStatus{
		domain.BookingStatusPending,
		domain.BookingStatusConfirmed,
		domain.BookingStatusOngoing,
		domain.BookingStatusCancelled,
	} {
		booking := completedBooking("booking-1")
		booking.Status = status
		f.bookingRepo.AddBooking(booking)

		_, err := f.svc.Compile(context.Background(), "booking-1")
		if !errors.Is(err, service.ErrBookingNotCompleted) {
			t.Errorf("compile from %s: expected ErrBookingNotCompleted, got %v", status, err)
		}
	}
}

func TestCompileInvoice_UnknownBooking(t *testing.T) {
	t.Parallel()

	f := newInvoiceFixture()
	if _, err := f.svc.Compile(context.Background(), "ghost"); err == nil {
		t.Error("expected error for unknown booking")
	}
}

func TestViewInvoice_PersistedWins(t *testing.T) {
	t.Parallel()

	f := newInvoiceFixture()
	f.bookingRepo.AddBooking(completedBooking("booking-1"))

	compiled, err := f.svc.Compile(context.Background(), "booking-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	viewed, err := f.svc.View(context.Background(), "booking-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if viewed.InvoiceNumber != compiled.InvoiceNumber {
		t.Errorf("view must return the persisted invoice, got %s", viewed.InvoiceNumber)
	}
}

func TestViewInvoice_PreviewForUncompiledCompletedBooking(t *testing.T) {
	t.Parallel()

	f := newInvoiceFixture()
	f.bookingRepo.AddBooking(completedBooking("booking-1"))

	preview, err := f.svc.View(context.Background(), "booking-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preview.GrandTotal != 1000 {
		t.Errorf("preview breakdown wrong, grand total %f", preview.GrandTotal)
	}

	// The preview is never persisted.
	if f.invoiceRepo.CountInvoices() != 0 {
		t.Errorf("preview must not persist, got %d invoices", f.invoiceRepo.CountInvoices())
	}
}

func TestViewInvoice_NonCompletedBookingRejected(t *testing.T) {
	t.Parallel()

	f := newInvoiceFixture()
	booking := completedBooking("booking-1")
	booking.Status = domain.BookingStatusOngoing
	f.bookingRepo.AddBooking(booking)

	_, err := f.svc.View(context.Background(), "booking-1")
	if !errors.Is(err, service.ErrBookingNotCompleted) {
		t.Errorf("expected ErrBookingNotCompleted, got %v", err)
	}
}

func TestEndTrip_TriggersInvoiceCompilation(t *testing.T) {
	t.Parallel()

	f := newInvoiceFixture()
	booking := completedBooking("booking-1")
	booking.Status = domain.BookingStatusOngoing
	f.bookingRepo.AddBooking(booking)

	bookingSvc := service.NewBookingService(f.bookingRepo, nil, service.NewNotificationService(), f.svc, 0)

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	if _, err := bookingSvc.EndTrip(context.Background(), actor, "booking-1", "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.invoiceRepo.CountInvoices() != 1 {
		t.Errorf("expected invoice compiled on trip end, got %d", f.invoiceRepo.CountInvoices())
	}
}
