package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"freight/internal/domain"
	"freight/internal/fare"
	"freight/internal/redis"
	"freight/internal/repository"
	"freight/internal/repository/postgres"
)

// DefaultInvoiceLimit is the page size for invoice listings.
const DefaultInvoiceLimit = 10

// InvoiceService compiles the immutable invoice for a completed booking.
// The existence check and the insert share one transaction, and the store's
// unique constraint on booking_id backs them up, so at most one invoice can
// ever exist per booking.
type InvoiceService struct {
	db                  *sql.DB
	invoiceRepo         repository.InvoiceRepository
	bookingRepo         repository.BookingRepository
	customerRepo        repository.CustomerRepository
	driverRepo          repository.DriverRepository
	ownerRepo           repository.OwnerRepository
	vehicleRepo         repository.VehicleRepository
	invoiceCache        redis.InvoiceCacheInterface
	notificationService *NotificationService
}

// NewInvoiceService creates a new InvoiceService. db, invoiceCache and
// notificationService are optional.
func NewInvoiceService(
	db *sql.DB,
	invoiceRepo repository.InvoiceRepository,
	bookingRepo repository.BookingRepository,
	customerRepo repository.CustomerRepository,
	driverRepo repository.DriverRepository,
	ownerRepo repository.OwnerRepository,
	vehicleRepo repository.VehicleRepository,
	invoiceCache redis.InvoiceCacheInterface,
	notificationService *NotificationService,
) *InvoiceService {
	return &InvoiceService{
		db:                  db,
		invoiceRepo:         invoiceRepo,
		bookingRepo:         bookingRepo,
		customerRepo:        customerRepo,
		driverRepo:          driverRepo,
		ownerRepo:           ownerRepo,
		vehicleRepo:         vehicleRepo,
		invoiceCache:        invoiceCache,
		notificationService: notificationService,
	}
}

// Compile generates and persists the invoice for a completed booking.
// A second call for the same booking returns ErrInvoiceExists and leaves
// the stored invoice untouched. An insertion conflict from a lost
// invoice-number race is surfaced the same way and is retryable.
func (s *InvoiceService) Compile(ctx context.Context, bookingID string) (*domain.Invoice, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusCompleted {
		return nil, ErrBookingNotCompleted
	}

	invoice, err := s.buildInvoice(ctx, booking)
	if err != nil {
		return nil, err
	}

	invoiceRepo := s.invoiceRepo
	var tx *sql.Tx
	if s.db != nil {
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer func() {
			if tx != nil {
				_ = tx.Rollback()
			}
		}()
		invoiceRepo = postgres.NewInvoiceRepositoryWithTx(tx)
	}

	// Existence check and insert run under the same transaction; the
	// unique constraint on booking_id closes the remaining race window.
	if _, err := invoiceRepo.GetByBookingID(ctx, bookingID); err == nil {
		return nil, ErrInvoiceExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if err := invoiceRepo.Create(ctx, invoice); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrInvoiceExists
		}
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		tx = nil
	}

	if s.invoiceCache != nil {
		if err := s.invoiceCache.SetInvoice(ctx, invoice); err != nil {
			log.Printf("invoice %s: cache write failed: %v", invoice.InvoiceNumber, err)
		}
	}
	if s.notificationService != nil {
		_ = s.notificationService.NotifyInvoiceReady(ctx, booking.CustomerID, invoice)
	}

	return invoice, nil
}

// View returns the invoice for a booking for public read access. A
// persisted invoice always takes precedence; for a completed booking not
// yet compiled, the same breakdown is computed on the fly without
// persisting anything.
func (s *InvoiceService) View(ctx context.Context, bookingID string) (*domain.Invoice, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	if s.invoiceCache != nil {
		if cached, err := s.invoiceCache.GetInvoice(ctx, bookingID); err == nil && cached != nil {
			return cached, nil
		}
	}

	persisted, err := s.invoiceRepo.GetByBookingID(ctx, bookingID)
	if err == nil {
		if s.invoiceCache != nil {
			_ = s.invoiceCache.SetInvoice(ctx, persisted)
		}
		return persisted, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusCompleted {
		return nil, ErrBookingNotCompleted
	}

	// Degraded mode: compute without persisting. The transient view has
	// no invoice number of record.
	return s.buildInvoice(ctx, booking)
}

// ListForCustomer returns the customer's invoices, newest first.
func (s *InvoiceService) ListForCustomer(ctx context.Context, customerID string, page, limit int) ([]*domain.Invoice, error) {
	if customerID == "" {
		return nil, ErrInvalidCustomerID
	}
	page, limit = normalizePage(page, limit, DefaultInvoiceLimit)
	return s.invoiceRepo.ListByCustomer(ctx, customerID, limit, (page-1)*limit)
}

// buildInvoice resolves the denormalized snapshot and computes the fare
// breakdown for a completed booking.
func (s *InvoiceService) buildInvoice(ctx context.Context, booking *domain.Booking) (*domain.Invoice, error) {
	if booking.Assignment == nil {
		return nil, ErrDriverNotAssigned
	}

	customer, err := s.customerRepo.GetByID(ctx, booking.CustomerID)
	if err != nil {
		return nil, err
	}
	driver, err := s.driverRepo.GetByID(ctx, booking.Assignment.DriverID)
	if err != nil {
		return nil, err
	}

	// Owner is resolved through the driver's current assignment at
	// compile time, not at booking time.
	var ownerName string
	if s.ownerRepo != nil && driver.OwnerID != "" {
		owner, err := s.ownerRepo.GetByID(ctx, driver.OwnerID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if owner != nil {
			ownerName = owner.Name
		}
	}

	var vehicleNumber string
	if s.vehicleRepo != nil {
		vehicle, err := s.vehicleRepo.GetByID(ctx, booking.Assignment.VehicleID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if vehicle != nil {
			vehicleNumber = vehicle.Number
		}
	}

	breakdown := fare.ComputeBreakdown(booking.Fare)

	return &domain.Invoice{
		InvoiceNumber: generateInvoiceNumber(),
		BookingID:     booking.ID,

		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		DriverName:    driver.Name,
		DriverPhone:   driver.Phone,
		OwnerName:     ownerName,
		VehicleNumber: vehicleNumber,

		PickupAddress: booking.Pickup.Address,
		DropAddress:   booking.Drop.Address,

		FareAmount:     breakdown.FareAmount,
		DriverFee:      breakdown.DriverFee,
		ConvenienceFee: breakdown.ConvenienceFee,
		GSTAmount:      breakdown.GSTAmount,
		GrandTotal:     breakdown.GrandTotal,
		SubTotal:       breakdown.SubTotal,
		Rounding:       breakdown.Rounding,

		TripDurationMin: tripDurationMinutes(booking.StartTime, booking.EndTime),
		PaymentMode:     booking.PaymentMode,
		CreatedAt:       time.Now(),
	}, nil
}

// tripDurationMinutes returns the trip duration in whole minutes, rounded.
func tripDurationMinutes(start, end time.Time) int {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}
	return int(math.Round(end.Sub(start).Minutes()))
}

// generateInvoiceNumber produces a globally unique invoice number. The
// UUID suffix makes collisions negligible; an insertion conflict is still
// treated as retryable.
func generateInvoiceNumber() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("INV-%s-%s", time.Now().Format("20060102150405"), strings.ToUpper(suffix))
}
