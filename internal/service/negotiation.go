package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"freight/internal/domain"
	"freight/internal/repository"
	"freight/internal/repository/postgres"
)

// NegotiationService owns the per-(booking, driver) fare offer ledger and
// the authoritative driver-accepts-booking entry point. Accept runs its
// booking and negotiation writes in one transaction so a booking can never
// be CONFIRMED while its winning negotiation row is still pending.
type NegotiationService struct {
	db                  *sql.DB
	bookingRepo         repository.BookingRepository
	negotiationRepo     repository.NegotiationRepository
	driverRepo          repository.DriverRepository
	vehicleRepo         repository.VehicleRepository
	notificationService *NotificationService
}

// NewNegotiationService creates a new NegotiationService. db is optional;
// when nil (as in unit tests) the injected repositories are used without a
// wrapping transaction.
func NewNegotiationService(
	db *sql.DB,
	bookingRepo repository.BookingRepository,
	negotiationRepo repository.NegotiationRepository,
	driverRepo repository.DriverRepository,
	vehicleRepo repository.VehicleRepository,
	notificationService *NotificationService,
) *NegotiationService {
	return &NegotiationService{
		db:                  db,
		bookingRepo:         bookingRepo,
		negotiationRepo:     negotiationRepo,
		driverRepo:          driverRepo,
		vehicleRepo:         vehicleRepo,
		notificationService: notificationService,
	}
}

// ProposeRequest contains the parameters for proposing a negotiated fare.
type ProposeRequest struct {
	BookingID      string
	DriverID       string
	OwnerID        string
	NegotiatedFare float64
}

// Propose records a driver/owner fare offer for a pending booking and
// notifies the customer. Re-proposal for the same pair is rejected; a
// driver changes an offer by declining and proposing again.
func (s *NegotiationService) Propose(ctx context.Context, actor Actor, req ProposeRequest) (*domain.FareNegotiation, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.OwnerID == "" {
		return nil, ErrInvalidOwnerID
	}
	if req.NegotiatedFare < 0 || math.IsNaN(req.NegotiatedFare) || math.IsInf(req.NegotiatedFare, 0) {
		return nil, ErrInvalidFare
	}
	if !actor.Operator() && actor.ID != req.DriverID && actor.ID != req.OwnerID {
		return nil, ErrActorNotAllowed
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, ErrBookingNotPending
	}

	if _, err := s.driverRepo.GetByID(ctx, req.DriverID); err != nil {
		return nil, err
	}

	negotiation := &domain.FareNegotiation{
		BookingID:      req.BookingID,
		DriverID:       req.DriverID,
		OwnerID:        req.OwnerID,
		NegotiatedFare: req.NegotiatedFare,
		Status:         domain.NegotiationStatusPending,
		NegotiatedAt:   time.Now(),
	}

	if err := s.negotiationRepo.Create(ctx, negotiation); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrNegotiationExists
		}
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyFareProposed(ctx, booking, negotiation)
	}

	return negotiation, nil
}

// Decline marks one driver's offer as declined. The booking's status is
// untouched; a booking may carry several declined offers and stay pending.
// Re-declining an already declined offer is a no-op success.
func (s *NegotiationService) Decline(ctx context.Context, actor Actor, bookingID, driverID string) error {
	if bookingID == "" {
		return ErrInvalidBookingID
	}
	if driverID == "" {
		return ErrInvalidDriverID
	}

	negotiation, err := s.negotiationRepo.Get(ctx, bookingID, driverID)
	if err != nil {
		return err
	}

	if !actor.Operator() && actor.ID != negotiation.DriverID && actor.ID != negotiation.OwnerID {
		return ErrActorNotAllowed
	}

	switch negotiation.Status {
	case domain.NegotiationStatusDeclined:
		return nil
	case domain.NegotiationStatusAccepted:
		return ErrNegotiationClosed
	}

	return s.negotiationRepo.UpdateStatus(ctx, bookingID, driverID, domain.NegotiationStatusDeclined)
}

// AcceptRequest contains the parameters for a driver accepting a booking.
type AcceptRequest struct {
	BookingID string
	DriverID  string
	VehicleID string
	Fare      float64
}

// Accept is the authoritative "driver accepts a booking" operation, used
// both for direct acceptance and for closing a negotiation. It assigns the
// driver and vehicle, fixes the fare and confirms the booking with a
// status-guarded update: of two concurrent accepts exactly one succeeds
// and the other observes a conflict. The driver's own negotiation row, if
// any, moves to ACCEPTED and every other pending offer is superseded.
func (s *NegotiationService) Accept(ctx context.Context, actor Actor, req AcceptRequest) (*domain.Booking, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.VehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	if req.Fare < 0 || math.IsNaN(req.Fare) || math.IsInf(req.Fare, 0) {
		return nil, ErrInvalidFare
	}
	if !actor.Operator() && actor.ID != req.DriverID {
		return nil, ErrActorNotAllowed
	}

	if _, err := s.driverRepo.GetByID(ctx, req.DriverID); err != nil {
		return nil, err
	}
	if s.vehicleRepo != nil {
		if _, err := s.vehicleRepo.GetByID(ctx, req.VehicleID); err != nil {
			return nil, err
		}
	}

	bookingRepo := s.bookingRepo
	negotiationRepo := s.negotiationRepo

	var tx *sql.Tx
	if s.db != nil {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer func() {
			if tx != nil {
				_ = tx.Rollback()
			}
		}()
		bookingRepo = postgres.NewBookingRepositoryWithTx(tx)
		negotiationRepo = postgres.NewNegotiationRepositoryWithTx(tx)
	}

	now := time.Now()
	ok, err := bookingRepo.AssignIfPending(ctx, req.BookingID, req.DriverID, req.VehicleID, req.Fare, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Guard failed: either the booking is gone or it left PENDING.
		if _, err := s.bookingRepo.GetByID(ctx, req.BookingID); err != nil {
			return nil, err
		}
		return nil, ErrBookingNotPending
	}

	// Close the ledger for this booking: the winner's offer is accepted,
	// every other pending offer is superseded.
	if err := negotiationRepo.UpdateStatus(ctx, req.BookingID, req.DriverID, domain.NegotiationStatusAccepted); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		// Direct acceptance without a prior offer is fine.
	}
	if _, err := negotiationRepo.DeclineOtherPending(ctx, req.BookingID, req.DriverID); err != nil {
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		tx = nil
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyBookingConfirmed(ctx, booking)
	}

	return booking, nil
}

// ListForBooking returns all offers recorded for a booking, newest first.
func (s *NegotiationService) ListForBooking(ctx context.Context, bookingID string) ([]*domain.FareNegotiation, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if _, err := s.bookingRepo.GetByID(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.negotiationRepo.ListByBooking(ctx, bookingID)
}

// ListForDriver returns the driver's negotiation feed, newest first.
func (s *NegotiationService) ListForDriver(ctx context.Context, driverID string) ([]*domain.FareNegotiation, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.negotiationRepo.ListByDriver(ctx, driverID)
}
