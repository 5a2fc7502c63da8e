package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"freight/internal/domain"
	"freight/internal/geo"
	"freight/internal/redis"
	"freight/internal/repository"
)

const (
	// DefaultMatchRadiusKm bounds the discovery feed and the new-booking
	// fan-out when no radius is configured.
	DefaultMatchRadiusKm = 20.0

	// DefaultHistoryLimit is the page size for booking history.
	DefaultHistoryLimit = 5

	// DefaultDiscoveryLimit is the page size for the driver discovery feed.
	DefaultDiscoveryLimit = 10
)

// BookingService owns the booking lifecycle state machine:
// PENDING → CONFIRMED → ONGOING → COMPLETED, with CANCELLED and DECLINED as
// terminal side exits. Every transition is a status-guarded store update,
// so concurrent writers observe exactly-one-winner semantics.
type BookingService struct {
	bookingRepo         repository.BookingRepository
	locationStore       redis.LocationStoreInterface
	notificationService *NotificationService
	invoiceService      *InvoiceService
	matchRadiusKm       float64
}

// NewBookingService creates a new BookingService. locationStore,
// notificationService and invoiceService are optional; a nil value disables
// the corresponding side effect.
func NewBookingService(
	bookingRepo repository.BookingRepository,
	locationStore redis.LocationStoreInterface,
	notificationService *NotificationService,
	invoiceService *InvoiceService,
	matchRadiusKm float64,
) *BookingService {
	if matchRadiusKm <= 0 {
		matchRadiusKm = DefaultMatchRadiusKm
	}
	return &BookingService{
		bookingRepo:         bookingRepo,
		locationStore:       locationStore,
		notificationService: notificationService,
		invoiceService:      invoiceService,
		matchRadiusKm:       matchRadiusKm,
	}
}

// CreateBookingRequest contains the parameters for creating a booking.
// StartTime is the customer's requested pickup time and is optional; when
// the trip actually starts it is overwritten with the real start.
type CreateBookingRequest struct {
	Pickup      domain.Location
	Drop        domain.Location
	Product     string
	VehicleType string
	Fare        float64
	PaymentMode domain.PaymentMode
	StartTime   time.Time
}

// Create creates a new booking in PENDING state and broadcasts it to
// nearby online drivers. The broadcast is best-effort: its failure never
// rolls back booking creation.
func (s *BookingService) Create(ctx context.Context, actor Actor, req CreateBookingRequest) (*domain.Booking, error) {
	if actor.ID == "" || actor.Role != RoleCustomer {
		return nil, ErrInvalidCustomerID
	}
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	booking := &domain.Booking{
		ID:          uuid.New().String(),
		CustomerID:  actor.ID,
		Pickup:      req.Pickup,
		Drop:        req.Drop,
		Product:     req.Product,
		VehicleType: req.VehicleType,
		DistanceKm: geo.DistanceKm(
			geo.Coordinate{Lat: req.Pickup.Lat, Lng: req.Pickup.Lng},
			geo.Coordinate{Lat: req.Drop.Lat, Lng: req.Drop.Lng},
		),
		Fare:        req.Fare,
		PaymentMode: req.PaymentMode,
		Status:      domain.BookingStatusPending,
		StartTime:   req.StartTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.broadcastToNearbyDrivers(ctx, booking)

	return booking, nil
}

// broadcastToNearbyDrivers notifies online drivers near the pickup point.
// Failures are logged and swallowed.
func (s *BookingService) broadcastToNearbyDrivers(ctx context.Context, booking *domain.Booking) {
	if s.locationStore == nil || s.notificationService == nil {
		return
	}

	nearby, err := s.locationStore.FindNearbyDrivers(ctx, booking.Pickup.Lat, booking.Pickup.Lng, s.matchRadiusKm)
	if err != nil {
		log.Printf("booking %s: nearby driver lookup failed: %v", booking.ID, err)
		return
	}

	driverIDs := make([]string, 0, len(nearby))
	for _, loc := range nearby {
		driverIDs = append(driverIDs, loc.DriverID)
	}

	if err := s.notificationService.NotifyBookingCreated(ctx, booking, driverIDs); err != nil {
		log.Printf("booking %s: broadcast failed: %v", booking.ID, err)
	}
}

// Get retrieves a booking by ID.
func (s *BookingService) Get(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	return s.bookingRepo.GetByID(ctx, bookingID)
}

// ListNearbyPending returns pending bookings with no existing negotiations
// whose pickup is within the match radius of the driver's location.
// Candidates arrive newest-first from the store; filtering happens before
// pagination so pages never undercount.
func (s *BookingService) ListNearbyPending(ctx context.Context, driverLocation geo.Coordinate, page, limit int) ([]*domain.Booking, error) {
	if !geo.ValidCoordinate(driverLocation) {
		return nil, ErrInvalidLocation
	}
	page, limit = normalizePage(page, limit, DefaultDiscoveryLimit)

	candidates, err := s.bookingRepo.ListPendingUnnegotiated(ctx)
	if err != nil {
		return nil, err
	}

	within := geo.FilterWithinRadius(candidates, driverLocation, s.matchRadiusKm)

	offset := (page - 1) * limit
	if offset >= len(within) {
		return []*domain.Booking{}, nil
	}
	end := offset + limit
	if end > len(within) {
		end = len(within)
	}
	return within[offset:end], nil
}

// Cancel cancels a booking. Valid from PENDING or CONFIRMED only; an
// ongoing trip must be ended, and terminal states are immutable.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !actor.Operator() && actor.ID != booking.CustomerID {
		return nil, ErrActorNotAllowed
	}

	if booking.Status != domain.BookingStatusPending && booking.Status != domain.BookingStatusConfirmed {
		return nil, ErrBookingNotCancellable
	}

	ok, err := s.bookingRepo.UpdateStatusIf(ctx, bookingID, booking.Status, domain.BookingStatusCancelled, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with a concurrent transition.
		return nil, ErrBookingNotCancellable
	}

	booking, err = s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyBookingCancelled(ctx, booking)
	}

	return booking, nil
}

// Decline is the operator-side terminal exit for a booking no driver will
// serve. Valid from PENDING only.
func (s *BookingService) Decline(ctx context.Context, actor Actor, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if !actor.Operator() {
		return nil, ErrActorNotAllowed
	}

	if _, err := s.bookingRepo.GetByID(ctx, bookingID); err != nil {
		return nil, err
	}

	ok, err := s.bookingRepo.UpdateStatusIf(ctx, bookingID, domain.BookingStatusPending, domain.BookingStatusDeclined, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBookingNotPending
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyBookingDeclined(ctx, booking)
	}

	return booking, nil
}

// StartTripRequest contains the parameters for starting a trip.
type StartTripRequest struct {
	BookingID       string
	DriverID        string
	ProductPhotoKey string
}

// StartTrip moves a confirmed booking to ONGOING. The captured product
// photo reference is mandatory, and a driver may have at most one ongoing
// trip; the store enforces both guards atomically with the status write.
func (s *BookingService) StartTrip(ctx context.Context, actor Actor, req StartTripRequest) (*domain.Booking, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.ProductPhotoKey == "" {
		return nil, ErrMissingProductPhoto
	}
	if !actor.Operator() && actor.ID != req.DriverID {
		return nil, ErrActorNotAllowed
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusConfirmed {
		return nil, ErrBookingNotConfirmed
	}
	if booking.Assignment == nil || booking.Assignment.DriverID != req.DriverID {
		return nil, ErrDriverNotAssigned
	}

	ok, err := s.bookingRepo.StartTripIf(ctx, req.BookingID, req.DriverID, req.ProductPhotoKey, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		// Distinguish which guard failed for the caller.
		busy, err := s.bookingRepo.HasOngoingForDriver(ctx, req.DriverID)
		if err != nil {
			return nil, err
		}
		if busy {
			return nil, ErrDriverHasOngoingTrip
		}
		return nil, ErrBookingNotConfirmed
	}

	booking, err = s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyTripStarted(ctx, booking)
	}

	return booking, nil
}

// EndTrip completes an ongoing booking, records the end time and triggers
// invoice compilation exactly once. Invoice failure is logged and left
// retryable; the completed trip stands.
func (s *BookingService) EndTrip(ctx context.Context, actor Actor, bookingID, driverID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if !actor.Operator() && actor.ID != driverID {
		return nil, ErrActorNotAllowed
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusOngoing {
		return nil, ErrBookingNotOngoing
	}
	if booking.Assignment == nil || booking.Assignment.DriverID != driverID {
		return nil, ErrDriverNotAssigned
	}

	ok, err := s.bookingRepo.CompleteIf(ctx, bookingID, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBookingNotOngoing
	}

	booking, err = s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyTripEnded(ctx, booking)
	}

	if s.invoiceService != nil {
		if _, err := s.invoiceService.Compile(ctx, bookingID); err != nil && !errors.Is(err, ErrInvoiceExists) {
			log.Printf("booking %s: invoice compilation failed: %v", bookingID, err)
		}
	}

	return booking, nil
}

// HistoryForCustomer returns the customer's bookings, newest first,
// optionally filtered by status.
func (s *BookingService) HistoryForCustomer(ctx context.Context, customerID string, status domain.BookingStatus, page, limit int) ([]*domain.Booking, error) {
	if customerID == "" {
		return nil, ErrInvalidCustomerID
	}
	page, limit = normalizePage(page, limit, DefaultHistoryLimit)
	return s.bookingRepo.ListByCustomer(ctx, customerID, status, limit, (page-1)*limit)
}

// HistoryForDriver returns the driver's assigned bookings, newest first.
func (s *BookingService) HistoryForDriver(ctx context.Context, driverID string, page, limit int) ([]*domain.Booking, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	page, limit = normalizePage(page, limit, DefaultHistoryLimit)
	return s.bookingRepo.ListByDriver(ctx, driverID, limit, (page-1)*limit)
}

func validateCreateRequest(req CreateBookingRequest) error {
	if !geo.ValidCoordinate(geo.Coordinate{Lat: req.Pickup.Lat, Lng: req.Pickup.Lng}) {
		return ErrInvalidPickupLocation
	}
	if !geo.ValidCoordinate(geo.Coordinate{Lat: req.Drop.Lat, Lng: req.Drop.Lng}) {
		return ErrInvalidDropLocation
	}
	if req.Fare < 0 || math.IsNaN(req.Fare) || math.IsInf(req.Fare, 0) {
		return ErrInvalidFare
	}
	if req.PaymentMode != domain.PaymentModeCash && req.PaymentMode != domain.PaymentModeOnline {
		return ErrInvalidPaymentMode
	}
	return nil
}

// normalizePage applies the 1-indexed page convention and the default
// limit.
func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return page, limit
}

// ValidatePaymentMode validates a payment mode string, defaulting to CASH.
func ValidatePaymentMode(mode string) (domain.PaymentMode, error) {
	switch domain.PaymentMode(mode) {
	case domain.PaymentModeCash, domain.PaymentModeOnline:
		return domain.PaymentMode(mode), nil
	case "":
		return domain.PaymentModeCash, nil
	default:
		return "", ErrInvalidPaymentMode
	}
}
