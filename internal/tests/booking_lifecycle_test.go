package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"freight/internal/domain"
	"freight/internal/geo"
	"freight/internal/service"
)

// ──────────────────────────────────────────────
// BOOKING LIFECYCLE
// ──────────────────────────────────────────────

func newBookingService(bookingRepo *MockBookingRepository, locationStore *MockLocationStore) *service.BookingService {
	return service.NewBookingService(bookingRepo, locationStore, service.NewNotificationService(), nil, 0)
}

func pendingBooking(id, customerID string) *domain.Booking {
	now := time.Now()
	return &domain.Booking{
		ID:          id,
		CustomerID:  customerID,
		Pickup:      domain.Location{Lat: 12.9716, Lng: 77.5946, Address: "Majestic"},
		Drop:        domain.Location{Lat: 12.9352, Lng: 77.6245, Address: "Koramangala"},
		Product:     "furniture",
		VehicleType: "TATA_ACE",
		Fare:        850,
		PaymentMode: domain.PaymentModeCash,
		Status:      domain.BookingStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateBooking_StartsPending(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()
	svc := newBookingService(bookingRepo, NewMockLocationStore())

	actor := service.Actor{ID: "customer-1", Role: service.RoleCustomer}
	booking, err := svc.Create(context.Background(), actor, service.CreateBookingRequest{
		Pickup:      domain.Location{Lat: 12.9716, Lng: 77.5946, Address: "Majestic"},
		Drop:        domain.Location{Lat: 12.9352, Lng: 77.6245, Address: "Koramangala"},
		Product:     "furniture",
		VehicleType: "TATA_ACE",
		Fare:        850,
		PaymentMode: domain.PaymentModeCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != domain.BookingStatusPending {
		t.Errorf("expected status PENDING, got %s", booking.Status)
	}
	if booking.Assignment != nil {
		t.Error("new booking must have no assignment")
	}
	if booking.CustomerID != "customer-1" {
		t.Errorf("expected customer-1, got %s", booking.CustomerID)
	}
	if booking.DistanceKm <= 0 {
		t.Errorf("expected positive distance, got %f", booking.DistanceKm)
	}
	if bookingRepo.CountBookings() != 1 {
		t.Errorf("expected 1 booking, got %d", bookingRepo.CountBookings())
	}
}

func TestCreateBooking_RecordsRequestedStartTime(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()
	svc := newBookingService(bookingRepo, NewMockLocationStore())

	requested := time.Now().Add(3 * time.Hour).Truncate(time.Second)
	actor := service.Actor{ID: "customer-1", Role: service.RoleCustomer}
	booking, err := svc.Create(context.Background(), actor, service.CreateBookingRequest{
		Pickup:      domain.Location{Lat: 12.9716, Lng: 77.5946, Address: "Majestic"},
		Drop:        domain.Location{Lat: 12.9352, Lng: 77.6245, Address: "Koramangala"},
		Fare:        850,
		PaymentMode: domain.PaymentModeCash,
		StartTime:   requested,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !booking.StartTime.Equal(requested) {
		t.Errorf("expected requested start time %v, got %v", requested, booking.StartTime)
	}

	// The actual trip start replaces the requested time.
	stored := bookingRepo.GetBooking(booking.ID)
	stored.Status = domain.BookingStatusConfirmed
	stored.Assignment = &domain.Assignment{DriverID: "driver-1", VehicleID: "vehicle-1"}

	driver := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	started, err := svc.StartTrip(context.Background(), driver, service.StartTripRequest{
		BookingID:       booking.ID,
		DriverID:        "driver-1",
		ProductPhotoKey: "objects/photo-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.StartTime.Equal(requested) {
		t.Error("trip start must overwrite the requested start time")
	}
}

func TestCreateBooking_Validation(t *testing.T) {
	t.Parallel()

	svc := newBookingService(NewMockBookingRepository(), NewMockLocationStore())
	customer := service.Actor{ID: "customer-1", Role: service.RoleCustomer}

	valid := service.CreateBookingRequest{
		Pickup:      domain.Location{Lat: 12.9716, Lng: 77.5946},
		Drop:        domain.Location{Lat: 12.9352, Lng: 77.6245},
		Fare:        850,
		PaymentMode: domain.PaymentModeCash,
	}

	tcs := []struct {
		name    string
		actor   service.Actor
		mutate  func(*service.CreateBookingRequest)
		wantErr error
	}{
		{
			name:    "missing customer",
			actor:   service.Actor{Role: service.RoleCustomer},
			mutate:  func(r *service.CreateBookingRequest) {},
			wantErr: service.ErrInvalidCustomerID,
		},
		{
			name:    "driver cannot create",
			actor:   service.Actor{ID: "driver-1", Role: service.RoleDriver},
			mutate:  func(r *service.CreateBookingRequest) {},
			wantErr: service.ErrInvalidCustomerID,
		},
		{
			name:    "bad pickup latitude",
			actor:   customer,
			mutate:  func(r *service.CreateBookingRequest) { r.Pickup.Lat = 91 },
			wantErr: service.ErrInvalidPickupLocation,
		},
		{
			name:    "bad drop longitude",
			actor:   customer,
			mutate:  func(r *service.CreateBookingRequest) { r.Drop.Lng = -181 },
			wantErr: service.ErrInvalidDropLocation,
		},
		{
			name:    "negative fare",
			actor:   customer,
			mutate:  func(r *service.CreateBookingRequest) { r.Fare = -1 },
			wantErr: service.ErrInvalidFare,
		},
		{
			name:    "unknown payment mode",
			actor:   customer,
			mutate:  func(r *service.CreateBookingRequest) { r.PaymentMode = "CRYPTO" },
			wantErr: service.ErrInvalidPaymentMode,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), tc.actor, req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateBooking_BroadcastFailureDoesNotRollBack(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()
	locationStore := NewMockLocationStore()
	locationStore.FindNearbyDriversError = ErrMockTimeout
	svc := newBookingService(bookingRepo, locationStore)

	actor := service.Actor{ID: "customer-1", Role: service.RoleCustomer}
	booking, err := svc.Create(context.Background(), actor, service.CreateBookingRequest{
		Pickup:      domain.Location{Lat: 12.9716, Lng: 77.5946},
		Drop:        domain.Location{Lat: 12.9352, Lng: 77.6245},
		Fare:        850,
		PaymentMode: domain.PaymentModeCash,
	})
	if err != nil {
		t.Fatalf("broadcast failure must not fail creation: %v", err)
	}
	if bookingRepo.GetBooking(booking.ID) == nil {
		t.Error("booking must be persisted despite broadcast failure")
	}
}

func TestCancelBooking_FromPendingAndConfirmed(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed} {
		bookingRepo := NewMockBookingRepository()
		booking := pendingBooking("booking-1", "customer-1")
		booking.Status = status
		bookingRepo.AddBooking(booking)
		svc := newBookingService(bookingRepo, NewMockLocationStore())

		actor := service.Actor{ID: "customer-1", Role: service.RoleCustomer}
		cancelled, err := svc.Cancel(context.Background(), actor, "booking-1")
		if err != nil {
			t.Fatalf("cancel from %s: unexpected error: %v", status, err)
		}
		if cancelled.Status != domain.BookingStatusCancelled {
			t.Errorf("expected CANCELLED, got %s", cancelled.Status)
		}
	}
}

func TestCancelBooking_GuardViolations(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		status  domain.BookingStatus
		wantErr error
	}{
		{domain.BookingStatusOngoing, service.ErrBookingNotCancellable},
		{domain.BookingStatusCompleted, service.ErrBookingNotCancellable},
		{domain.BookingStatusCancelled, service.ErrBookingNotCancellable},
		{domain.BookingStatusDeclined, service.ErrBookingNotCancellable},
	}

	for _, tc := range tcs {
		bookingRepo := NewMockBookingRepository()
		booking := pendingBooking("booking-1", "customer-1")
		booking.Status = tc.status
		bookingRepo.AddBooking(booking)
		svc := newBookingService(bookingRepo, NewMockLocationStore())

		actor := service.Actor{ID: "customer-1", Role: service.RoleCustomer}
		_, err := svc.Cancel(context.Background(), actor, "booking-1")
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("cancel from %s: expected %v, got %v", tc.status, tc.wantErr, err)
		}

		// The stored booking is untouched.
		if got := bookingRepo.GetBooking("booking-1").Status; got != tc.status {
			t.Errorf("booking mutated on failed cancel: %s", got)
		}
	}
}

func TestCancelBooking_OtherCustomerForbidden(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()
	bookingRepo.AddBooking(pendingBooking("booking-1", "customer-1"))
	svc := newBookingService(bookingRepo, NewMockLocationStore())

	actor := service.Actor{ID: "customer-2", Role: service.RoleCustomer}
	_, err := svc.Cancel(context.Background(), actor, "booking-1")
	if !errors.Is(err, service.ErrActorNotAllowed) {
		t.Errorf("expected ErrActorNotAllowed, got %v", err)
	}
}

func TestDeclineBooking_OperatorOnly(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()
	bookingRepo.AddBooking(pendingBooking("booking-1", "customer-1"))
	svc := newBookingService(bookingRepo, NewMockLocationStore())

	driver := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	if _, err := svc.Decline(context.Background(), driver, "booking-1"); !errors.Is(err, service.ErrActorNotAllowed) {
		t.Errorf("expected ErrActorNotAllowed, got %v", err)
	}

	operator := service.Actor{ID: "ops-1", Role: service.RoleOperator}
	declined, err := svc.Decline(context.Background(), operator, "booking-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if declined.Status != domain.BookingStatusDeclined {
		t.Errorf("expected DECLINED, got %s", declined.Status)
	}
}

func TestStartTrip_RequiresProductPhoto(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()
	booking := pendingBooking("booking-1", "customer-1")
	booking.Status = domain.BookingStatusConfirmed
	booking.Assignment = &domain.Assignment{DriverID: "driver-1", VehicleID: "vehicle-1"}
	bookingRepo.AddBooking(booking)
	svc := newBookingService(bookingRepo, NewMockLocationStore())

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	_, err := svc.StartTrip(context.Background(), actor, service.StartTripRequest{
		BookingID: "booking-1",
		DriverID:  "driver-1",
	})
	if !errors.Is(err, service.ErrMissingProductPhoto) {
		t.Errorf("expected ErrMissingProductPhoto, got %v", err)
	}

	// The booking stays CONFIRMED.
	if got := bookingRepo.GetBooking("booking-1").Status; got != domain.BookingStatusConfirmed {
		t.Errorf("expected CONFIRMED after rejected start, got %s", got)
	}
}

func TestStartTrip_Success(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()
	booking := pendingBooking("booking-1", "customer-1")
	booking.Status = domain.BookingStatusConfirmed
	booking.Assignment = &domain.Assignment{DriverID: "driver-1", VehicleID: "vehicle-1"}
	bookingRepo.AddBooking(booking)
	svc := newBookingService(bookingRepo, NewMockLocationStore())

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	started, err := svc.StartTrip(context.Background(), actor, service.StartTripRequest{
		BookingID:       "booking-1",
		DriverID:        "driver-1",
		ProductPhotoKey: "objects/photo-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.Status != domain.BookingStatusOngoing {
		t.Errorf("expected ONGOING, got %s", started.Status)
	}
	if started.ProductPhotoKey != "objects/photo-1" {
		t.Errorf("photo key not recorded: %q", started.ProductPhotoKey)
	}
	if started.StartTime.IsZero() {
		t.Error("start time not recorded")
	}
}

func TestStartTrip_WrongDriverForbidden(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()
	booking := pendingBooking("booking-1", "customer-1")
	booking.Status = domain.BookingStatusConfirmed
	booking.Assignment = &domain.Assignment{DriverID: "driver-1", VehicleID: "vehicle-1"}
	bookingRepo.AddBooking(booking)
	svc := newBookingService(bookingRepo, NewMockLocationStore())

	actor := service.Actor{ID: "driver-2", Role: service.RoleDriver}
	_, err := svc.StartTrip(context.Background(), actor, service.StartTripRequest{
		BookingID:       "booking-1",
		DriverID:        "driver-2",
		ProductPhotoKey: "objects/photo-1",
	})
	if !errors.Is(err, service.ErrDriverNotAssigned) {
		t.Errorf("expected ErrDriverNotAssigned, got %v", err)
	}
}

func TestStartTrip_SecondOngoingTripBlocked(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()

	ongoing := pendingBooking("booking-1", "customer-1")
	ongoing.Status = domain.BookingStatusOngoing
	ongoing.Assignment = &domain.Assignment{DriverID: "driver-1", VehicleID: "vehicle-1"}
	bookingRepo.AddBooking(ongoing)

	confirmed := pendingBooking("booking-2", "customer-2")
	confirmed.Status = domain.BookingStatusConfirmed
	confirmed.Assignment = &domain.Assignment{DriverID: "driver-1", VehicleID: "vehicle-1"}
	bookingRepo.AddBooking(confirmed)

	svc := newBookingService(bookingRepo, NewMockLocationStore())

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	_, err := svc.StartTrip(context.Background(), actor, service.StartTripRequest{
		BookingID:       "booking-2",
		DriverID:        "driver-1",
		ProductPhotoKey: "objects/photo-2",
	})
	if !errors.Is(err, service.ErrDriverHasOngoingTrip) {
		t.Errorf("expected ErrDriverHasOngoingTrip, got %v", err)
	}

	// The second booking stays CONFIRMED.
	if got := bookingRepo.GetBooking("booking-2").Status; got != domain.BookingStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", got)
	}
}

func TestEndTrip_RecordsEndTime(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()
	booking := pendingBooking("booking-1", "customer-1")
	booking.Status = domain.BookingStatusOngoing
	booking.Assignment = &domain.Assignment{DriverID: "driver-1", VehicleID: "vehicle-1"}
	booking.StartTime = time.Now().Add(-45 * time.Minute)
	bookingRepo.AddBooking(booking)
	svc := newBookingService(bookingRepo, NewMockLocationStore())

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	ended, err := svc.EndTrip(context.Background(), actor, "booking-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ended.Status != domain.BookingStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", ended.Status)
	}
	if ended.EndTime.IsZero() {
		t.Error("end time not recorded")
	}
}

func TestEndTrip_OnlyFromOngoing(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.BookingStatus{
		domain.BookingStatusPending,
		domain.BookingStatusConfirmed,
		domain.BookingStatusCompleted,
		domain.BookingStatusCancelled,
	} {
		bookingRepo := NewMockBookingRepository()
		booking := pendingBooking("booking-1", "customer-1")
		booking.Status = status
		booking.Assignment = &domain.Assignment{DriverID: "driver-1", VehicleID: "vehicle-1"}
		bookingRepo.AddBooking(booking)
		svc := newBookingService(bookingRepo, NewMockLocationStore())

		actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
		_, err := svc.EndTrip(context.Background(), actor, "booking-1", "driver-1")
		if !errors.Is(err, service.ErrBookingNotOngoing) {
			t.Errorf("end from %s: expected ErrBookingNotOngoing, got %v", status, err)
		}
	}
}

// ──────────────────────────────────────────────
// CONCURRENT ACCEPTANCE
// ──────────────────────────────────────────────

func TestConcurrentAccept_ExactlyOneWinner(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()
	negotiationRepo := NewMockNegotiationRepository()
	driverRepo := NewMockDriverRepository()
	vehicleRepo := NewMockVehicleRepository()
	bookingRepo.AddBooking(pendingBooking("booking-1", "customer-1"))

	const drivers = 8
	for i := 0; i < drivers; i++ {
		id := driverID(i)
		driverRepo.AddDriver(&domain.Driver{ID: id, OwnerID: "owner-1", Name: "Driver", Phone: id, Status: domain.DriverStatusOnline})
		vehicleRepo.AddVehicle(&domain.Vehicle{ID: "vehicle-" + id, OwnerID: "owner-1", Number: "KA01" + id})
	}

	svc := service.NewNegotiationService(nil, bookingRepo, negotiationRepo, driverRepo, vehicleRepo, service.NewNotificationService())

	var wg sync.WaitGroup
	results := make([]error, drivers)
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := driverID(i)
			actor := service.Actor{ID: id, Role: service.RoleDriver}
			_, err := svc.Accept(context.Background(), actor, service.AcceptRequest{
				BookingID: "booking-1",
				DriverID:  id,
				VehicleID: "vehicle-" + id,
				Fare:      900,
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else if !errors.Is(err, service.ErrBookingNotPending) {
			t.Errorf("loser got unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winning accept, got %d", winners)
	}

	booking := bookingRepo.GetBooking("booking-1")
	if booking.Status != domain.BookingStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", booking.Status)
	}
	if booking.Assignment == nil || booking.Assignment.DriverID == "" {
		t.Error("winner must be assigned")
	}
}

func driverID(i int) string {
	return "driver-" + string(rune('a'+i))
}

// ──────────────────────────────────────────────
// DISCOVERY AND HISTORY
// ──────────────────────────────────────────────

func TestListNearbyPending_FiltersByRadius(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()

	near := pendingBooking("booking-near", "customer-1")
	near.Pickup = domain.Location{Lat: 12.9716, Lng: 77.5946}
	bookingRepo.AddBooking(near)

	far := pendingBooking("booking-far", "customer-2")
	far.Pickup = domain.Location{Lat: 19.0760, Lng: 72.8777} // Mumbai
	bookingRepo.AddBooking(far)

	confirmed := pendingBooking("booking-confirmed", "customer-3")
	confirmed.Pickup = domain.Location{Lat: 12.9716, Lng: 77.5946}
	confirmed.Status = domain.BookingStatusConfirmed
	bookingRepo.AddBooking(confirmed)

	svc := newBookingService(bookingRepo, NewMockLocationStore())

	driverAt := geo.Coordinate{Lat: 12.9716, Lng: 77.5946}
	got, err := svc.ListNearbyPending(context.Background(), driverAt, 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 nearby pending booking, got %d", len(got))
	}
	if got[0].ID != "booking-near" {
		t.Errorf("expected booking-near, got %s", got[0].ID)
	}
}

func TestListNearbyPending_InvalidCoordinateRejected(t *testing.T) {
	t.Parallel()

	svc := newBookingService(NewMockBookingRepository(), NewMockLocationStore())
	_, err := svc.ListNearbyPending(context.Background(), geo.Coordinate{Lat: 100, Lng: 200}, 1, 10)
	if !errors.Is(err, service.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestHistoryForCustomer_NewestFirstWithStatusFilter(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()
	base := time.Now()
	for i, status := range []domain.BookingStatus{
		domain.BookingStatusCompleted,
		domain.BookingStatusCancelled,
		domain.BookingStatusCompleted,
	} {
		b := pendingBooking(bookingID(i), "customer-1")
		b.Status = status
		b.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		bookingRepo.AddBooking(b)
	}
	svc := newBookingService(bookingRepo, NewMockLocationStore())

	got, err := svc.HistoryForCustomer(context.Background(), "customer-1", domain.BookingStatusCompleted, 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 completed bookings, got %d", len(got))
	}
	if !got[0].CreatedAt.After(got[1].CreatedAt) {
		t.Error("expected newest-first ordering")
	}
}

func bookingID(i int) string {
	return "booking-" + string(rune('a'+i))
}

// ──────────────────────────────────────────────
// DRIVER PRESENCE
// ──────────────────────────────────────────────

func TestDriverGoOnlineOffline(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusOffline})
	locationStore := NewMockLocationStore()
	svc := service.NewDriverService(locationStore, driverRepo)

	if err := svc.GoOnline(context.Background(), "driver-1", 12.97, 77.59); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driverRepo.GetDriver("driver-1").Status != domain.DriverStatusOnline {
		t.Error("driver should be ONLINE")
	}
	if !locationStore.HasLocation("driver-1") {
		t.Error("driver location should be indexed")
	}

	if err := svc.GoOffline(context.Background(), "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driverRepo.GetDriver("driver-1").Status != domain.DriverStatusOffline {
		t.Error("driver should be OFFLINE")
	}
	if locationStore.HasLocation("driver-1") {
		t.Error("driver location should be removed")
	}
}

func TestDriverUpdateLocation_UnknownDriverRejected(t *testing.T) {
	t.Parallel()

	svc := service.NewDriverService(NewMockLocationStore(), NewMockDriverRepository())
	err := svc.UpdateLocation(context.Background(), "ghost", 12.97, 77.59)
	if err == nil {
		t.Error("expected error for unknown driver")
	}
}
