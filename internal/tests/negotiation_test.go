package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"freight/internal/domain"
	"freight/internal/service"
)

// ──────────────────────────────────────────────
// FARE NEGOTIATION LEDGER
// ──────────────────────────────────────────────

func newNegotiationFixture() (*MockBookingRepository, *MockNegotiationRepository, *service.NegotiationService) {
	bookingRepo := NewMockBookingRepository()
	negotiationRepo := NewMockNegotiationRepository()
	driverRepo := NewMockDriverRepository()
	vehicleRepo := NewMockVehicleRepository()

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", OwnerID: "owner-1", Name: "Ravi", Phone: "111", Status: domain.DriverStatusOnline})
	driverRepo.AddDriver(&domain.Driver{ID: "driver-2", OwnerID: "owner-1", Name: "Suresh", Phone: "222", Status: domain.DriverStatusOnline})
	vehicleRepo.AddVehicle(&domain.Vehicle{ID: "vehicle-1", OwnerID: "owner-1", Number: "KA01AB1234"})

	svc := service.NewNegotiationService(nil, bookingRepo, negotiationRepo, driverRepo, vehicleRepo, service.NewNotificationService())
	return bookingRepo, negotiationRepo, svc
}

func TestProposeFare_RecordsPendingOffer(t *testing.T) {
	t.Parallel()

	bookingRepo, _, svc := newNegotiationFixture()
	bookingRepo.AddBooking(pendingBooking("booking-1", "customer-1"))

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	negotiation, err := svc.Propose(context.Background(), actor, service.ProposeRequest{
		BookingID:      "booking-1",
		DriverID:       "driver-1",
		OwnerID:        "owner-1",
		NegotiatedFare: 950,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if negotiation.Status != domain.NegotiationStatusPending {
		t.Errorf("expected PENDING, got %s", negotiation.Status)
	}
	if negotiation.NegotiatedFare != 950 {
		t.Errorf("expected fare 950, got %f", negotiation.NegotiatedFare)
	}

	// The booking itself is untouched by a proposal.
	if got := bookingRepo.GetBooking("booking-1").Status; got != domain.BookingStatusPending {
		t.Errorf("booking should stay PENDING, got %s", got)
	}
}

func TestProposeFare_DuplicatePairRejected(t *testing.T) {
	t.Parallel()

	bookingRepo, _, svc := newNegotiationFixture()
	bookingRepo.AddBooking(pendingBooking("booking-1", "customer-1"))

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	req := service.ProposeRequest{BookingID: "booking-1", DriverID: "driver-1", OwnerID: "owner-1", NegotiatedFare: 950}

	if _, err := svc.Propose(context.Background(), actor, req); err != nil {
		t.Fatalf("first proposal failed: %v", err)
	}

	req.NegotiatedFare = 990
	_, err := svc.Propose(context.Background(), actor, req)
	if !errors.Is(err, service.ErrNegotiationExists) {
		t.Errorf("expected ErrNegotiationExists, got %v", err)
	}
}

func TestProposeFare_NonPendingBookingRejected(t *testing.T) {
	t.Parallel()

	bookingRepo, _, svc := newNegotiationFixture()
	booking := pendingBooking("booking-1", "customer-1")
	booking.Status = domain.BookingStatusConfirmed
	bookingRepo.AddBooking(booking)

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	_, err := svc.Propose(context.Background(), actor, service.ProposeRequest{
		BookingID:      "booking-1",
		DriverID:       "driver-1",
		OwnerID:        "owner-1",
		NegotiatedFare: 950,
	})
	if !errors.Is(err, service.ErrBookingNotPending) {
		t.Errorf("expected ErrBookingNotPending, got %v", err)
	}
}

func TestProposeFare_UnknownBookingOrDriver(t *testing.T) {
	t.Parallel()

	bookingRepo, _, svc := newNegotiationFixture()
	bookingRepo.AddBooking(pendingBooking("booking-1", "customer-1"))

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	if _, err := svc.Propose(context.Background(), actor, service.ProposeRequest{
		BookingID: "ghost", DriverID: "driver-1", OwnerID: "owner-1", NegotiatedFare: 950,
	}); err == nil {
		t.Error("expected error for unknown booking")
	}

	ghost := service.Actor{ID: "ghost-driver", Role: service.RoleDriver}
	if _, err := svc.Propose(context.Background(), ghost, service.ProposeRequest{
		BookingID: "booking-1", DriverID: "ghost-driver", OwnerID: "owner-1", NegotiatedFare: 950,
	}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestDeclineNegotiation_IdempotentAndKeepsBookingPending(t *testing.T) {
	t.Parallel()

	bookingRepo, negotiationRepo, svc := newNegotiationFixture()
	bookingRepo.AddBooking(pendingBooking("booking-1", "customer-1"))
	negotiationRepo.AddNegotiation(&domain.FareNegotiation{
		BookingID:      "booking-1",
		DriverID:       "driver-1",
		OwnerID:        "owner-1",
		NegotiatedFare: 950,
		Status:         domain.NegotiationStatusPending,
		NegotiatedAt:   time.Now(),
	})

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	if err := svc.Decline(context.Background(), actor, "booking-1", "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := negotiationRepo.GetNegotiation("booking-1", "driver-1").Status; got != domain.NegotiationStatusDeclined {
		t.Errorf("expected DECLINED, got %s", got)
	}

	// Second decline is a no-op success.
	if err := svc.Decline(context.Background(), actor, "booking-1", "driver-1"); err != nil {
		t.Errorf("re-decline should be idempotent, got %v", err)
	}

	// A declined offer never touches the booking.
	if got := bookingRepo.GetBooking("booking-1").Status; got != domain.BookingStatusPending {
		t.Errorf("booking should stay PENDING, got %s", got)
	}
}

func TestDeclineNegotiation_AcceptedOfferIsClosed(t *testing.T) {
	t.Parallel()

	bookingRepo, negotiationRepo, svc := newNegotiationFixture()
	bookingRepo.AddBooking(pendingBooking("booking-1", "customer-1"))
	negotiationRepo.AddNegotiation(&domain.FareNegotiation{
		BookingID: "booking-1",
		DriverID:  "driver-1",
		OwnerID:   "owner-1",
		Status:    domain.NegotiationStatusAccepted,
	})

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	err := svc.Decline(context.Background(), actor, "booking-1", "driver-1")
	if !errors.Is(err, service.ErrNegotiationClosed) {
		t.Errorf("expected ErrNegotiationClosed, got %v", err)
	}
}

func TestAccept_ClosesLedgerAndSupersedesOthers(t *testing.T) {
	t.Parallel()

	bookingRepo, negotiationRepo, svc := newNegotiationFixture()
	bookingRepo.AddBooking(pendingBooking("booking-1", "customer-1"))

	now := time.Now()
	negotiationRepo.AddNegotiation(&domain.FareNegotiation{
		BookingID: "booking-1", DriverID: "driver-1", OwnerID: "owner-1",
		NegotiatedFare: 950, Status: domain.NegotiationStatusPending, NegotiatedAt: now,
	})
	negotiationRepo.AddNegotiation(&domain.FareNegotiation{
		BookingID: "booking-1", DriverID: "driver-2", OwnerID: "owner-1",
		NegotiatedFare: 990, Status: domain.NegotiationStatusPending, NegotiatedAt: now,
	})

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	booking, err := svc.Accept(context.Background(), actor, service.AcceptRequest{
		BookingID: "booking-1",
		DriverID:  "driver-1",
		VehicleID: "vehicle-1",
		Fare:      950,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != domain.BookingStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", booking.Status)
	}
	if booking.Assignment == nil || booking.Assignment.DriverID != "driver-1" || booking.Assignment.VehicleID != "vehicle-1" {
		t.Errorf("assignment not recorded: %+v", booking.Assignment)
	}
	if booking.Fare != 950 {
		t.Errorf("agreed fare not fixed on booking: %f", booking.Fare)
	}

	if got := negotiationRepo.GetNegotiation("booking-1", "driver-1").Status; got != domain.NegotiationStatusAccepted {
		t.Errorf("winner's offer should be ACCEPTED, got %s", got)
	}
	if got := negotiationRepo.GetNegotiation("booking-1", "driver-2").Status; got != domain.NegotiationStatusDeclined {
		t.Errorf("other pending offer should be superseded to DECLINED, got %s", got)
	}
}

func TestAccept_DirectWithoutPriorOffer(t *testing.T) {
	t.Parallel()

	bookingRepo, _, svc := newNegotiationFixture()
	bookingRepo.AddBooking(pendingBooking("booking-1", "customer-1"))

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	booking, err := svc.Accept(context.Background(), actor, service.AcceptRequest{
		BookingID: "booking-1",
		DriverID:  "driver-1",
		VehicleID: "vehicle-1",
		Fare:      850,
	})
	if err != nil {
		t.Fatalf("direct accept without offer must work: %v", err)
	}
	if booking.Status != domain.BookingStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", booking.Status)
	}
}

func TestAccept_NonPendingBookingConflicts(t *testing.T) {
	t.Parallel()

	bookingRepo, _, svc := newNegotiationFixture()
	booking := pendingBooking("booking-1", "customer-1")
	booking.Status = domain.BookingStatusConfirmed
	booking.Assignment = &domain.Assignment{DriverID: "driver-2", VehicleID: "vehicle-1"}
	bookingRepo.AddBooking(booking)

	actor := service.Actor{ID: "driver-1", Role: service.RoleDriver}
	_, err := svc.Accept(context.Background(), actor, service.AcceptRequest{
		BookingID: "booking-1",
		DriverID:  "driver-1",
		VehicleID: "vehicle-1",
		Fare:      850,
	})
	if !errors.Is(err, service.ErrBookingNotPending) {
		t.Errorf("expected ErrBookingNotPending, got %v", err)
	}

	// The existing assignment stands.
	if got := bookingRepo.GetBooking("booking-1").Assignment.DriverID; got != "driver-2" {
		t.Errorf("assignment overwritten by failed accept: %s", got)
	}
}

func TestAccept_ActorMustBeTheDriver(t *testing.T) {
	t.Parallel()

	bookingRepo, _, svc := newNegotiationFixture()
	bookingRepo.AddBooking(pendingBooking("booking-1", "customer-1"))

	actor := service.Actor{ID: "driver-2", Role: service.RoleDriver}
	_, err := svc.Accept(context.Background(), actor, service.AcceptRequest{
		BookingID: "booking-1",
		DriverID:  "driver-1",
		VehicleID: "vehicle-1",
		Fare:      850,
	})
	if !errors.Is(err, service.ErrActorNotAllowed) {
		t.Errorf("expected ErrActorNotAllowed, got %v", err)
	}
}

func TestListForDriver_ReturnsFeed(t *testing.T) {
	t.Parallel()

	_, negotiationRepo, svc := newNegotiationFixture()
	now := time.Now()
	negotiationRepo.AddNegotiation(&domain.FareNegotiation{
		BookingID: "booking-1", DriverID: "driver-1", OwnerID: "owner-1",
		Status: domain.NegotiationStatusPending, NegotiatedAt: now.Add(-time.Minute),
	})
	negotiationRepo.AddNegotiation(&domain.FareNegotiation{
		BookingID: "booking-2", DriverID: "driver-1", OwnerID: "owner-1",
		Status: domain.NegotiationStatusDeclined, NegotiatedAt: now,
	})
	negotiationRepo.AddNegotiation(&domain.FareNegotiation{
		BookingID: "booking-3", DriverID: "driver-2", OwnerID: "owner-1",
		Status: domain.NegotiationStatusPending, NegotiatedAt: now,
	})

	feed, err := svc.ListForDriver(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(feed))
	}
	if feed[0].BookingID != "booking-2" {
		t.Errorf("expected newest first, got %s", feed[0].BookingID)
	}
}
