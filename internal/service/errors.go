package service

import "errors"

// Validation errors: rejected before any state change.
var (
	// ErrInvalidCustomerID is returned when customer ID is empty.
	ErrInvalidCustomerID = errors.New("invalid customer id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidVehicleID is returned when vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidOwnerID is returned when owner ID is empty.
	ErrInvalidOwnerID = errors.New("invalid owner id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDropLocation is returned when drop coordinates are invalid.
	ErrInvalidDropLocation = errors.New("invalid drop location")

	// ErrInvalidFare is returned when a fare is negative or non-finite.
	ErrInvalidFare = errors.New("invalid fare amount")

	// ErrInvalidPaymentMode is returned when payment mode is not CASH or ONLINE.
	ErrInvalidPaymentMode = errors.New("invalid payment mode")

	// ErrMissingProductPhoto is returned when a trip is started without a
	// captured product photo reference.
	ErrMissingProductPhoto = errors.New("product photo reference required")

	// ErrInvalidLocation is returned when a driver location is invalid.
	ErrInvalidLocation = errors.New("invalid location")
)

// Transition guard violations: the attempted transition conflicts with the
// booking's current state. Never a silent no-op.
var (
	// ErrBookingNotPending is returned when an operation requires a
	// booking still in PENDING status.
	ErrBookingNotPending = errors.New("booking is not pending")

	// ErrBookingNotConfirmed is returned when starting a trip on a booking
	// that is not CONFIRMED.
	ErrBookingNotConfirmed = errors.New("booking is not confirmed")

	// ErrBookingNotOngoing is returned when ending a trip on a booking
	// that is not ONGOING.
	ErrBookingNotOngoing = errors.New("booking is not ongoing")

	// ErrBookingNotCancellable is returned when cancelling a booking that
	// is neither PENDING nor CONFIRMED.
	ErrBookingNotCancellable = errors.New("booking cannot be cancelled in current state")

	// ErrDriverNotAssigned is returned when a driver acts on a booking
	// assigned to someone else.
	ErrDriverNotAssigned = errors.New("driver not assigned to this booking")

	// ErrDriverHasOngoingTrip is returned when a driver with an active
	// trip tries to start another.
	ErrDriverHasOngoingTrip = errors.New("driver already has an ongoing trip")

	// ErrNegotiationExists is returned when a driver re-proposes a fare
	// for a booking they already have an offer on.
	ErrNegotiationExists = errors.New("negotiation already exists for this booking and driver")

	// ErrNegotiationClosed is returned when acting on a negotiation that
	// has already been accepted or declined.
	ErrNegotiationClosed = errors.New("negotiation is no longer pending")

	// ErrInvoiceExists is returned when compiling an invoice for a booking
	// that already has one.
	ErrInvoiceExists = errors.New("invoice already exists for this booking")

	// ErrBookingNotCompleted is returned when compiling an invoice for a
	// booking that has not reached COMPLETED.
	ErrBookingNotCompleted = errors.New("booking is not completed")
)

// ErrActorNotAllowed is returned when the acting identity may not perform
// the requested operation on the target entity.
var ErrActorNotAllowed = errors.New("actor not allowed to perform this operation")
