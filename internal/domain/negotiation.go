package domain

import "time"

// NegotiationStatus represents the current status of a fare negotiation.
type NegotiationStatus string

const (
	NegotiationStatusPending  NegotiationStatus = "PENDING"
	NegotiationStatusAccepted NegotiationStatus = "ACCEPTED"
	NegotiationStatusDeclined NegotiationStatus = "DECLINED"
)

// FareNegotiation is one driver's fare offer for a specific pending booking.
// At most one row exists per (BookingID, DriverID) pair.
type FareNegotiation struct {
	BookingID      string
	DriverID       string
	OwnerID        string
	NegotiatedFare float64
	Status         NegotiationStatus
	NegotiatedAt   time.Time
}
