package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusOngoing   BookingStatus = "ONGOING"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusDeclined  BookingStatus = "DECLINED"
)

// Terminal reports whether no further transition is permitted from s.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled || s == BookingStatusDeclined
}

// PaymentMode represents how the customer settles the fare.
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "CASH"
	PaymentModeOnline PaymentMode = "ONLINE"
)

// Location is a geographic point plus its human-readable address.
type Location struct {
	Lat     float64
	Lng     float64
	Address string
}

// Assignment binds a booking to the driver and vehicle that will serve it.
// A nil Assignment means the booking is not yet matched; driver and vehicle
// are always set together.
type Assignment struct {
	DriverID  string
	VehicleID string
}

// Booking represents one freight transport request from pickup to drop.
type Booking struct {
	ID              string
	CustomerID      string
	Assignment      *Assignment
	Pickup          Location
	Drop            Location
	Product         string
	VehicleType     string
	DistanceKm      float64
	Fare            float64
	PaymentMode     PaymentMode
	Status          BookingStatus
	ProductPhotoKey string
	StartTime       time.Time
	EndTime         time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
