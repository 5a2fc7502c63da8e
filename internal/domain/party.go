package domain

import "time"

// Customer represents the owner of a booking.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
}

// Owner is a fleet operator managing one or more drivers and vehicles.
type Owner struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
}

// DriverStatus represents the current availability of a driver.
type DriverStatus string

const (
	DriverStatusOnline  DriverStatus = "ONLINE"
	DriverStatusOffline DriverStatus = "OFFLINE"
)

// Driver represents a driver in the system. Every driver belongs to an
// owner; the owner assignment may change over time, so invoices resolve it
// at compile time.
type Driver struct {
	ID      string
	OwnerID string
	Name    string
	Phone   string
	Status  DriverStatus
}

// Vehicle represents a freight vehicle registered by an owner.
type Vehicle struct {
	ID          string
	OwnerID     string
	Number      string
	VehicleType string
}
