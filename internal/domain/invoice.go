package domain

import "time"

// Invoice is the immutable financial record produced once a booking
// completes. Party and vehicle fields are snapshots captured at generation
// time, not live references.
type Invoice struct {
	InvoiceNumber string
	BookingID     string

	CustomerName  string
	CustomerPhone string
	DriverName    string
	DriverPhone   string
	OwnerName     string
	VehicleNumber string

	PickupAddress string
	DropAddress   string

	FareAmount     float64
	DriverFee      float64
	ConvenienceFee float64
	GSTAmount      float64
	GrandTotal     float64
	SubTotal       float64
	Rounding       float64

	TripDurationMin int
	PaymentMode     PaymentMode
	CreatedAt       time.Time
}
