package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"freight/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationBookingCreated   NotificationType = "BOOKING_CREATED"
	NotificationFareProposed     NotificationType = "FARE_PROPOSED"
	NotificationBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotificationBookingDeclined  NotificationType = "BOOKING_DECLINED"
	NotificationTripStarted      NotificationType = "TRIP_STARTED"
	NotificationTripEnded        NotificationType = "TRIP_ENDED"
	NotificationInvoiceReady     NotificationType = "INVOICE_READY"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles best-effort notification delivery. Delivery
// failure never affects booking correctness; callers ignore the returned
// error on fire-and-forget paths.
type NotificationService struct {
	// In a real system, this would have:
	// - Push notification client (FCM, APNS)
	// - SMS client
	// - WebSocket connections for real-time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyBookingCreated fans the new booking out to nearby online drivers.
func (s *NotificationService) NotifyBookingCreated(ctx context.Context, booking *domain.Booking, nearbyDriverIDs []string) error {
	for _, driverID := range nearbyDriverIDs {
		notification := Notification{
			Type:        NotificationBookingCreated,
			RecipientID: driverID,
			Title:       "New Booking Request",
			Message:     fmt.Sprintf("New booking near you. Pickup at %s", booking.Pickup.Address),
			Data: map[string]interface{}{
				"booking_id":   booking.ID,
				"pickup_lat":   booking.Pickup.Lat,
				"pickup_lng":   booking.Pickup.Lng,
				"product":      booking.Product,
				"vehicle_type": booking.VehicleType,
				"fare":         booking.Fare,
			},
			CreatedAt: time.Now(),
		}
		s.send(ctx, notification)
	}
	return nil
}

// NotifyFareProposed tells the booking's customer a new offer exists.
func (s *NotificationService) NotifyFareProposed(ctx context.Context, booking *domain.Booking, n *domain.FareNegotiation) error {
	notification := Notification{
		Type:        NotificationFareProposed,
		RecipientID: booking.CustomerID,
		Title:       "New Fare Offer",
		Message:     fmt.Sprintf("A driver has offered %.2f for your booking", n.NegotiatedFare),
		Data: map[string]interface{}{
			"booking_id":      n.BookingID,
			"driver_id":       n.DriverID,
			"negotiated_fare": n.NegotiatedFare,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyBookingConfirmed tells the customer a driver accepted the booking.
func (s *NotificationService) NotifyBookingConfirmed(ctx context.Context, booking *domain.Booking) error {
	var driverID string
	if booking.Assignment != nil {
		driverID = booking.Assignment.DriverID
	}

	notification := Notification{
		Type:        NotificationBookingConfirmed,
		RecipientID: booking.CustomerID,
		Title:       "Booking Confirmed",
		Message:     "A driver has accepted your booking",
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"driver_id":  driverID,
			"fare":       booking.Fare,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyBookingCancelled tells the assigned driver, if any, about a
// cancellation.
func (s *NotificationService) NotifyBookingCancelled(ctx context.Context, booking *domain.Booking) error {
	if booking.Assignment == nil {
		return nil
	}

	notification := Notification{
		Type:        NotificationBookingCancelled,
		RecipientID: booking.Assignment.DriverID,
		Title:       "Booking Cancelled",
		Message:     "The customer has cancelled the booking",
		Data: map[string]interface{}{
			"booking_id": booking.ID,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyBookingDeclined tells the customer no driver will serve the booking.
func (s *NotificationService) NotifyBookingDeclined(ctx context.Context, booking *domain.Booking) error {
	notification := Notification{
		Type:        NotificationBookingDeclined,
		RecipientID: booking.CustomerID,
		Title:       "Booking Declined",
		Message:     "No driver is available for your booking",
		Data: map[string]interface{}{
			"booking_id": booking.ID,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyTripStarted tells the customer the trip is under way.
func (s *NotificationService) NotifyTripStarted(ctx context.Context, booking *domain.Booking) error {
	notification := Notification{
		Type:        NotificationTripStarted,
		RecipientID: booking.CustomerID,
		Title:       "Trip Started",
		Message:     "Your consignment is on its way",
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"start_time": booking.StartTime,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyTripEnded tells the customer the trip is complete.
func (s *NotificationService) NotifyTripEnded(ctx context.Context, booking *domain.Booking) error {
	notification := Notification{
		Type:        NotificationTripEnded,
		RecipientID: booking.CustomerID,
		Title:       "Trip Completed",
		Message:     fmt.Sprintf("Your booking is complete. Fare: %.2f", booking.Fare),
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"end_time":   booking.EndTime,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyInvoiceReady tells the customer the invoice is available.
func (s *NotificationService) NotifyInvoiceReady(ctx context.Context, customerID string, inv *domain.Invoice) error {
	notification := Notification{
		Type:        NotificationInvoiceReady,
		RecipientID: customerID,
		Title:       "Invoice Ready",
		Message:     fmt.Sprintf("Invoice %s for %.2f is ready", inv.InvoiceNumber, inv.GrandTotal),
		Data: map[string]interface{}{
			"invoice_number": inv.InvoiceNumber,
			"booking_id":     inv.BookingID,
			"grand_total":    inv.GrandTotal,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// send delivers a notification (mock implementation).
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	// In a real implementation, this would push via FCM/APNS, SMS, or a
	// websocket fan-out.
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	return nil
}
