package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"freight/internal/domain"
	"freight/internal/geo"
	"freight/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// LocationPayload is a geographic point in request and response bodies.
type LocationPayload struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// CreateBookingRequest is the HTTP request body for creating a booking.
// start_time is the requested pickup time in RFC 3339 and is optional.
type CreateBookingRequest struct {
	CustomerID  string          `json:"customer_id"`
	Pickup      LocationPayload `json:"pickup"`
	Drop        LocationPayload `json:"drop"`
	Product     string          `json:"product,omitempty"`
	VehicleType string          `json:"vehicle_type,omitempty"`
	Fare        float64         `json:"fare"`
	PaymentMode string          `json:"payment_mode,omitempty"` // CASH, ONLINE
	StartTime   string          `json:"start_time,omitempty"`
}

// CancelBookingRequest is the HTTP request body for cancelling a booking.
type CancelBookingRequest struct {
	CancelledBy string `json:"cancelled_by"`
	Role        string `json:"role,omitempty"`
}

// DeclineBookingRequest is the HTTP request body for declining a booking.
type DeclineBookingRequest struct {
	OperatorID string `json:"operator_id"`
}

// StartTripRequest is the HTTP request body for starting a trip.
type StartTripRequest struct {
	DriverID        string `json:"driver_id"`
	ProductPhotoKey string `json:"product_photo_key"`
}

// EndTripRequest is the HTTP request body for ending a trip.
type EndTripRequest struct {
	DriverID string `json:"driver_id"`
}

// BookingResponse is the HTTP response for booking data.
type BookingResponse struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id"`
	DriverID        string          `json:"driver_id,omitempty"`
	VehicleID       string          `json:"vehicle_id,omitempty"`
	Pickup          LocationPayload `json:"pickup"`
	Drop            LocationPayload `json:"drop"`
	Product         string          `json:"product,omitempty"`
	VehicleType     string          `json:"vehicle_type,omitempty"`
	DistanceKm      float64         `json:"distance_km"`
	Fare            float64         `json:"fare"`
	PaymentMode     string          `json:"payment_mode"`
	Status          string          `json:"status"`
	ProductPhotoKey string          `json:"product_photo_key,omitempty"`
	StartTime       string          `json:"start_time,omitempty"`
	EndTime         string          `json:"end_time,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func toBookingResponse(b *domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:         b.ID,
		CustomerID: b.CustomerID,
		Pickup:     LocationPayload{Lat: b.Pickup.Lat, Lng: b.Pickup.Lng, Address: b.Pickup.Address},
		Drop:       LocationPayload{Lat: b.Drop.Lat, Lng: b.Drop.Lng, Address: b.Drop.Address},
		Product:    b.Product, VehicleType: b.VehicleType,
		DistanceKm:      b.DistanceKm,
		Fare:            b.Fare,
		PaymentMode:     string(b.PaymentMode),
		Status:          string(b.Status),
		ProductPhotoKey: b.ProductPhotoKey,
		CreatedAt:       b.CreatedAt.Format(timeLayout),
	}
	if b.Assignment != nil {
		resp.DriverID = b.Assignment.DriverID
		resp.VehicleID = b.Assignment.VehicleID
	}
	if !b.StartTime.IsZero() {
		resp.StartTime = b.StartTime.Format(timeLayout)
	}
	if !b.EndTime.IsZero() {
		resp.EndTime = b.EndTime.Format(timeLayout)
	}
	return resp
}

func toBookingResponses(bookings []*domain.Booking) []BookingResponse {
	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, toBookingResponse(b))
	}
	return response
}

// parseRole maps the optional role field to an actor role, defaulting to
// customer.
func parseRole(role string, fallback service.Role) service.Role {
	switch service.Role(role) {
	case service.RoleCustomer, service.RoleDriver, service.RoleOwner, service.RoleOperator:
		return service.Role(role)
	default:
		return fallback
	}
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

// Create handles POST /v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	// Validate payment mode
	paymentMode, err := service.ValidatePaymentMode(req.PaymentMode)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var startTime time.Time
	if req.StartTime != "" {
		startTime, err = time.Parse(timeLayout, req.StartTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid start_time"})
			return
		}
	}

	actor := service.Actor{ID: req.CustomerID, Role: service.RoleCustomer}
	booking, err := h.bookingService.Create(c.Request.Context(), actor, service.CreateBookingRequest{
		Pickup:      domain.Location{Lat: req.Pickup.Lat, Lng: req.Pickup.Lng, Address: req.Pickup.Address},
		Drop:        domain.Location{Lat: req.Drop.Lat, Lng: req.Drop.Lng, Address: req.Drop.Address},
		Product:     req.Product,
		VehicleType: req.VehicleType,
		Fare:        req.Fare,
		PaymentMode: paymentMode,
		StartTime:   startTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBookingResponse(booking))
}

// Get handles GET /v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// Cancel handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	actor := service.Actor{ID: req.CancelledBy, Role: parseRole(req.Role, service.RoleCustomer)}
	booking, err := h.bookingService.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// Decline handles POST /v1/bookings/:id/decline
func (h *BookingHandler) Decline(c *gin.Context) {
	var req DeclineBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	actor := service.Actor{ID: req.OperatorID, Role: service.RoleOperator}
	booking, err := h.bookingService.Decline(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// StartTrip handles POST /v1/bookings/:id/start
func (h *BookingHandler) StartTrip(c *gin.Context) {
	var req StartTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	actor := service.Actor{ID: req.DriverID, Role: service.RoleDriver}
	booking, err := h.bookingService.StartTrip(c.Request.Context(), actor, service.StartTripRequest{
		BookingID:       c.Param("id"),
		DriverID:        req.DriverID,
		ProductPhotoKey: req.ProductPhotoKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// EndTrip handles POST /v1/bookings/:id/end
func (h *BookingHandler) EndTrip(c *gin.Context) {
	var req EndTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	actor := service.Actor{ID: req.DriverID, Role: service.RoleDriver}
	booking, err := h.bookingService.EndTrip(c.Request.Context(), actor, c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// ListNearby handles GET /v1/bookings/nearby
func (h *BookingHandler) ListNearby(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng query parameters are required"})
		return
	}

	bookings, err := h.bookingService.ListNearbyPending(
		c.Request.Context(),
		geo.Coordinate{Lat: lat, Lng: lng},
		queryInt(c, "page", 1),
		queryInt(c, "limit", 0),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponses(bookings))
}

// HistoryForCustomer handles GET /v1/customers/:id/bookings
func (h *BookingHandler) HistoryForCustomer(c *gin.Context) {
	bookings, err := h.bookingService.HistoryForCustomer(
		c.Request.Context(),
		c.Param("id"),
		domain.BookingStatus(c.Query("status")),
		queryInt(c, "page", 1),
		queryInt(c, "limit", 0),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponses(bookings))
}

// HistoryForDriver handles GET /v1/drivers/:id/bookings
func (h *BookingHandler) HistoryForDriver(c *gin.Context) {
	bookings, err := h.bookingService.HistoryForDriver(
		c.Request.Context(),
		c.Param("id"),
		queryInt(c, "page", 1),
		queryInt(c, "limit", 0),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponses(bookings))
}
