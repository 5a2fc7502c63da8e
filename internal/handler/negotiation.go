package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freight/internal/domain"
	"freight/internal/service"
)

// NegotiationHandler handles HTTP requests for fare negotiations.
type NegotiationHandler struct {
	negotiationService *service.NegotiationService
}

// NewNegotiationHandler creates a new NegotiationHandler.
func NewNegotiationHandler(negotiationService *service.NegotiationService) *NegotiationHandler {
	return &NegotiationHandler{negotiationService: negotiationService}
}

// ProposeFareRequest is the HTTP request body for proposing a fare.
type ProposeFareRequest struct {
	DriverID       string  `json:"driver_id"`
	OwnerID        string  `json:"owner_id"`
	NegotiatedFare float64 `json:"negotiated_fare"`
	ProposedBy     string  `json:"proposed_by,omitempty"`
	Role           string  `json:"role,omitempty"`
}

// DeclineNegotiationRequest is the HTTP request body for declining an offer.
type DeclineNegotiationRequest struct {
	DriverID   string `json:"driver_id"`
	DeclinedBy string `json:"declined_by,omitempty"`
	Role       string `json:"role,omitempty"`
}

// AcceptBookingRequest is the HTTP request body for a driver accepting a
// booking, either directly or by closing their negotiation.
type AcceptBookingRequest struct {
	DriverID  string  `json:"driver_id"`
	VehicleID string  `json:"vehicle_id"`
	Fare      float64 `json:"fare"`
}

// NegotiationResponse is the HTTP response for negotiation data.
type NegotiationResponse struct {
	BookingID      string  `json:"booking_id"`
	DriverID       string  `json:"driver_id"`
	OwnerID        string  `json:"owner_id"`
	NegotiatedFare float64 `json:"negotiated_fare"`
	Status         string  `json:"status"`
	NegotiatedAt   string  `json:"negotiated_at"`
}

func toNegotiationResponse(n *domain.FareNegotiation) NegotiationResponse {
	return NegotiationResponse{
		BookingID:      n.BookingID,
		DriverID:       n.DriverID,
		OwnerID:        n.OwnerID,
		NegotiatedFare: n.NegotiatedFare,
		Status:         string(n.Status),
		NegotiatedAt:   n.NegotiatedAt.Format(timeLayout),
	}
}

func toNegotiationResponses(negotiations []*domain.FareNegotiation) []NegotiationResponse {
	response := make([]NegotiationResponse, 0, len(negotiations))
	for _, n := range negotiations {
		response = append(response, toNegotiationResponse(n))
	}
	return response
}

// Propose handles POST /v1/bookings/:id/negotiations
func (h *NegotiationHandler) Propose(c *gin.Context) {
	var req ProposeFareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	actorID := req.ProposedBy
	if actorID == "" {
		actorID = req.DriverID
	}
	actor := service.Actor{ID: actorID, Role: parseRole(req.Role, service.RoleDriver)}

	negotiation, err := h.negotiationService.Propose(c.Request.Context(), actor, service.ProposeRequest{
		BookingID:      c.Param("id"),
		DriverID:       req.DriverID,
		OwnerID:        req.OwnerID,
		NegotiatedFare: req.NegotiatedFare,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toNegotiationResponse(negotiation))
}

// Decline handles POST /v1/bookings/:id/negotiations/decline
func (h *NegotiationHandler) Decline(c *gin.Context) {
	var req DeclineNegotiationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	actorID := req.DeclinedBy
	if actorID == "" {
		actorID = req.DriverID
	}
	actor := service.Actor{ID: actorID, Role: parseRole(req.Role, service.RoleDriver)}

	if err := h.negotiationService.Decline(c.Request.Context(), actor, c.Param("id"), req.DriverID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Accept handles POST /v1/bookings/:id/accept
func (h *NegotiationHandler) Accept(c *gin.Context) {
	var req AcceptBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	actor := service.Actor{ID: req.DriverID, Role: service.RoleDriver}
	booking, err := h.negotiationService.Accept(c.Request.Context(), actor, service.AcceptRequest{
		BookingID: c.Param("id"),
		DriverID:  req.DriverID,
		VehicleID: req.VehicleID,
		Fare:      req.Fare,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// ListForBooking handles GET /v1/bookings/:id/negotiations
func (h *NegotiationHandler) ListForBooking(c *gin.Context) {
	negotiations, err := h.negotiationService.ListForBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toNegotiationResponses(negotiations))
}

// ListForDriver handles GET /v1/drivers/:id/negotiations
func (h *NegotiationHandler) ListForDriver(c *gin.Context) {
	negotiations, err := h.negotiationService.ListForDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toNegotiationResponses(negotiations))
}
