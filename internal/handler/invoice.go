package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freight/internal/domain"
	"freight/internal/service"
)

// InvoiceHandler handles HTTP requests for invoices.
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// InvoiceResponse is the HTTP response for invoice data.
type InvoiceResponse struct {
	InvoiceNumber string `json:"invoice_number,omitempty"`
	BookingID     string `json:"booking_id"`

	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	DriverName    string `json:"driver_name"`
	DriverPhone   string `json:"driver_phone"`
	OwnerName     string `json:"owner_name,omitempty"`
	VehicleNumber string `json:"vehicle_number,omitempty"`

	PickupAddress string `json:"pickup_address"`
	DropAddress   string `json:"drop_address"`

	FareAmount     float64 `json:"fare_amount"`
	DriverFee      float64 `json:"driver_fee"`
	ConvenienceFee float64 `json:"convenience_fee"`
	GSTAmount      float64 `json:"gst_amount"`
	GrandTotal     float64 `json:"grand_total"`
	SubTotal       float64 `json:"sub_total"`
	Rounding       float64 `json:"rounding"`

	TripDurationMin int    `json:"trip_duration_min"`
	PaymentMode     string `json:"payment_mode"`
	CreatedAt       string `json:"created_at"`
}

func toInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceNumber: inv.InvoiceNumber,
		BookingID:     inv.BookingID,

		CustomerName:  inv.CustomerName,
		CustomerPhone: inv.CustomerPhone,
		DriverName:    inv.DriverName,
		DriverPhone:   inv.DriverPhone,
		OwnerName:     inv.OwnerName,
		VehicleNumber: inv.VehicleNumber,

		PickupAddress: inv.PickupAddress,
		DropAddress:   inv.DropAddress,

		FareAmount:     inv.FareAmount,
		DriverFee:      inv.DriverFee,
		ConvenienceFee: inv.ConvenienceFee,
		GSTAmount:      inv.GSTAmount,
		GrandTotal:     inv.GrandTotal,
		SubTotal:       inv.SubTotal,
		Rounding:       inv.Rounding,

		TripDurationMin: inv.TripDurationMin,
		PaymentMode:     string(inv.PaymentMode),
		CreatedAt:       inv.CreatedAt.Format(timeLayout),
	}
}

// Compile handles POST /v1/bookings/:id/invoice
func (h *InvoiceHandler) Compile(c *gin.Context) {
	invoice, err := h.invoiceService.Compile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toInvoiceResponse(invoice))
}

// View handles GET /v1/bookings/:id/invoice
func (h *InvoiceHandler) View(c *gin.Context) {
	invoice, err := h.invoiceService.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toInvoiceResponse(invoice))
}

// ListForCustomer handles GET /v1/customers/:id/invoices
func (h *InvoiceHandler) ListForCustomer(c *gin.Context) {
	invoices, err := h.invoiceService.ListForCustomer(
		c.Request.Context(),
		c.Param("id"),
		queryInt(c, "page", 1),
		queryInt(c, "limit", 0),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		response = append(response, toInvoiceResponse(inv))
	}

	respondJSON(c, http.StatusOK, response)
}
