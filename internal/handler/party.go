package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"freight/internal/domain"
	"freight/internal/repository"
	"freight/internal/service"
)

// maxPhotoBytes bounds product photo uploads.
const maxPhotoBytes = 10 << 20

// CustomerHandler handles HTTP requests for customers.
type CustomerHandler struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerRepo repository.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{customerRepo: customerRepo}
}

// RegisterRequest is the HTTP request body for customer registration.
type RegisterRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CustomerResponse is the HTTP response for customer data.
type CustomerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Register handles POST /v1/customers/register
func (h *CustomerHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	// Check if customer already exists
	existing, err := h.customerRepo.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}

	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message":  "Customer already registered",
			"customer": CustomerResponse{ID: existing.ID, Name: existing.Name, Phone: existing.Phone},
		})
		return
	}

	customer := &domain.Customer{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		CreatedAt: time.Now(),
	}

	if err := h.customerRepo.Create(c.Request.Context(), customer); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CustomerResponse{
		ID:    customer.ID,
		Name:  customer.Name,
		Phone: customer.Phone,
	})
}

// GetAll handles GET /v1/customers
func (h *CustomerHandler) GetAll(c *gin.Context) {
	customers, err := h.customerRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var response []CustomerResponse
	for _, cu := range customers {
		response = append(response, CustomerResponse{
			ID:    cu.ID,
			Name:  cu.Name,
			Phone: cu.Phone,
		})
	}

	c.JSON(http.StatusOK, response)
}

// OwnerHandler handles HTTP requests for fleet owners and their vehicles.
type OwnerHandler struct {
	ownerRepo   repository.OwnerRepository
	vehicleRepo repository.VehicleRepository
}

// NewOwnerHandler creates a new OwnerHandler.
func NewOwnerHandler(ownerRepo repository.OwnerRepository, vehicleRepo repository.VehicleRepository) *OwnerHandler {
	return &OwnerHandler{ownerRepo: ownerRepo, vehicleRepo: vehicleRepo}
}

// OwnerResponse is the HTTP response for owner data.
type OwnerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// RegisterVehicleRequest is the HTTP request body for vehicle registration.
type RegisterVehicleRequest struct {
	Number      string `json:"number"`
	VehicleType string `json:"vehicle_type"`
}

// VehicleResponse is the HTTP response for vehicle data.
type VehicleResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Number      string `json:"number"`
	VehicleType string `json:"vehicle_type"`
}

// Register handles POST /v1/owners/register
func (h *OwnerHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	owner := &domain.Owner{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		CreatedAt: time.Now(),
	}

	if err := h.ownerRepo.Create(c.Request.Context(), owner); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, OwnerResponse{
		ID:    owner.ID,
		Name:  owner.Name,
		Phone: owner.Phone,
	})
}

// RegisterVehicle handles POST /v1/owners/:id/vehicles
func (h *OwnerHandler) RegisterVehicle(c *gin.Context) {
	ownerID := c.Param("id")

	var req RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Number == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "vehicle number is required"})
		return
	}

	if _, err := h.ownerRepo.GetByID(c.Request.Context(), ownerID); err != nil {
		respondError(c, err)
		return
	}

	vehicle := &domain.Vehicle{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Number:      req.Number,
		VehicleType: req.VehicleType,
	}

	if err := h.vehicleRepo.Create(c.Request.Context(), vehicle); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, VehicleResponse{
		ID:          vehicle.ID,
		OwnerID:     vehicle.OwnerID,
		Number:      vehicle.Number,
		VehicleType: vehicle.VehicleType,
	})
}

// ListVehicles handles GET /v1/owners/:id/vehicles
func (h *OwnerHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.vehicleRepo.ListByOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		response = append(response, VehicleResponse{
			ID:          v.ID,
			OwnerID:     v.OwnerID,
			Number:      v.Number,
			VehicleType: v.VehicleType,
		})
	}

	c.JSON(http.StatusOK, response)
}

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService *service.DriverService
	driverRepo    repository.DriverRepository
	objectStore   service.ObjectStore
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService, driverRepo repository.DriverRepository, objectStore service.ObjectStore) *DriverHandler {
	return &DriverHandler{
		driverService: driverService,
		driverRepo:    driverRepo,
		objectStore:   objectStore,
	}
}

// RegisterDriverRequest is the HTTP request body for driver registration.
type RegisterDriverRequest struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Status  string `json:"status"`
}

// PresenceRequest is the HTTP request body for driver presence updates.
type PresenceRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UploadPhotoResponse is the HTTP response for a product photo upload.
type UploadPhotoResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	// Check if driver already exists
	existing, err := h.driverRepo.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}

	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "Driver already registered",
			"driver":  DriverResponse{ID: existing.ID, OwnerID: existing.OwnerID, Name: existing.Name, Phone: existing.Phone, Status: string(existing.Status)},
		})
		return
	}

	driver := &domain.Driver{
		ID:      uuid.New().String(),
		OwnerID: req.OwnerID,
		Name:    req.Name,
		Phone:   req.Phone,
		Status:  domain.DriverStatusOffline,
	}

	if err := h.driverRepo.Create(c.Request.Context(), driver); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, DriverResponse{
		ID:      driver.ID,
		OwnerID: driver.OwnerID,
		Name:    driver.Name,
		Phone:   driver.Phone,
		Status:  string(driver.Status),
	})
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var response []DriverResponse
	for _, d := range drivers {
		response = append(response, DriverResponse{
			ID:      d.ID,
			OwnerID: d.OwnerID,
			Name:    d.Name,
			Phone:   d.Phone,
			Status:  string(d.Status),
		})
	}

	c.JSON(http.StatusOK, response)
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req PresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.driverService.UpdateLocation(c.Request.Context(), c.Param("id"), req.Lat, req.Lng); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GoOnline handles POST /v1/drivers/:id/online
func (h *DriverHandler) GoOnline(c *gin.Context) {
	var req PresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.driverService.GoOnline(c.Request.Context(), c.Param("id"), req.Lat, req.Lng); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GoOffline handles POST /v1/drivers/:id/offline
func (h *DriverHandler) GoOffline(c *gin.Context) {
	if err := h.driverService.GoOffline(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadPhoto handles POST /v1/drivers/:id/photos. The returned key is
// passed back when starting a trip.
func (h *DriverHandler) UploadPhoto(c *gin.Context) {
	if _, err := h.driverRepo.GetByID(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPhotoBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "could not read request body"})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "photo body is required"})
		return
	}

	key, err := h.objectStore.Upload(c.Request.Context(), data, c.ContentType())
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := h.objectStore.SignedURL(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, UploadPhotoResponse{Key: key, URL: url})
}
