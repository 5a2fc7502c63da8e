package tests

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"freight/internal/domain"
	"freight/internal/redis"
	"freight/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository. The
// guarded updates run under one mutex, so concurrent callers observe the
// same exactly-one-winner semantics the SQL store provides.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	// Counters for verification
	CreateCallCount          int32
	AssignIfPendingCallCount int32
	UpdateStatusIfCallCount  int32
	StartTripIfCallCount     int32
	CompleteIfCallCount      int32

	// Error injection
	CreateError          error
	GetByIDError         error
	AssignIfPendingError error
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *booking
	if booking.Assignment != nil {
		assignment := *booking.Assignment
		copy.Assignment = &assignment
	}
	return &copy, nil
}

func (m *MockBookingRepository) ListPendingUnnegotiated(ctx context.Context) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Booking, 0)
	for _, b := range m.bookings {
		if b.Status == domain.BookingStatusPending {
			copy := *b
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockBookingRepository) ListByCustomer(ctx context.Context, customerID string, status domain.BookingStatus, limit, offset int) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Booking, 0)
	for _, b := range m.bookings {
		if b.CustomerID != customerID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		copy := *b
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, limit, offset), nil
}

func (m *MockBookingRepository) ListByDriver(ctx context.Context, driverID string, limit, offset int) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Booking, 0)
	for _, b := range m.bookings {
		if b.Assignment == nil || b.Assignment.DriverID != driverID {
			continue
		}
		copy := *b
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, limit, offset), nil
}

func (m *MockBookingRepository) AssignIfPending(ctx context.Context, id, driverID, vehicleID string, fareAmount float64, now time.Time) (bool, error) {
	atomic.AddInt32(&m.AssignIfPendingCallCount, 1)
	if m.AssignIfPendingError != nil {
		return false, m.AssignIfPendingError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok || booking.Status != domain.BookingStatusPending {
		return false, nil
	}
	booking.Assignment = &domain.Assignment{DriverID: driverID, VehicleID: vehicleID}
	booking.Fare = fareAmount
	booking.Status = domain.BookingStatusConfirmed
	booking.UpdatedAt = now
	return true, nil
}

func (m *MockBookingRepository) UpdateStatusIf(ctx context.Context, id string, from, to domain.BookingStatus, now time.Time) (bool, error) {
	atomic.AddInt32(&m.UpdateStatusIfCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok || booking.Status != from {
		return false, nil
	}
	booking.Status = to
	booking.UpdatedAt = now
	return true, nil
}

func (m *MockBookingRepository) StartTripIf(ctx context.Context, id, driverID, photoKey string, startTime time.Time) (bool, error) {
	atomic.AddInt32(&m.StartTripIfCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok || booking.Status != domain.BookingStatusConfirmed {
		return false, nil
	}
	if booking.Assignment == nil || booking.Assignment.DriverID != driverID {
		return false, nil
	}
	// One ongoing trip per driver.
	for _, other := range m.bookings {
		if other.ID != id && other.Status == domain.BookingStatusOngoing &&
			other.Assignment != nil && other.Assignment.DriverID == driverID {
			return false, nil
		}
	}
	booking.Status = domain.BookingStatusOngoing
	booking.ProductPhotoKey = photoKey
	booking.StartTime = startTime
	booking.UpdatedAt = startTime
	return true, nil
}

func (m *MockBookingRepository) CompleteIf(ctx context.Context, id string, endTime time.Time) (bool, error) {
	atomic.AddInt32(&m.CompleteIfCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok || booking.Status != domain.BookingStatusOngoing {
		return false, nil
	}
	booking.Status = domain.BookingStatusCompleted
	booking.EndTime = endTime
	booking.UpdatedAt = endTime
	return true, nil
}

func (m *MockBookingRepository) HasOngoingForDriver(ctx context.Context, driverID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.Status == domain.BookingStatusOngoing && b.Assignment != nil && b.Assignment.DriverID == driverID {
			return true, nil
		}
	}
	return false, nil
}

// GetBooking returns the booking by ID (for test assertions).
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[id]
}

// CountBookings returns the number of bookings.
func (m *MockBookingRepository) CountBookings() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ──────────────────────────────────────────────
// MOCK NEGOTIATION REPOSITORY
// ──────────────────────────────────────────────

type negotiationKey struct {
	bookingID string
	driverID  string
}

// MockNegotiationRepository is a mock implementation of NegotiationRepository.
type MockNegotiationRepository struct {
	mu           sync.RWMutex
	negotiations map[negotiationKey]*domain.FareNegotiation

	// Counters for verification
	CreateCallCount              int32
	UpdateStatusCallCount        int32
	DeclineOtherPendingCallCount int32

	// Error injection
	CreateError error
}

// NewMockNegotiationRepository creates a new mock negotiation repository.
func NewMockNegotiationRepository() *MockNegotiationRepository {
	return &MockNegotiationRepository{
		negotiations: make(map[negotiationKey]*domain.FareNegotiation),
	}
}

// AddNegotiation adds a negotiation to the mock repository.
func (m *MockNegotiationRepository) AddNegotiation(n *domain.FareNegotiation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.negotiations[negotiationKey{n.BookingID, n.DriverID}] = n
}

func (m *MockNegotiationRepository) Create(ctx context.Context, n *domain.FareNegotiation) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := negotiationKey{n.BookingID, n.DriverID}
	if _, exists := m.negotiations[key]; exists {
		return repository.ErrDuplicate
	}
	copy := *n
	m.negotiations[key] = &copy
	return nil
}

func (m *MockNegotiationRepository) Get(ctx context.Context, bookingID, driverID string) (*domain.FareNegotiation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.negotiations[negotiationKey{bookingID, driverID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *n
	return &copy, nil
}

func (m *MockNegotiationRepository) ListByBooking(ctx context.Context, bookingID string) ([]*domain.FareNegotiation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.FareNegotiation, 0)
	for _, n := range m.negotiations {
		if n.BookingID == bookingID {
			copy := *n
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].NegotiatedAt.After(result[j].NegotiatedAt)
	})
	return result, nil
}

func (m *MockNegotiationRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.FareNegotiation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.FareNegotiation, 0)
	for _, n := range m.negotiations {
		if n.DriverID == driverID {
			copy := *n
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].NegotiatedAt.After(result[j].NegotiatedAt)
	})
	return result, nil
}

func (m *MockNegotiationRepository) UpdateStatus(ctx context.Context, bookingID, driverID string, status domain.NegotiationStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.negotiations[negotiationKey{bookingID, driverID}]
	if !ok {
		return repository.ErrNotFound
	}
	n.Status = status
	return nil
}

func (m *MockNegotiationRepository) DeclineOtherPending(ctx context.Context, bookingID, keepDriverID string) (int64, error) {
	atomic.AddInt32(&m.DeclineOtherPendingCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for _, n := range m.negotiations {
		if n.BookingID == bookingID && n.DriverID != keepDriverID && n.Status == domain.NegotiationStatusPending {
			n.Status = domain.NegotiationStatusDeclined
			affected++
		}
	}
	return affected, nil
}

// GetNegotiation returns the negotiation for assertions.
func (m *MockNegotiationRepository) GetNegotiation(bookingID, driverID string) *domain.FareNegotiation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.negotiations[negotiationKey{bookingID, driverID}]
}

// ──────────────────────────────────────────────
// MOCK INVOICE REPOSITORY
// ──────────────────────────────────────────────

// MockInvoiceRepository is a mock implementation of InvoiceRepository. The
// booking_id uniqueness of the real store is enforced here too.
type MockInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]*domain.Invoice // keyed by booking ID

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockInvoiceRepository creates a new mock invoice repository.
func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{
		invoices: make(map[string]*domain.Invoice),
	}
}

// AddInvoice adds an invoice to the mock repository.
func (m *MockInvoiceRepository) AddInvoice(inv *domain.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[inv.BookingID] = inv
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.invoices[invoice.BookingID]; exists {
		return repository.ErrDuplicate
	}
	copy := *invoice
	m.invoices[invoice.BookingID] = &copy
	return nil
}

func (m *MockInvoiceRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.invoices[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *inv
	return &copy, nil
}

func (m *MockInvoiceRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Invoice, 0)
	for _, inv := range m.invoices {
		copy := *inv
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, limit, offset), nil
}

// CountInvoices returns the number of invoices.
func (m *MockInvoiceRepository) CountInvoices() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.invoices)
}

// ──────────────────────────────────────────────
// MOCK PARTY REPOSITORIES
// ──────────────────────────────────────────────

// MockCustomerRepository is a mock implementation of CustomerRepository.
type MockCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
}

// NewMockCustomerRepository creates a new mock customer repository.
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[string]*domain.Customer),
	}
}

// AddCustomer adds a customer to the mock repository.
func (m *MockCustomerRepository) AddCustomer(customer *domain.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[customer.ID] = customer
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[customer.ID] = customer
	return nil
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	customer, ok := m.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *customer
	return &copy, nil
}

func (m *MockCustomerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.customers {
		if c.Phone == phone {
			copy := *c
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockCustomerRepository) GetAll(ctx context.Context) ([]*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		copy := *c
		result = append(result, &copy)
	}
	return result, nil
}

// MockOwnerRepository is a mock implementation of OwnerRepository.
type MockOwnerRepository struct {
	mu     sync.RWMutex
	owners map[string]*domain.Owner
}

// NewMockOwnerRepository creates a new mock owner repository.
func NewMockOwnerRepository() *MockOwnerRepository {
	return &MockOwnerRepository{
		owners: make(map[string]*domain.Owner),
	}
}

// AddOwner adds an owner to the mock repository.
func (m *MockOwnerRepository) AddOwner(owner *domain.Owner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[owner.ID] = owner
}

func (m *MockOwnerRepository) Create(ctx context.Context, owner *domain.Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[owner.ID] = owner
	return nil
}

func (m *MockOwnerRepository) GetByID(ctx context.Context, id string) (*domain.Owner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	owner, ok := m.owners[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *owner
	return &copy, nil
}

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	UpdateStatusCallCount int32

	// Error injection
	UpdateStatusError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *vehicle
	return &copy, nil
}

func (m *MockVehicleRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Vehicle, 0)
	for _, v := range m.vehicles {
		if v.OwnerID == ownerID {
			copy := *v
			result = append(result, &copy)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStore.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations []redis.DriverLocation

	// Counters
	UpdateLocationCallCount int32

	// Error injection
	UpdateLocationError    error
	FindNearbyDriversError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make([]redis.DriverLocation, 0),
	}
}

// AddDriverLocation adds a driver location to the mock store.
func (m *MockLocationStore) AddDriverLocation(loc redis.DriverLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = append(m.locations, loc)
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Update existing or add new.
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations[i].Lat = lat
			m.locations[i].Lng = lng
			return nil
		}
	}
	m.locations = append(m.locations, redis.DriverLocation{
		DriverID: driverID,
		Lat:      lat,
		Lng:      lng,
	})
	return nil
}

func (m *MockLocationStore) FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]redis.DriverLocation, error) {
	if m.FindNearbyDriversError != nil {
		return nil, m.FindNearbyDriversError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Return all locations (mock doesn't do real geo filtering).
	result := make([]redis.DriverLocation, len(m.locations))
	copy(result, m.locations)
	return result, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations = append(m.locations[:i], m.locations[i+1:]...)
			return nil
		}
	}
	return nil
}

// HasLocation checks if a driver location exists.
func (m *MockLocationStore) HasLocation(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loc := range m.locations {
		if loc.DriverID == driverID {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK INVOICE CACHE
// ──────────────────────────────────────────────

// MockInvoiceCache is a mock implementation of the invoice cache.
type MockInvoiceCache struct {
	mu       sync.RWMutex
	invoices map[string]*domain.Invoice

	// Counters
	SetCallCount int32
}

// NewMockInvoiceCache creates a new mock invoice cache.
func NewMockInvoiceCache() *MockInvoiceCache {
	return &MockInvoiceCache{
		invoices: make(map[string]*domain.Invoice),
	}
}

func (m *MockInvoiceCache) GetInvoice(ctx context.Context, bookingID string) (*domain.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.invoices[bookingID]
	if !ok {
		return nil, nil
	}
	copy := *inv
	return &copy, nil
}

func (m *MockInvoiceCache) SetInvoice(ctx context.Context, inv *domain.Invoice) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *inv
	m.invoices[inv.BookingID] = &copy
	return nil
}

func (m *MockInvoiceCache) InvalidateInvoice(ctx context.Context, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.invoices, bookingID)
	return nil
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
