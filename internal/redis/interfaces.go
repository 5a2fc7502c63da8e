package redis

import (
	"context"

	"freight/internal/domain"
)

// LocationStoreInterface defines the interface for driver location operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error
	FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]DriverLocation, error)
	RemoveLocation(ctx context.Context, driverID string) error
}

// InvoiceCacheInterface defines the interface for invoice caching.
type InvoiceCacheInterface interface {
	GetInvoice(ctx context.Context, bookingID string) (*domain.Invoice, error)
	SetInvoice(ctx context.Context, inv *domain.Invoice) error
	InvalidateInvoice(ctx context.Context, bookingID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ InvoiceCacheInterface  = (*CacheStore)(nil)
)
