package repository

import (
	"context"

	"freight/internal/domain"
)

// CustomerRepository defines the persistence operations for customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	GetAll(ctx context.Context) ([]*domain.Customer, error)
}

// OwnerRepository defines the persistence operations for fleet owners.
type OwnerRepository interface {
	Create(ctx context.Context, owner *domain.Owner) error
	GetByID(ctx context.Context, id string) (*domain.Owner, error)
}

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	Create(ctx context.Context, driver *domain.Driver) error
	GetByID(ctx context.Context, id string) (*domain.Driver, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Driver, error)
	GetAll(ctx context.Context) ([]*domain.Driver, error)
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error
}

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Vehicle, error)
}
