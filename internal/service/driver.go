package service

import (
	"context"

	"freight/internal/domain"
	"freight/internal/geo"
	"freight/internal/redis"
	"freight/internal/repository"
)

// DriverService handles driver presence: availability status and location
// updates feeding the proximity fan-out.
type DriverService struct {
	locationStore redis.LocationStoreInterface
	driverRepo    repository.DriverRepository
}

// NewDriverService creates a new DriverService.
func NewDriverService(locationStore redis.LocationStoreInterface, driverRepo repository.DriverRepository) *DriverService {
	return &DriverService{
		locationStore: locationStore,
		driverRepo:    driverRepo,
	}
}

// UpdateLocation records the driver's current position in the geo index.
func (s *DriverService) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if !geo.ValidCoordinate(geo.Coordinate{Lat: lat, Lng: lng}) {
		return ErrInvalidLocation
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return err
	}

	return s.locationStore.UpdateLocation(ctx, driverID, lat, lng)
}

// GoOnline marks the driver available for new bookings.
func (s *DriverService) GoOnline(ctx context.Context, driverID string, lat, lng float64) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if !geo.ValidCoordinate(geo.Coordinate{Lat: lat, Lng: lng}) {
		return ErrInvalidLocation
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusOnline); err != nil {
		return err
	}

	return s.locationStore.UpdateLocation(ctx, driverID, lat, lng)
}

// GoOffline removes the driver from the available pool and the geo index.
func (s *DriverService) GoOffline(ctx context.Context, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusOffline); err != nil {
		return err
	}

	return s.locationStore.RemoveLocation(ctx, driverID)
}
