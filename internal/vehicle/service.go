package vehicle

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is returned when vehicle data fails validation.
var ErrInvalid = errors.New("invalid vehicle data")

// Service contains business logic for vehicle management.
type Service struct {
	repo *Repository
}

// NewService creates a new vehicle Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and registers a new vehicle for the owner.
func (s *Service) Create(ctx context.Context, ownerID, make, model string, year int, registration string, tankCapacity *float64) (*Vehicle, error) {
	if make == "" || model == "" || registration == "" {
		return nil, ErrInvalid
	}
	if year < 1900 || year > time.Now().Year()+1 {
		return nil, ErrInvalid
	}
	if tankCapacity != nil && *tankCapacity <= 0 {
		return nil, ErrInvalid
	}

	v, err := s.repo.Create(ctx, &Vehicle{
		OwnerID:            ownerID,
		Make:               make,
		Model:              model,
		Year:               year,
		RegistrationNumber: registration,
		TankCapacity:       tankCapacity,
	})
	if err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	return v, nil
}

// GetByID returns the owner's vehicle by ID.
func (s *Service) GetByID(ctx context.Context, ownerID, id string) (*Vehicle, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// ListByOwner returns all vehicles owned by the user.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*Vehicle, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Delete removes the owner's vehicle and, through the schema, its fuel logs.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}
