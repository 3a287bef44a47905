package fuellog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fuelbook/service/internal/storage"
	"github.com/fuelbook/service/internal/vehicle"
)

// ErrInvalid is returned when fuel log data fails validation.
var ErrInvalid = errors.New("invalid fuel log data")

// ErrLocked is returned when a locked record is targeted for deletion.
var ErrLocked = errors.New("fuel log is locked")

// ErrVehicleNotFound is returned when the target vehicle does not exist or
// is not owned by the caller.
var ErrVehicleNotFound = errors.New("vehicle not found")

// Store is the persistence surface the service needs. *Repository implements it.
type Store interface {
	Create(ctx context.Context, rec *Record) (*Record, error)
	GetByID(ctx context.Context, ownerID, id string) (*Record, error)
	List(ctx context.Context, ownerID, vehicleID string) ([]*Record, error)
	PreviousByOdometer(ctx context.Context, ownerID, vehicleID string, odometer float64) (*Record, error)
	SetReceiptURL(ctx context.Context, ownerID, id string, url *string) error
	SetLocked(ctx context.Context, ownerID, id string, locked bool) error
	Delete(ctx context.Context, ownerID, id string) error
}

// VehicleDirectory resolves vehicle ownership. *vehicle.Service implements it.
type VehicleDirectory interface {
	GetByID(ctx context.Context, ownerID, id string) (*vehicle.Vehicle, error)
}

// CreateParams holds the user-supplied fields of a new fuel log.
type CreateParams struct {
	VehicleID       string
	Date            time.Time
	OdometerReading float64
	Liters          float64
	PricePerLiter   float64
	PetrolStation   *string
	IsWorkTravel    bool
	WorkDistance    float64
	Notes           *string
}

// Service contains business logic for fuel log management.
type Service struct {
	repo     Store
	vehicles VehicleDirectory
	store    storage.Storage
}

// NewService creates a new fuel log Service.
func NewService(repo Store, vehicles VehicleDirectory, store storage.Storage) *Service {
	return &Service{repo: repo, vehicles: vehicles, store: store}
}

// Create validates the input, derives total cost and efficiency, and persists
// the record.
//
// Total cost is liters × price, fixed at creation. Distance and km/L are
// derived from the previous record for the vehicle, where "previous" means
// the record with the next-lower odometer reading; both stay nil when no
// prior record exists.
func (s *Service) Create(ctx context.Context, ownerID string, p CreateParams) (*Record, error) {
	if p.VehicleID == "" || p.Date.IsZero() {
		return nil, ErrInvalid
	}
	if p.Liters <= 0 || p.PricePerLiter < 0 || p.OdometerReading < 0 || p.WorkDistance < 0 {
		return nil, ErrInvalid
	}

	if _, err := s.vehicles.GetByID(ctx, ownerID, p.VehicleID); err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("resolve vehicle: %w", err)
	}

	rec := &Record{
		VehicleID:       p.VehicleID,
		OwnerID:         ownerID,
		Date:            p.Date,
		OdometerReading: p.OdometerReading,
		Liters:          p.Liters,
		PricePerLiter:   p.PricePerLiter,
		TotalCost:       p.Liters * p.PricePerLiter,
		PetrolStation:   p.PetrolStation,
		IsWorkTravel:    p.IsWorkTravel,
		Notes:           p.Notes,
	}
	if p.IsWorkTravel {
		rec.WorkDistance = p.WorkDistance
	}

	prev, err := s.repo.PreviousByOdometer(ctx, ownerID, p.VehicleID, p.OdometerReading)
	if err != nil {
		return nil, fmt.Errorf("find previous record: %w", err)
	}
	if prev != nil {
		distance := p.OdometerReading - prev.OdometerReading
		kmPerLiter := distance / p.Liters
		rec.DistanceTraveled = &distance
		rec.KmPerLiter = &kmPerLiter
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("create fuel log: %w", err)
	}
	return created, nil
}

// GetByID returns the owner's fuel log by ID.
func (s *Service) GetByID(ctx context.Context, ownerID, id string) (*Record, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// List returns the owner's fuel logs, newest date first, optionally filtered
// to one vehicle.
func (s *Service) List(ctx context.Context, ownerID, vehicleID string) ([]*Record, error) {
	return s.repo.List(ctx, ownerID, vehicleID)
}

// AttachReceipt sets the record's receipt reference to the given stored URL.
// An existing reference is overwritten without deleting the old object; stale
// objects are left for manual cleanup.
func (s *Service) AttachReceipt(ctx context.Context, ownerID, id, url string) error {
	return s.repo.SetReceiptURL(ctx, ownerID, id, &url)
}

// ClearReceipt removes the record's receipt reference. The stored object is
// the caller's responsibility; see the receipt handlers.
func (s *Service) ClearReceipt(ctx context.Context, ownerID, id string) error {
	return s.repo.SetReceiptURL(ctx, ownerID, id, nil)
}

// SetLocked toggles the record's lock flag.
func (s *Service) SetLocked(ctx context.Context, ownerID, id string, locked bool) error {
	return s.repo.SetLocked(ctx, ownerID, id, locked)
}

// Delete removes a fuel log. Locked records are refused. When a receipt is
// attached, its stored object is deleted first; if that fails the record is
// left untouched so the reference never dangles.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	rec, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if rec.IsLocked {
		return ErrLocked
	}

	if rec.ReceiptURL != nil {
		key, err := s.store.KeyFromURL(*rec.ReceiptURL)
		if err != nil {
			return fmt.Errorf("parse receipt url: %w", err)
		}
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete receipt object: %w", err)
		}
	}

	return s.repo.Delete(ctx, ownerID, id)
}
