// Package vehicle manages registered vehicles and their persistence.
// All queries are scoped by the owning user; no cross-owner access path exists.
package vehicle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Vehicle represents a user's registered vehicle.
type Vehicle struct {
	ID                 string    `json:"id"`
	OwnerID            string    `json:"ownerId"`
	Make               string    `json:"make"`
	Model              string    `json:"model"`
	Year               int       `json:"year"`
	RegistrationNumber string    `json:"registrationNumber"`
	TankCapacity       *float64  `json:"tankCapacity,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when a vehicle does not exist or is not owned by the caller.
var ErrNotFound = errors.New("vehicle not found")

// Repository handles all vehicle database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new vehicle and returns the created record.
func (r *Repository) Create(ctx context.Context, v *Vehicle) (*Vehicle, error) {
	created := &Vehicle{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO vehicles (owner_id, make, model, year, registration_number, tank_capacity)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, owner_id, make, model, year, registration_number, tank_capacity, created_at, updated_at`,
		v.OwnerID, v.Make, v.Model, v.Year, v.RegistrationNumber, v.TankCapacity,
	).Scan(&created.ID, &created.OwnerID, &created.Make, &created.Model, &created.Year,
		&created.RegistrationNumber, &created.TankCapacity, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	return created, nil
}

// GetByID fetches a vehicle by ID, scoped to the owner.
func (r *Repository) GetByID(ctx context.Context, ownerID, id string) (*Vehicle, error) {
	v := &Vehicle{}
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, make, model, year, registration_number, tank_capacity, created_at, updated_at
		 FROM vehicles WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&v.ID, &v.OwnerID, &v.Make, &v.Model, &v.Year,
		&v.RegistrationNumber, &v.TankCapacity, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle by id: %w", err)
	}
	return v, nil
}

// ListByOwner returns all vehicles owned by the user, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]*Vehicle, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, make, model, year, registration_number, tank_capacity, created_at, updated_at
		 FROM vehicles WHERE owner_id = $1
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*Vehicle
	for rows.Next() {
		v := &Vehicle{}
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Make, &v.Model, &v.Year,
			&v.RegistrationNumber, &v.TankCapacity, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Delete removes a vehicle, scoped to the owner. Fuel logs cascade in the schema.
func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	ct, err := r.db.Exec(ctx,
		`DELETE FROM vehicles WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
