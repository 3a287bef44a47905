// Package fuellog manages fuel purchase records: creation with derived
// efficiency fields, receipt references, lock state, and deletion.
// All queries are scoped by the owning user.
package fuellog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record represents a single fuel purchase.
//
// TotalCost, DistanceTraveled and KmPerLiter are derived once at creation
// time and stored; they are never recomputed from the stored fields.
type Record struct {
	ID               string    `json:"id"`
	VehicleID        string    `json:"vehicleId"`
	OwnerID          string    `json:"ownerId"`
	Date             time.Time `json:"date"`
	OdometerReading  float64   `json:"odometerReading"`
	Liters           float64   `json:"liters"`
	PricePerLiter    float64   `json:"pricePerLiter"`
	TotalCost        float64   `json:"totalCost"`
	PetrolStation    *string   `json:"petrolStation,omitempty"`
	ReceiptURL       *string   `json:"receiptUrl,omitempty"`
	DistanceTraveled *float64  `json:"distanceTraveled,omitempty"`
	KmPerLiter       *float64  `json:"kmPerLiter,omitempty"`
	IsWorkTravel     bool      `json:"isWorkTravel"`
	WorkDistance     float64   `json:"workDistance"`
	IsLocked         bool      `json:"isLocked"`
	Notes            *string   `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when a fuel log does not exist or is not owned by the caller.
var ErrNotFound = errors.New("fuel log not found")

const recordColumns = `id, vehicle_id, owner_id, date, odometer_reading, liters, price_per_liter,
	total_cost, petrol_station, receipt_url, distance_traveled, km_per_liter,
	is_work_travel, work_distance, is_locked, notes, created_at, updated_at`

// Repository handles all fuel log database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanRecord(row pgx.Row) (*Record, error) {
	rec := &Record{}
	err := row.Scan(&rec.ID, &rec.VehicleID, &rec.OwnerID, &rec.Date, &rec.OdometerReading,
		&rec.Liters, &rec.PricePerLiter, &rec.TotalCost, &rec.PetrolStation, &rec.ReceiptURL,
		&rec.DistanceTraveled, &rec.KmPerLiter, &rec.IsWorkTravel, &rec.WorkDistance,
		&rec.IsLocked, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan fuel log: %w", err)
	}
	return rec, nil
}

// Create inserts a new fuel log and returns the created record.
func (r *Repository) Create(ctx context.Context, rec *Record) (*Record, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO fuel_logs (vehicle_id, owner_id, date, odometer_reading, liters,
		     price_per_liter, total_cost, petrol_station, distance_traveled, km_per_liter,
		     is_work_travel, work_distance, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+recordColumns,
		rec.VehicleID, rec.OwnerID, rec.Date, rec.OdometerReading, rec.Liters,
		rec.PricePerLiter, rec.TotalCost, rec.PetrolStation, rec.DistanceTraveled,
		rec.KmPerLiter, rec.IsWorkTravel, rec.WorkDistance, rec.Notes,
	)
	created, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("create fuel log: %w", err)
	}
	return created, nil
}

// GetByID fetches a fuel log by ID, scoped to the owner.
func (r *Repository) GetByID(ctx context.Context, ownerID, id string) (*Record, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM fuel_logs WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	return scanRecord(row)
}

// List returns the owner's fuel logs in descending date order, optionally
// filtered to one vehicle. vehicleID == "" means all vehicles.
func (r *Repository) List(ctx context.Context, ownerID, vehicleID string) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM fuel_logs WHERE owner_id = $1`
	args := []interface{}{ownerID}
	if vehicleID != "" {
		query += ` AND vehicle_id = $2`
		args = append(args, vehicleID)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fuel logs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PreviousByOdometer returns the vehicle's record with the greatest odometer
// reading strictly below the given one, or nil when no such record exists.
// Odometer order, not date order, decides which record is "previous"; a
// backdated entry must still pair with its physical predecessor.
func (r *Repository) PreviousByOdometer(ctx context.Context, ownerID, vehicleID string, odometer float64) (*Record, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM fuel_logs
		 WHERE vehicle_id = $1 AND owner_id = $2 AND odometer_reading < $3
		 ORDER BY odometer_reading DESC
		 LIMIT 1`,
		vehicleID, ownerID, odometer,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

// SetReceiptURL updates the record's receipt reference. Pass nil to clear it.
func (r *Repository) SetReceiptURL(ctx context.Context, ownerID, id string, url *string) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE fuel_logs SET receipt_url = $1, updated_at = NOW()
		 WHERE id = $2 AND owner_id = $3`,
		url, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("set receipt url: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLocked toggles the record's lock flag.
func (r *Repository) SetLocked(ctx context.Context, ownerID, id string, locked bool) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE fuel_logs SET is_locked = $1, updated_at = NOW()
		 WHERE id = $2 AND owner_id = $3`,
		locked, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("set locked: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a fuel log, scoped to the owner.
func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	ct, err := r.db.Exec(ctx,
		`DELETE FROM fuel_logs WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete fuel log: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
