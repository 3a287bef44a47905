// Package export turns a user's fuel logs into aggregate statistics and
// shareable documents (self-contained HTML, CSV) for tax records, and
// delivers them by download or email.
package export

import (
	"errors"

	"github.com/fuelbook/service/internal/fuellog"
)

// ErrNoRecords is returned when aggregation is attempted over an empty
// record set. An empty logbook is signaled, never rendered.
var ErrNoRecords = errors.New("no fuel logs found")

// Statistics holds the aggregate figures for a set of fuel logs.
type Statistics struct {
	TotalCost         float64 `json:"totalCost"`
	TotalLiters       float64 `json:"totalLiters"`
	TotalWorkDistance float64 `json:"totalWorkDistance"`
	AverageKmPerLiter float64 `json:"averageKmPerLiter"`
	VehicleCount      int     `json:"vehicleCount"`
	RecordCount       int     `json:"recordCount"`
}

// Aggregate computes summary statistics over the record set.
//
// Average efficiency is the mean of km/L over only the records that carry
// the derived value; records without it are excluded from numerator and
// denominator rather than counted as zero. With no qualifying records the
// average is zero.
func Aggregate(records []*fuellog.Record) (Statistics, error) {
	if len(records) == 0 {
		return Statistics{}, ErrNoRecords
	}

	var stats Statistics
	vehicles := make(map[string]struct{})
	var effSum float64
	var effCount int

	for _, rec := range records {
		stats.TotalCost += rec.TotalCost
		stats.TotalLiters += rec.Liters
		stats.TotalWorkDistance += rec.WorkDistance
		vehicles[rec.VehicleID] = struct{}{}
		if rec.KmPerLiter != nil {
			effSum += *rec.KmPerLiter
			effCount++
		}
	}

	if effCount > 0 {
		stats.AverageKmPerLiter = effSum / float64(effCount)
	}
	stats.VehicleCount = len(vehicles)
	stats.RecordCount = len(records)
	return stats, nil
}
