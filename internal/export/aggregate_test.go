package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelbook/service/internal/fuellog"
)

func fptr(f float64) *float64 { return &f }

func TestAggregate_EmptySetSignalsNoRecords(t *testing.T) {
	stats, err := Aggregate(nil)
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Equal(t, 0.0, stats.AverageKmPerLiter, "no divide-by-zero on empty input")
}

func TestAggregate_MissingEfficiencyExcludedFromAverage(t *testing.T) {
	records := []*fuellog.Record{
		{VehicleID: "car-1", Liters: 10, TotalCost: 200, KmPerLiter: nil},
		{VehicleID: "car-1", Liters: 5, TotalCost: 100, KmPerLiter: fptr(12.5)},
	}

	stats, err := Aggregate(records)
	require.NoError(t, err)

	assert.Equal(t, 15.0, stats.TotalLiters)
	assert.Equal(t, 300.0, stats.TotalCost)
	assert.Equal(t, 12.5, stats.AverageKmPerLiter,
		"record without efficiency must not drag the average toward zero")
	assert.Equal(t, 1, stats.VehicleCount)
	assert.Equal(t, 2, stats.RecordCount)
}

func TestAggregate_Totals(t *testing.T) {
	records := []*fuellog.Record{
		{VehicleID: "car-1", Liters: 40, TotalCost: 800, WorkDistance: 120, KmPerLiter: fptr(10)},
		{VehicleID: "car-2", Liters: 30, TotalCost: 600, WorkDistance: 0, KmPerLiter: fptr(14)},
		{VehicleID: "car-1", Liters: 20, TotalCost: 400, WorkDistance: 80},
	}

	stats, err := Aggregate(records)
	require.NoError(t, err)

	assert.Equal(t, 90.0, stats.TotalLiters)
	assert.Equal(t, 1800.0, stats.TotalCost)
	assert.Equal(t, 200.0, stats.TotalWorkDistance)
	assert.Equal(t, 12.0, stats.AverageKmPerLiter)
	assert.Equal(t, 2, stats.VehicleCount)
}

func TestAggregate_NoQualifyingEfficiencyIsZero(t *testing.T) {
	records := []*fuellog.Record{
		{VehicleID: "car-1", Liters: 10, TotalCost: 100},
	}

	stats, err := Aggregate(records)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stats.AverageKmPerLiter)
}
