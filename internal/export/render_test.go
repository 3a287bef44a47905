package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelbook/service/internal/fuellog"
	"github.com/fuelbook/service/internal/vehicle"
)

func sptr(s string) *string { return &s }

func testVehicles() []*vehicle.Vehicle {
	return []*vehicle.Vehicle{
		{ID: "car-1", Make: "Toyota", Model: "Corolla", Year: 2019, RegistrationNumber: "CA 123-456"},
	}
}

func TestRenderHTML_EscapesMarkupInFreeText(t *testing.T) {
	records := []*fuellog.Record{
		{
			VehicleID:     "car-1",
			Date:          time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			Liters:        40,
			TotalCost:     800,
			PetrolStation: sptr(`<script>alert("x")</script>`),
		},
	}
	stats, err := Aggregate(records)
	require.NoError(t, err)

	html, err := RenderHTML("owner@example.com", testVehicles(), records, stats)
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>alert")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderHTML_PlaceholdersForAbsentFields(t *testing.T) {
	records := []*fuellog.Record{
		{VehicleID: "car-1", Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Liters: 40, TotalCost: 800},
	}
	stats, err := Aggregate(records)
	require.NoError(t, err)

	html, err := RenderHTML("owner@example.com", testVehicles(), records, stats)
	require.NoError(t, err)

	// station and efficiency columns fall back to "-"
	assert.GreaterOrEqual(t, strings.Count(html, "<td>-</td>"), 2)
}

func TestRenderHTML_RecordsDescendingByDate(t *testing.T) {
	records := []*fuellog.Record{
		{VehicleID: "car-1", Date: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), Liters: 10, TotalCost: 100},
		{VehicleID: "car-1", Date: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), Liters: 20, TotalCost: 200},
	}
	stats, err := Aggregate(records)
	require.NoError(t, err)

	html, err := RenderHTML("owner@example.com", testVehicles(), records, stats)
	require.NoError(t, err)

	later := strings.Index(html, "15 Aug 2026")
	earlier := strings.Index(html, "01 Jul 2026")
	require.NotEqual(t, -1, later)
	require.NotEqual(t, -1, earlier)
	assert.Less(t, later, earlier, "newest record renders first")
}

func TestRenderHTML_StatsAndBadges(t *testing.T) {
	records := []*fuellog.Record{
		{
			VehicleID:    "car-1",
			Date:         time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			Liters:       40,
			TotalCost:    800,
			KmPerLiter:   fptr(11.25),
			IsWorkTravel: true,
			WorkDistance: 150,
			ReceiptURL:   sptr("http://store.local/receipts/receipts/o/c/x.webp"),
		},
	}
	stats, err := Aggregate(records)
	require.NoError(t, err)

	html, err := RenderHTML("owner@example.com", testVehicles(), records, stats)
	require.NoError(t, err)

	assert.Contains(t, html, "R 800.00")
	assert.Contains(t, html, "40.00 L")
	assert.Contains(t, html, "11.25 km/L")
	assert.Contains(t, html, "150 km")
	assert.Contains(t, html, ">Work</span>")
	assert.Contains(t, html, ">Receipt</span>")
	assert.Contains(t, html, "owner@example.com")
	assert.Contains(t, html, "Toyota Corolla")
}

func TestRenderCSV_ColumnsAndQuoting(t *testing.T) {
	records := []*fuellog.Record{
		{
			VehicleID:       "car-1",
			Date:            time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			OdometerReading: 45000,
			Liters:          40,
			PricePerLiter:   20,
			TotalCost:       800,
			PetrolStation:   sptr(`Engen "N1" North`),
			KmPerLiter:      fptr(10),
			IsWorkTravel:    true,
			WorkDistance:    150,
			Notes:           sptr("line1\nline2"),
		},
	}

	doc, err := RenderCSV(testVehicles(), records)
	require.NoError(t, err)

	lines := strings.SplitN(doc, "\n", 2)
	assert.Equal(t, "Date,Vehicle,Registration,Odometer (km),Fuel Added (L),Price Per Liter (R),Total Cost (R),Petrol Station,Efficiency (km/L),Distance Traveled (km),Work Travel (Y/N),Work Distance (km),Receipt Attached,Notes", lines[0])

	assert.Contains(t, doc, `"Engen ""N1"" North"`, "embedded quotes are doubled")
	assert.Contains(t, doc, "Toyota Corolla")
	assert.Contains(t, doc, "01 Aug 2026")
	assert.Contains(t, doc, ",Yes,")
	assert.Contains(t, doc, ",No,")
}

func TestRenderCSV_EmptyOptionalFields(t *testing.T) {
	records := []*fuellog.Record{
		{VehicleID: "car-1", Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Liters: 10, TotalCost: 100},
	}

	doc, err := RenderCSV(testVehicles(), records)
	require.NoError(t, err)
	require.True(t, strings.Count(doc, "\n") >= 2)

	row := strings.Split(doc, "\n")[1]
	fields := strings.Split(row, ",")
	require.Len(t, fields, 14)
	assert.Empty(t, fields[8], "missing efficiency stays empty, not zero")
}
