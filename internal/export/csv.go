package export

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/fuelbook/service/internal/fuellog"
	"github.com/fuelbook/service/internal/vehicle"
)

var csvHeader = []string{
	"Date",
	"Vehicle",
	"Registration",
	"Odometer (km)",
	"Fuel Added (L)",
	"Price Per Liter (R)",
	"Total Cost (R)",
	"Petrol Station",
	"Efficiency (km/L)",
	"Distance Traveled (km)",
	"Work Travel (Y/N)",
	"Work Distance (km)",
	"Receipt Attached",
	"Notes",
}

// RenderCSV produces the logbook as CSV, one row per fuel log in the given
// order. encoding/csv quotes every field that needs it, so free-text notes
// and station names cannot break the row structure.
func RenderCSV(vehicles []*vehicle.Vehicle, records []*fuellog.Record) (string, error) {
	byID := make(map[string]*vehicle.Vehicle, len(vehicles))
	for _, v := range vehicles {
		byID[v.ID] = v
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		name, registration := "Unknown", ""
		if v, ok := byID[rec.VehicleID]; ok {
			name = v.Make + " " + v.Model
			registration = v.RegistrationNumber
		}

		row := []string{
			rec.Date.Format(dateLayout),
			name,
			registration,
			fmt.Sprintf("%.2f", rec.OdometerReading),
			fmt.Sprintf("%.2f", rec.Liters),
			fmt.Sprintf("%.2f", rec.PricePerLiter),
			fmt.Sprintf("%.2f", rec.TotalCost),
			strOrEmpty(rec.PetrolStation),
			floatOrEmpty(rec.KmPerLiter),
			floatOrEmpty(rec.DistanceTraveled),
			yesNo(rec.IsWorkTravel),
			fmt.Sprintf("%.2f", rec.WorkDistance),
			yesNo(rec.ReceiptURL != nil),
			strOrEmpty(rec.Notes),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return b.String(), nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *f)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
