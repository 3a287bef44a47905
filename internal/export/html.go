package export

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/fuelbook/service/internal/fuellog"
	"github.com/fuelbook/service/internal/vehicle"
)

const dateLayout = "02 Jan 2006"

// documentData feeds the logbook template. Row fields are preformatted
// strings so the template stays free of formatting logic; html/template's
// contextual escaping covers every interpolated user value.
type documentData struct {
	GeneratedFor string
	GeneratedOn  string
	Stats        statsView
	Vehicles     []*vehicle.Vehicle
	Rows         []rowView
	RecordCount  int
}

type statsView struct {
	TotalCost         string
	TotalLiters       string
	AverageKmPerLiter string
	TotalWorkDistance string
	VehicleCount      int
}

type rowView struct {
	Date       string
	Vehicle    string
	Liters     string
	Cost       string
	Efficiency string
	Station    string
	WorkTravel bool
	HasReceipt bool
}

// RenderHTML produces the self-contained logbook document: inlined styles,
// no external resources, statistics on top, records in descending date order.
func RenderHTML(ownerEmail string, vehicles []*vehicle.Vehicle, records []*fuellog.Record, stats Statistics) (string, error) {
	byID := make(map[string]*vehicle.Vehicle, len(vehicles))
	for _, v := range vehicles {
		byID[v.ID] = v
	}

	ordered := make([]*fuellog.Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.After(ordered[j].Date) })

	rows := make([]rowView, 0, len(ordered))
	for _, rec := range ordered {
		row := rowView{
			Date:       rec.Date.Format(dateLayout),
			Vehicle:    "Unknown",
			Liters:     fmt.Sprintf("%.2f", rec.Liters),
			Cost:       fmt.Sprintf("R %.2f", rec.TotalCost),
			Efficiency: "-",
			Station:    "-",
			WorkTravel: rec.IsWorkTravel,
			HasReceipt: rec.ReceiptURL != nil,
		}
		if v, ok := byID[rec.VehicleID]; ok {
			row.Vehicle = v.Make + " " + v.Model
		}
		if rec.KmPerLiter != nil {
			row.Efficiency = fmt.Sprintf("%.2f km/L", *rec.KmPerLiter)
		}
		if rec.PetrolStation != nil && *rec.PetrolStation != "" {
			row.Station = *rec.PetrolStation
		}
		rows = append(rows, row)
	}

	data := documentData{
		GeneratedFor: ownerEmail,
		GeneratedOn:  time.Now().Format(dateLayout),
		Stats: statsView{
			TotalCost:         fmt.Sprintf("R %.2f", stats.TotalCost),
			TotalLiters:       fmt.Sprintf("%.2f L", stats.TotalLiters),
			AverageKmPerLiter: fmt.Sprintf("%.2f km/L", stats.AverageKmPerLiter),
			TotalWorkDistance: fmt.Sprintf("%.0f km", stats.TotalWorkDistance),
			VehicleCount:      stats.VehicleCount,
		},
		Vehicles:    vehicles,
		Rows:        rows,
		RecordCount: len(rows),
	}

	var b strings.Builder
	if err := documentTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render logbook: %w", err)
	}
	return b.String(), nil
}

var documentTmpl = template.Must(template.New("logbook").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; color: #333; }
    .container { max-width: 800px; margin: 0 auto; padding: 20px; }
    .header { background-color: #059669; color: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; }
    .header h1 { margin: 0; font-size: 24px; }
    .stats { display: grid; grid-template-columns: repeat(2, 1fr); gap: 15px; margin: 20px 0; }
    .stat-box { background-color: #f3f4f6; padding: 15px; border-radius: 8px; border-left: 4px solid #059669; }
    .stat-label { font-size: 12px; color: #6b7280; text-transform: uppercase; }
    .stat-value { font-size: 20px; font-weight: bold; color: #1f2937; margin-top: 5px; }
    .section-title { color: #059669; font-size: 18px; margin-top: 30px; }
    .logs-table { width: 100%; border-collapse: collapse; margin: 20px 0; }
    .logs-table th { background-color: #059669; color: white; padding: 12px; text-align: left; font-size: 12px; }
    .logs-table td { padding: 12px; border-bottom: 1px solid #e5e7eb; }
    .logs-table tr:nth-child(even) { background-color: #f9fafb; }
    .work-travel { background-color: #dbeafe; }
    .work-badge { color: #0284c7; font-weight: bold; }
    .receipt-badge { display: inline-block; background-color: #e9d5ff; color: #6b21a8; padding: 4px 8px; border-radius: 4px; font-size: 12px; }
    .footer { background-color: #f3f4f6; padding: 15px; border-radius: 8px; margin-top: 20px; font-size: 12px; color: #6b7280; }
    .tax-note { background-color: #fef3c7; border-left: 4px solid #d97706; padding: 15px; margin: 20px 0; border-radius: 4px; }
    .tax-note strong { color: #92400e; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Fuel Logbook Report</h1>
      <p>Generated for {{.GeneratedFor}} on {{.GeneratedOn}}</p>
    </div>

    <div class="tax-note">
      <strong>SARS Tax Purposes:</strong> This report includes your work travel distance for SARS (South African Revenue Service) tax deduction purposes. Please keep this documentation for your records.
    </div>

    <div class="stats">
      <div class="stat-box">
        <div class="stat-label">Total Cost</div>
        <div class="stat-value">{{.Stats.TotalCost}}</div>
      </div>
      <div class="stat-box">
        <div class="stat-label">Total Fuel Purchased</div>
        <div class="stat-value">{{.Stats.TotalLiters}}</div>
      </div>
      <div class="stat-box">
        <div class="stat-label">Average Efficiency</div>
        <div class="stat-value">{{.Stats.AverageKmPerLiter}}</div>
      </div>
      <div class="stat-box">
        <div class="stat-label">Work Travel (SARS)</div>
        <div class="stat-value">{{.Stats.TotalWorkDistance}}</div>
      </div>
    </div>

    <h2 class="section-title">Vehicles ({{.Stats.VehicleCount}})</h2>
    <table class="logs-table">
      <thead>
        <tr>
          <th>Make &amp; Model</th>
          <th>Registration</th>
          <th>Year</th>
        </tr>
      </thead>
      <tbody>
        {{range .Vehicles}}
        <tr>
          <td>{{.Make}} {{.Model}}</td>
          <td>{{.RegistrationNumber}}</td>
          <td>{{.Year}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <h2 class="section-title">Fuel Logs ({{.RecordCount}} entries)</h2>
    <table class="logs-table">
      <thead>
        <tr>
          <th>Date</th>
          <th>Vehicle</th>
          <th>Liters</th>
          <th>Cost</th>
          <th>Efficiency</th>
          <th>Station</th>
          <th>Status</th>
        </tr>
      </thead>
      <tbody>
        {{range .Rows}}
        <tr{{if .WorkTravel}} class="work-travel"{{end}}>
          <td>{{.Date}}</td>
          <td>{{.Vehicle}}</td>
          <td>{{.Liters}}</td>
          <td>{{.Cost}}</td>
          <td>{{.Efficiency}}</td>
          <td>{{.Station}}</td>
          <td>
            {{if .WorkTravel}}<span class="work-badge">Work</span>{{end}}
            {{if .HasReceipt}}<span class="receipt-badge">Receipt</span>{{end}}
          </td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div class="footer">
      <p>This is an automated report from your Fuel Logbook application. Please keep this document for your records.</p>
      <p>For SARS compliance, ensure you maintain receipts for all fuel purchases.</p>
    </div>
  </div>
</body>
</html>
`))
