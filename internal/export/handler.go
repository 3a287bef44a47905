package export

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fuelbook/service/internal/fuellog"
	"github.com/fuelbook/service/internal/mail"
	"github.com/fuelbook/service/internal/middleware"
	"github.com/fuelbook/service/internal/response"
	"github.com/fuelbook/service/internal/vehicle"
)

// deliveryTimeout bounds the email dispatch round trip.
const deliveryTimeout = 30 * time.Second

// LogSource lists a user's fuel logs. *fuellog.Service implements it.
type LogSource interface {
	List(ctx context.Context, ownerID, vehicleID string) ([]*fuellog.Record, error)
}

// VehicleSource lists a user's vehicles. *vehicle.Service implements it.
type VehicleSource interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*vehicle.Vehicle, error)
}

// Handler holds HTTP handlers for logbook exports.
type Handler struct {
	logs     LogSource
	vehicles VehicleSource
	mailer   mail.Mailer
}

// NewHandler creates a new export Handler.
func NewHandler(logs LogSource, vehicles VehicleSource, mailer mail.Mailer) *Handler {
	return &Handler{logs: logs, vehicles: vehicles, mailer: mailer}
}

type emailData struct {
	Message   string `json:"message"   example:"email sent"`
	LogCount  int    `json:"logCount"  example:"12"`
	CarCount  int    `json:"carCount"  example:"2"`
}

// gather loads the owner's records (optionally filtered by vehicle) and the
// vehicles they reference.
func (h *Handler) gather(ctx context.Context, ownerID, vehicleID string) ([]*fuellog.Record, []*vehicle.Vehicle, error) {
	records, err := h.logs.List(ctx, ownerID, vehicleID)
	if err != nil {
		return nil, nil, fmt.Errorf("list fuel logs: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, ErrNoRecords
	}

	all, err := h.vehicles.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("list vehicles: %w", err)
	}

	referenced := make(map[string]struct{}, len(records))
	for _, rec := range records {
		referenced[rec.VehicleID] = struct{}{}
	}
	vehicles := make([]*vehicle.Vehicle, 0, len(referenced))
	for _, v := range all {
		if _, ok := referenced[v.ID]; ok {
			vehicles = append(vehicles, v)
		}
	}
	return records, vehicles, nil
}

// Email godoc
//
//	@Summary		Email logbook
//	@Description	Aggregates the user's fuel logs and emails the report with a CSV attachment.
//	@Tags			exports
//	@Produce		json
//	@Security		BearerAuth
//	@Param			vehicleId	query		string	false	"Vehicle ID filter"
//	@Success		200			{object}	response.Envelope{data=emailData}
//	@Failure		401			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/exports/email [post]
func (h *Handler) Email(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	ownerEmail, ok := middleware.OwnerEmail(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	records, vehicles, err := h.gather(r.Context(), ownerID, r.URL.Query().Get("vehicleId"))
	if errors.Is(err, ErrNoRecords) {
		response.NotFound(w, "no fuel logs found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("export gather failed")
		response.InternalError(w)
		return
	}

	stats, err := Aggregate(records)
	if err != nil {
		response.NotFound(w, "no fuel logs found")
		return
	}

	html, err := RenderHTML(ownerEmail, vehicles, records, stats)
	if err != nil {
		log.Error().Err(err).Msg("render logbook failed")
		response.InternalError(w)
		return
	}
	csvDoc, err := RenderCSV(vehicles, records)
	if err != nil {
		log.Error().Err(err).Msg("render csv failed")
		response.InternalError(w)
		return
	}

	today := time.Now().Format("2006-01-02")
	ctx, cancel := context.WithTimeout(r.Context(), deliveryTimeout)
	defer cancel()

	err = h.mailer.Send(ctx, &mail.Message{
		To:      ownerEmail,
		Subject: "Fuel Logbook Report - " + today,
		HTML:    html,
		Attachments: []mail.Attachment{
			{Filename: "fuel-logbook-" + today + ".csv", ContentType: "text/csv", Data: []byte(csvDoc)},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("logbook email dispatch failed")
		response.Error(w, http.StatusInternalServerError, "failed to send email")
		return
	}

	response.OK(w, emailData{Message: "email sent", LogCount: len(records), CarCount: len(vehicles)})
}

// Download godoc
//
//	@Summary		Download logbook
//	@Description	Aggregates the user's fuel logs and returns the report as a downloadable HTML document.
//	@Tags			exports
//	@Produce		html
//	@Security		BearerAuth
//	@Param			vehicleId	query	string	false	"Vehicle ID filter"
//	@Success		200			{string}	string	"Self-contained HTML logbook"
//	@Failure		401			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/exports/download [post]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	ownerEmail, _ := middleware.OwnerEmail(r.Context())

	records, vehicles, err := h.gather(r.Context(), ownerID, r.URL.Query().Get("vehicleId"))
	if errors.Is(err, ErrNoRecords) {
		response.NotFound(w, "no fuel logs found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("export gather failed")
		response.InternalError(w)
		return
	}

	stats, err := Aggregate(records)
	if err != nil {
		response.NotFound(w, "no fuel logs found")
		return
	}

	html, err := RenderHTML(ownerEmail, vehicles, records, stats)
	if err != nil {
		log.Error().Err(err).Msg("render logbook failed")
		response.InternalError(w)
		return
	}

	filename := "fuel-logbook-" + time.Now().Format("2006-01-02") + ".html"
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}
