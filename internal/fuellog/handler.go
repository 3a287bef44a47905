package fuellog

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/fuelbook/service/internal/middleware"
	"github.com/fuelbook/service/internal/response"
)

// Handler holds HTTP handlers for fuel log endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new fuel log Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	VehicleID       string   `json:"vehicleId"       example:"e7eedc79-0707-4fe4-8734-526b7ef13a7b"`
	Date            string   `json:"date"            example:"2026-08-01"`
	OdometerReading float64  `json:"odometerReading" example:"45210.5"`
	Liters          float64  `json:"liters"          example:"42.3"`
	PricePerLiter   float64  `json:"pricePerLiter"   example:"23.10"`
	PetrolStation   *string  `json:"petrolStation,omitempty" example:"Engen N1 North"`
	IsWorkTravel    bool     `json:"isWorkTravel"    example:"true"`
	WorkDistance    float64  `json:"workDistance"    example:"180"`
	Notes           *string  `json:"notes,omitempty"`
}

type lockRequest struct {
	Locked bool `json:"locked" example:"true"`
}

// Create godoc
//
//	@Summary		Add fuel log
//	@Description	Record a fuel purchase. Total cost and efficiency against the previous odometer reading are derived server-side.
//	@Tags			fuel-logs
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		createRequest	true	"Fuel purchase details"
//	@Success		201		{object}	response.Envelope{data=Record}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/fuel-logs [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		response.BadRequest(w, "invalid date")
		return
	}

	rec, err := h.svc.Create(r.Context(), ownerID, CreateParams{
		VehicleID:       req.VehicleID,
		Date:            date,
		OdometerReading: req.OdometerReading,
		Liters:          req.Liters,
		PricePerLiter:   req.PricePerLiter,
		PetrolStation:   req.PetrolStation,
		IsWorkTravel:    req.IsWorkTravel,
		WorkDistance:    req.WorkDistance,
		Notes:           req.Notes,
	})
	switch {
	case errors.Is(err, ErrInvalid):
		response.BadRequest(w, "invalid fuel log data")
	case errors.Is(err, ErrVehicleNotFound):
		response.NotFound(w, "vehicle not found")
	case err != nil:
		log.Error().Err(err).Msg("create fuel log failed")
		response.InternalError(w)
	default:
		response.Created(w, rec)
	}
}

// List godoc
//
//	@Summary		List fuel logs
//	@Description	Returns the authenticated user's fuel logs, newest first. Optionally filtered by vehicle.
//	@Tags			fuel-logs
//	@Produce		json
//	@Security		BearerAuth
//	@Param			vehicleId	query		string	false	"Vehicle ID filter"
//	@Success		200			{object}	response.Envelope{data=[]Record}
//	@Failure		401			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/fuel-logs [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	records, err := h.svc.List(r.Context(), ownerID, r.URL.Query().Get("vehicleId"))
	if err != nil {
		log.Error().Err(err).Msg("list fuel logs failed")
		response.InternalError(w)
		return
	}

	response.OK(w, records)
}

// Get godoc
//
//	@Summary		Get fuel log
//	@Tags			fuel-logs
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Fuel log ID"
//	@Success		200	{object}	response.Envelope{data=Record}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/fuel-logs/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	rec, err := h.svc.GetByID(r.Context(), ownerID, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "fuel log not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get fuel log failed")
		response.InternalError(w)
		return
	}

	response.OK(w, rec)
}

// SetLock godoc
//
//	@Summary		Lock or unlock fuel log
//	@Description	A locked fuel log cannot be deleted until unlocked.
//	@Tags			fuel-logs
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string		true	"Fuel log ID"
//	@Param			request	body		lockRequest	true	"Lock state"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/fuel-logs/{id}/lock [patch]
func (h *Handler) SetLock(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	err := h.svc.SetLocked(r.Context(), ownerID, chi.URLParam(r, "id"), req.Locked)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "fuel log not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("set lock failed")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]bool{"locked": req.Locked})
}

// Delete godoc
//
//	@Summary		Delete fuel log
//	@Description	Deletes a fuel log. The attached receipt object, if any, is removed from storage first. Locked logs are refused.
//	@Tags			fuel-logs
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Fuel log ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		409	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/fuel-logs/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	err := h.svc.Delete(r.Context(), ownerID, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "fuel log not found")
	case errors.Is(err, ErrLocked):
		response.Conflict(w, "fuel log is locked")
	case err != nil:
		log.Error().Err(err).Msg("delete fuel log failed")
		response.InternalError(w)
	default:
		response.OK(w, map[string]bool{"deleted": true})
	}
}

// parseDate accepts either a plain date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
