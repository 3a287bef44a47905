package vehicle

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/fuelbook/service/internal/middleware"
	"github.com/fuelbook/service/internal/response"
)

// Handler holds HTTP handlers for vehicle endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new vehicle Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Make               string   `json:"make"               example:"Toyota"`
	Model              string   `json:"model"              example:"Corolla"`
	Year               int      `json:"year"               example:"2019"`
	RegistrationNumber string   `json:"registrationNumber" example:"CA 123-456"`
	TankCapacity       *float64 `json:"tankCapacity,omitempty" example:"50"`
}

// Create godoc
//
//	@Summary		Register vehicle
//	@Description	Register a new vehicle for the authenticated user.
//	@Tags			vehicles
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		createRequest	true	"Vehicle details"
//	@Success		201		{object}	response.Envelope{data=Vehicle}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/vehicles [post]
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

	v, err := h.svc.Create(r.Context(), ownerID, req.Make, req.Model, req.Year, req.RegistrationNumber, req.TankCapacity)
	if errors.Is(err, ErrInvalid) {
		response.BadRequest(w, "invalid vehicle data")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("create vehicle failed")
		response.InternalError(w)
		return
	}

	response.Created(w, v)
}

// List godoc
//
//	@Summary		List vehicles
//	@Description	Returns all vehicles owned by the authenticated user.
//	@Tags			vehicles
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]Vehicle}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/vehicles [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	vehicles, err := h.svc.ListByOwner(r.Context(), ownerID)
	if err != nil {
		log.Error().Err(err).Msg("list vehicles failed")
		response.InternalError(w)
		return
	}

	response.OK(w, vehicles)
}

// Get godoc
//
//	@Summary		Get vehicle
//	@Description	Returns one vehicle owned by the authenticated user.
//	@Tags			vehicles
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Vehicle ID"
//	@Success		200	{object}	response.Envelope{data=Vehicle}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/vehicles/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	v, err := h.svc.GetByID(r.Context(), ownerID, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "vehicle not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get vehicle failed")
		response.InternalError(w)
		return
	}

	response.OK(w, v)
}

// Delete godoc
//
//	@Summary		Delete vehicle
//	@Description	Removes a vehicle and all of its fuel logs.
//	@Tags			vehicles
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Vehicle ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/vehicles/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	err := h.svc.Delete(r.Context(), ownerID, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "vehicle not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("delete vehicle failed")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]bool{"deleted": true})
}
