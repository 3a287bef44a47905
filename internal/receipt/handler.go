package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/fuelbook/service/internal/fuellog"
	"github.com/fuelbook/service/internal/middleware"
	"github.com/fuelbook/service/internal/response"
	"github.com/fuelbook/service/internal/storage"
)

// maxUploadBytes caps the multipart form held in memory.
const maxUploadBytes = 10 << 20

// storeTimeout bounds each object store round trip.
const storeTimeout = 15 * time.Second

// Records is the fuel log surface the receipt handlers need.
// *fuellog.Service implements it.
type Records interface {
	GetByID(ctx context.Context, ownerID, id string) (*fuellog.Record, error)
	AttachReceipt(ctx context.Context, ownerID, id, url string) error
	ClearReceipt(ctx context.Context, ownerID, id string) error
}

// Handler holds HTTP handlers for receipt upload and deletion.
type Handler struct {
	store   storage.Storage
	records Records
}

// NewHandler creates a new receipt Handler.
func NewHandler(store storage.Storage, records Records) *Handler {
	return &Handler{store: store, records: records}
}

type uploadData struct {
	URL string `json:"url" example:"http://localhost:9000/receipts/receipts/owner/car/log-1756400000000.webp"`
	Key string `json:"key" example:"receipts/owner/car/log-1756400000000.webp"`
}

type deleteRequest struct {
	LogID      string `json:"logId"      example:"0d5cbe74-7f17-4fd6-bd71-7a2bd4a4ccfd"`
	ReceiptURL string `json:"receiptUrl" example:"http://localhost:9000/receipts/receipts/owner/car/log-1756400000000.webp"`
}

// Upload godoc
//
//	@Summary		Upload receipt
//	@Description	Accepts a receipt image, transcodes it to WebP, stores it, and (when logId is given) attaches it to the fuel log.
//	@Tags			receipts
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file		formData	file	true	"Receipt image (JPEG, PNG, GIF, WebP)"
//	@Param			vehicleId	formData	string	true	"Vehicle ID"
//	@Param			logId		formData	string	false	"Fuel log ID to attach the receipt to"
//	@Success		200			{object}	response.Envelope{data=uploadData}
//	@Failure		400			{object}	response.Envelope
//	@Failure		401			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/receipts [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	vehicleID := r.FormValue("vehicleId")
	logID := r.FormValue("logId")
	file, _, err := r.FormFile("file")
	if err != nil || vehicleID == "" {
		response.BadRequest(w, "missing required fields")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "unreadable file")
		return
	}

	// No side effects before this succeeds.
	encoded, err := Ingest(raw)
	if err != nil {
		log.Error().Err(err).Msg("receipt transcode failed")
		response.InternalError(w)
		return
	}

	key := ObjectKey(ownerID, vehicleID, logID, time.Now())

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	url, err := h.store.Upload(ctx, key, bytes.NewReader(encoded), int64(len(encoded)), ContentType)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("receipt upload failed")
		response.InternalError(w)
		return
	}

	if logID != "" {
		// Known gap: the object is already durable. If this update fails the
		// upload is orphaned; there is no compensation step.
		err := h.records.AttachReceipt(r.Context(), ownerID, logID, url)
		if errors.Is(err, fuellog.ErrNotFound) {
			response.NotFound(w, "fuel log not found")
			return
		}
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("attach receipt failed, object orphaned")
			response.InternalError(w)
			return
		}
	}

	response.OK(w, uploadData{URL: url, Key: key})
}

// Delete godoc
//
//	@Summary		Delete receipt
//	@Description	Removes the stored receipt object and clears the fuel log's receipt reference.
//	@Tags			receipts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		deleteRequest	true	"Fuel log and receipt URL"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/receipts/delete [post]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.LogID == "" || req.ReceiptURL == "" {
		response.BadRequest(w, "missing required fields")
		return
	}

	if _, err := h.records.GetByID(r.Context(), ownerID, req.LogID); err != nil {
		if errors.Is(err, fuellog.ErrNotFound) {
			response.NotFound(w, "fuel log not found")
			return
		}
		log.Error().Err(err).Msg("load fuel log failed")
		response.InternalError(w)
		return
	}

	key, err := h.store.KeyFromURL(req.ReceiptURL)
	if err != nil {
		response.BadRequest(w, "invalid receipt url")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := h.store.Delete(ctx, key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("receipt object delete failed")
		response.InternalError(w)
		return
	}

	if err := h.records.ClearReceipt(r.Context(), ownerID, req.LogID); err != nil {
		log.Error().Err(err).Msg("clear receipt reference failed")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]bool{"deleted": true})
}

type signedURLData struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn" example:"3600"`
}

// SignedURL godoc
//
//	@Summary		Signed receipt URL
//	@Description	Returns a time-limited URL for the fuel log's receipt, for retrieval without exposing store credentials.
//	@Tags			receipts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Fuel log ID"
//	@Success		200	{object}	response.Envelope{data=signedURLData}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/receipts/{id}/url [get]
func (h *Handler) SignedURL(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	rec, err := h.records.GetByID(r.Context(), ownerID, chi.URLParam(r, "id"))
	if errors.Is(err, fuellog.ErrNotFound) {
		response.NotFound(w, "fuel log not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("load fuel log failed")
		response.InternalError(w)
		return
	}
	if rec.ReceiptURL == nil {
		response.NotFound(w, "fuel log has no receipt")
		return
	}

	key, err := h.store.KeyFromURL(*rec.ReceiptURL)
	if err != nil {
		log.Error().Err(err).Str("url", *rec.ReceiptURL).Msg("stored receipt url unparsable")
		response.InternalError(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	url, err := h.store.SignedURL(ctx, key, storage.DefaultSignedURLTTL)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("presign receipt failed")
		response.InternalError(w)
		return
	}

	response.OK(w, signedURLData{URL: url, ExpiresIn: int(storage.DefaultSignedURLTTL.Seconds())})
}
