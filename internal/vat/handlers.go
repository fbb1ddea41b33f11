package vat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-pricing/internal/common"
	"github.com/noah-isme/toko-pricing/internal/obs"
)

// AdminHandler exposes VAT rate administration endpoints.
type AdminHandler struct {
	Store     Store
	Validator CountryValidator
	Logger    zerolog.Logger
}

func (h AdminHandler) logger(r *http.Request) zerolog.Logger {
	logger := obs.RequestLogger(r.Context(), h.Logger)
	if actor, ok := common.UserID(r.Context()); ok {
		logger = logger.With().Str("actor_id", actor).Logger()
	}
	return logger
}

type upsertPayload struct {
	Rate *int `json:"rate" validate:"required,min=0,max=10000"`
}

// List handles GET /api/v1/admin/vat-rates.
func (h AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "vat store not configured", nil)
		return
	}
	rates, err := h.Store.List(r.Context())
	if err != nil {
		logger := h.logger(r)
		logger.Error().Err(err).Msg("list vat rates")
		common.WriteError(w, err)
		return
	}
	if rates == nil {
		rates = []Rate{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rates})
}

// Put handles PUT /api/v1/admin/vat-rates/{country}.
func (h AdminHandler) Put(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "vat store not configured", nil)
		return
	}
	code := NormalizeCountryCode(chi.URLParam(r, "country"))
	if err := h.Validator.Validate(code); err != nil {
		common.WriteError(w, common.BadRequest("country", "country must be an ISO 3166-1 alpha-2 code", err))
		return
	}
	var payload upsertPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.WriteError(w, common.BadRequest("body", "invalid payload", err))
		return
	}
	if err := h.Validator.Struct(payload); err != nil {
		common.WriteError(w, common.BadRequest("rate", "rate must be between 0 and 10000 basis points", err))
		return
	}
	rate, err := NewRate(code, *payload.Rate)
	if err != nil {
		common.WriteError(w, common.BadRequest("rate", err.Error(), err))
		return
	}
	if err := h.Store.Upsert(r.Context(), rate); err != nil {
		logger := h.logger(r)
		logger.Error().Err(err).Str("country_code", code).Msg("upsert vat rate")
		common.WriteError(w, err)
		return
	}
	logger := h.logger(r)
	logger.Info().Str("country_code", code).Int("rate", rate.Rate).Msg("vat rate saved")
	common.JSON(w, http.StatusOK, map[string]any{"data": rate})
}

// Delete handles DELETE /api/v1/admin/vat-rates/{country}.
func (h AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "vat store not configured", nil)
		return
	}
	code := NormalizeCountryCode(chi.URLParam(r, "country"))
	if err := h.Store.Delete(r.Context(), code); err != nil {
		if errors.Is(err, ErrNotFound) {
			common.WriteError(w, common.NotFound("vat rate not found", err))
			return
		}
		logger := h.logger(r)
		logger.Error().Err(err).Str("country_code", code).Msg("delete vat rate")
		common.WriteError(w, err)
		return
	}
	logger := h.logger(r)
	logger.Info().Str("country_code", code).Msg("vat rate deleted")
	w.WriteHeader(http.StatusNoContent)
}
