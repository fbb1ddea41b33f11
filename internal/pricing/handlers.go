package pricing

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-pricing/internal/catalog"
	"github.com/noah-isme/toko-pricing/internal/common"
	"github.com/noah-isme/toko-pricing/internal/customer"
	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/vat"
)

// VariantSource loads the variant that represents a product's price.
type VariantSource interface {
	FirstVariant(ctx context.Context, productID uuid.UUID) (catalog.Variant, error)
}

// AddressSource looks up a customer's default shipping address.
type AddressSource interface {
	DefaultShippingAddress(ctx context.Context, userID string) (customer.ShippingAddress, bool, error)
}

// Handler exposes the context-aware product price endpoint.
type Handler struct {
	Calculator *Calculator
	Variants   VariantSource
	Addresses  AddressSource
	Validator  vat.CountryValidator
	Logger     zerolog.Logger
}

// ItemFromVariant maps a catalog variant onto a priceable item.
func ItemFromVariant(v catalog.Variant) Item {
	return Item{
		BasePriceExclTax: v.PriceExclTax,
		SalePriceExclTax: v.SalePriceExclTax,
		IsOnSale:         v.IsOnSale,
		EcoTaxExclTax:    v.EcoTaxExclTax,
	}
}

// ProductPrice handles GET /api/v1/products/{id}/price.
//
// The country comes from the ?country query parameter, else from the
// authenticated customer's default shipping address. An implausible code is
// dropped. When no VAT rate exists for the chosen country the price is
// recomputed for the default country instead of failing the request.
func (h *Handler) ProductPrice(w http.ResponseWriter, r *http.Request) {
	if h.Calculator == nil || h.Variants == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "pricing not configured", nil)
		return
	}
	ctx := r.Context()
	base := obs.RequestLogger(ctx, h.Logger)
	rawID := strings.TrimSpace(chi.URLParam(r, "id"))
	productID, err := uuid.Parse(rawID)
	if err != nil {
		common.WriteError(w, common.BadRequest("id", "product id must be a UUID", err))
		return
	}

	variant, err := h.Variants.FirstVariant(ctx, productID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			common.WriteError(w, common.NotFound("product not found", err))
		case errors.Is(err, catalog.ErrNoVariants):
			common.WriteError(w, common.NotFound("product has no variants", err))
		default:
			base.Error().Err(err).Str("product_id", productID.String()).Msg("load product variant")
			common.WriteError(w, err)
		}
		return
	}

	customerID, _ := common.UserID(ctx)
	logger := base.With().Str("product_id", productID.String()).Str("customer_id", customerID).Logger()

	candidate, addressID := h.candidateCountry(r, customerID, logger)
	var country *string
	if candidate != "" {
		if err := h.Validator.Validate(candidate); err != nil {
			logger.Warn().
				Str("country_code", candidate).
				Str("address_id", addressID).
				Str("error", err.Error()).
				Msg("Invalid country code found on shipping address.")
			obs.IncVatFallback("invalid_country")
		} else {
			country = &candidate
		}
	}

	item := ItemFromVariant(variant)
	price, err := h.Calculator.CalculateBreakdown(ctx, item, country)
	if nf, ok := vat.AsNotFound(err); ok && country != nil && *country != h.Calculator.DefaultCountry() {
		logger.Error().Str("failed_country_code", nf.CountryCode).Msg(nf.Error())
		logger.Warn().Msg("VatRateNotFound: Falling back to default country VAT calculation.")
		obs.IncVatFallback("vat_not_found")
		price, err = h.Calculator.CalculateBreakdown(ctx, item, nil)
	}
	if err != nil {
		logger.Error().Err(err).Msg("calculate price breakdown")
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": price})
}

func (h *Handler) candidateCountry(r *http.Request, customerID string, logger zerolog.Logger) (country, addressID string) {
	if q := strings.TrimSpace(r.URL.Query().Get("country")); q != "" {
		return vat.NormalizeCountryCode(q), ""
	}
	if customerID == "" || h.Addresses == nil {
		return "", ""
	}
	addr, found, err := h.Addresses.DefaultShippingAddress(r.Context(), customerID)
	if err != nil {
		logger.Error().Err(err).Msg("load default shipping address")
		return "", ""
	}
	if !found {
		return "", ""
	}
	return vat.NormalizeCountryCode(addr.Country), addr.ID
}
