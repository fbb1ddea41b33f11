// Package pricing computes tax-inclusive price breakdowns for priceable items.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/toko-pricing/internal/money"
	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/vat"
)

const (
	// DefaultCountryCode is used when no shipping country is known.
	DefaultCountryCode = "FR"
	// DefaultCurrency is the single currency the calculator works in.
	DefaultCurrency = "EUR"
)

// RateResolver resolves a country code to its VAT rate. A missing rate must be
// reported as *vat.NotFoundError.
type RateResolver interface {
	Resolve(ctx context.Context, countryCode string) (vat.Rate, error)
}

// Item is the subset of a product variant the calculator needs. Amounts are
// minor units, excluding tax.
type Item struct {
	BasePriceExclTax int64
	SalePriceExclTax *int64
	IsOnSale         bool
	EcoTaxExclTax    int64
}

// EffectiveBasePrice returns the sale price when the item is on sale and a
// non-negative sale price is set, the base price otherwise.
func (it Item) EffectiveBasePrice() int64 {
	if it.IsOnSale && it.SalePriceExclTax != nil && *it.SalePriceExclTax >= 0 {
		return *it.SalePriceExclTax
	}
	return it.BasePriceExclTax
}

// TotalExclTax is the taxable base: effective base price plus eco-tax.
func (it Item) TotalExclTax() int64 {
	return it.EffectiveBasePrice() + it.EcoTaxExclTax
}

// CalculatorConfig groups Calculator dependencies.
type CalculatorConfig struct {
	Rates          RateResolver
	DefaultCountry string
	Currency       string
}

// Calculator produces price breakdowns. It holds no mutable state and is safe
// for concurrent use.
type Calculator struct {
	rates          RateResolver
	defaultCountry string
	currency       string
}

// NewCalculator constructs a Calculator.
func NewCalculator(cfg CalculatorConfig) (*Calculator, error) {
	if cfg.Rates == nil {
		return nil, errors.New("pricing: rate resolver is required")
	}
	country := vat.NormalizeCountryCode(cfg.DefaultCountry)
	if country == "" {
		country = DefaultCountryCode
	}
	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Calculator{rates: cfg.Rates, defaultCountry: country, currency: currency}, nil
}

// DefaultCountry returns the fallback country code.
func (c *Calculator) DefaultCountry() string { return c.defaultCountry }

// Currency returns the calculator's currency.
func (c *Calculator) Currency() string { return c.currency }

// CalculateBreakdown prices item for shippingCountry. A nil or empty country
// falls back to the default country. A missing VAT rate is returned as
// *vat.NotFoundError and no breakdown is produced.
func (c *Calculator) CalculateBreakdown(ctx context.Context, item Item, shippingCountry *string) (CalculatedPrice, error) {
	start := time.Now()
	country := c.resolveCountry(shippingCountry)

	ctx, span := otel.Tracer("pricing").Start(ctx, "pricing.CalculateBreakdown")
	defer span.End()
	span.SetAttributes(attribute.String("pricing.country_code", country))

	price, err := c.calculate(ctx, item, country)
	result := "ok"
	if err != nil {
		result = "error"
		if errors.Is(err, vat.ErrNotFound) {
			result = "vat_not_found"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	obs.ObservePriceCalculation(result, obs.DurationMillis(time.Since(start)))
	return price, err
}

// CalculateFinalPriceOnly returns only the tax-inclusive price. It always goes
// through CalculateBreakdown so both can never disagree.
func (c *Calculator) CalculateFinalPriceOnly(ctx context.Context, item Item, shippingCountry *string) (money.Money, error) {
	price, err := c.CalculateBreakdown(ctx, item, shippingCountry)
	if err != nil {
		return money.Money{}, err
	}
	return price.PriceInclTax, nil
}

func (c *Calculator) calculate(ctx context.Context, item Item, country string) (CalculatedPrice, error) {
	base := money.OfMinor(item.EffectiveBasePrice(), c.currency)
	ecoTax := money.OfMinor(item.EcoTaxExclTax, c.currency)
	totalExclTax, err := base.Add(ecoTax)
	if err != nil {
		return CalculatedPrice{}, fmt.Errorf("total excl. tax: %w", err)
	}

	rate, err := c.rates.Resolve(ctx, country)
	if err != nil {
		if _, ok := vat.AsNotFound(err); ok {
			return CalculatedPrice{}, err
		}
		return CalculatedPrice{}, fmt.Errorf("calculate %s: %w", country, err)
	}

	vatAmount := totalExclTax.MulBasisPoints(rate.Rate)
	totalInclTax, err := totalExclTax.Add(vatAmount)
	if err != nil {
		return CalculatedPrice{}, fmt.Errorf("total incl. tax: %w", err)
	}
	return CalculatedPrice{
		PriceExclTax: totalExclTax,
		VatAmount:    vatAmount,
		PriceInclTax: totalInclTax,
		VatRate:      rate.Rate,
		CountryCode:  country,
	}, nil
}

func (c *Calculator) resolveCountry(shippingCountry *string) string {
	if shippingCountry != nil && *shippingCountry != "" {
		return *shippingCountry
	}
	return c.defaultCountry
}
