package pricing

import (
	"encoding/json"
	"strconv"

	"github.com/noah-isme/toko-pricing/internal/money"
)

// CalculatedPrice is the full breakdown of one price calculation.
// PriceInclTax always equals PriceExclTax plus VatAmount.
type CalculatedPrice struct {
	PriceExclTax money.Money
	VatAmount    money.Money
	PriceInclTax money.Money
	// VatRate is in basis points, e.g. 2000 for 20%.
	VatRate     int
	CountryCode string
}

// VatRatePercent returns the rate as a display percentage, e.g. 20.0 for 2000.
func (p CalculatedPrice) VatRatePercent() float64 {
	return float64(p.VatRate) / 100.0
}

type calculatedPriceJSON struct {
	PriceExclTax   money.Money `json:"priceExclTax"`
	VatAmount      money.Money `json:"vatAmount"`
	PriceInclTax   money.Money `json:"priceInclTax"`
	VatRate        int         `json:"vatRate"`
	VatRatePercent float64     `json:"vatRatePercent"`
	CountryCode    string      `json:"countryCode"`
}

// MarshalJSON renders the API representation.
func (p CalculatedPrice) MarshalJSON() ([]byte, error) {
	return json.Marshal(calculatedPriceJSON{
		PriceExclTax:   p.PriceExclTax,
		VatAmount:      p.VatAmount,
		PriceInclTax:   p.PriceInclTax,
		VatRate:        p.VatRate,
		VatRatePercent: p.VatRatePercent(),
		CountryCode:    p.CountryCode,
	})
}

// ToMap flattens the breakdown for structured logs.
func (p CalculatedPrice) ToMap() map[string]any {
	return map[string]any{
		"priceExclTax":   moneyMap(p.PriceExclTax),
		"vatAmount":      moneyMap(p.VatAmount),
		"priceInclTax":   moneyMap(p.PriceInclTax),
		"vatRate":        p.VatRate,
		"vatRatePercent": p.VatRatePercent(),
		"countryCode":    p.CountryCode,
	}
}

func moneyMap(m money.Money) map[string]any {
	return map[string]any{
		"amount":   strconv.FormatInt(m.Amount(), 10),
		"currency": m.Currency(),
	}
}
