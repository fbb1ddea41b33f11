// Package vat resolves country codes to value-added tax rates expressed in basis points.
package vat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("vat: rate not found")

// ErrInvalidRate is returned when a rate is negative.
var ErrInvalidRate = errors.New("vat: rate must be zero or positive")

// Rate is the VAT rate configured for one country.
type Rate struct {
	CountryCode string `json:"countryCode"`
	// Rate is expressed in basis points: 2000 is 20.00%.
	Rate int `json:"rate"`
}

// NewRate builds a Rate, upper-casing the country code and rejecting negative rates.
func NewRate(countryCode string, bps int) (Rate, error) {
	if bps < 0 {
		return Rate{}, fmt.Errorf("%w: %d", ErrInvalidRate, bps)
	}
	return Rate{CountryCode: NormalizeCountryCode(countryCode), Rate: bps}, nil
}

// RateAsDecimal returns the rate as an exact fraction, e.g. 0.2 for 2000.
func (r Rate) RateAsDecimal() decimal.Decimal {
	return decimal.New(int64(r.Rate), -4)
}

// Percent returns the rate as a display percentage, e.g. 20.0 for 2000.
func (r Rate) Percent() float64 {
	return float64(r.Rate) / 100.0
}

// NormalizeCountryCode trims and upper-cases a country code.
func NormalizeCountryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NotFoundError reports that no rate is configured for a country. It points at
// a gap in the vat_rates table rather than at bad client input.
type NotFoundError struct {
	CountryCode string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("VAT rate for country code %q was not found in the database. Please check your vat_rates table configuration.", e.CountryCode)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AsNotFound extracts a NotFoundError from an error chain.
func AsNotFound(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}
