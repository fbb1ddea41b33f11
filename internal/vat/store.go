package vat

import (
	"context"
	"fmt"
)

// Store persists VAT rates keyed by country code.
// Get returns a *NotFoundError when the country has no rate.
type Store interface {
	Get(ctx context.Context, countryCode string) (Rate, error)
	List(ctx context.Context) ([]Rate, error)
	Upsert(ctx context.Context, rate Rate) error
	Delete(ctx context.Context, countryCode string) error
}

// Resolver is the read side used by the price calculator.
type Resolver struct {
	Store Store
}

// Resolve returns the rate for countryCode. The code is used as-is; callers
// validate its format. A missing rate yields *NotFoundError.
func (r Resolver) Resolve(ctx context.Context, countryCode string) (Rate, error) {
	if r.Store == nil {
		return Rate{}, fmt.Errorf("vat: store not configured")
	}
	rate, err := r.Store.Get(ctx, countryCode)
	if err != nil {
		if _, ok := AsNotFound(err); ok {
			return Rate{}, err
		}
		return Rate{}, fmt.Errorf("resolve vat rate %s: %w", countryCode, err)
	}
	return rate, nil
}
