package vat

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-pricing/internal/cache"
	"github.com/noah-isme/toko-pricing/internal/obs"
)

// CachedStore serves Get from a Redis JSON cache in front of another Store.
// Misses are never cached so a newly configured rate is visible immediately.
type CachedStore struct {
	Next   Store
	Cache  *cache.JSON
	Logger zerolog.Logger
}

func (s CachedStore) Get(ctx context.Context, countryCode string) (Rate, error) {
	var cached Rate
	ok, err := s.Cache.Get(ctx, countryCode, &cached)
	if err != nil {
		s.Logger.Warn().Err(err).Str("country_code", countryCode).Msg("vat cache read failed")
	}
	if ok {
		obs.IncVatCacheLookup("hit")
		return cached, nil
	}
	obs.IncVatCacheLookup("miss")

	rate, err := s.Next.Get(ctx, countryCode)
	if err != nil {
		return Rate{}, err
	}
	if err := s.Cache.Set(ctx, countryCode, rate); err != nil {
		s.Logger.Warn().Err(err).Str("country_code", countryCode).Msg("vat cache write failed")
	}
	return rate, nil
}

func (s CachedStore) List(ctx context.Context) ([]Rate, error) {
	return s.Next.List(ctx)
}

func (s CachedStore) Upsert(ctx context.Context, rate Rate) error {
	if err := s.Next.Upsert(ctx, rate); err != nil {
		return err
	}
	s.invalidate(ctx, rate.CountryCode)
	return nil
}

func (s CachedStore) Delete(ctx context.Context, countryCode string) error {
	if err := s.Next.Delete(ctx, countryCode); err != nil {
		return err
	}
	s.invalidate(ctx, countryCode)
	return nil
}

func (s CachedStore) invalidate(ctx context.Context, countryCode string) {
	if err := s.Cache.Delete(ctx, countryCode); err != nil {
		s.Logger.Error().Err(err).Str("country_code", countryCode).Msg("vat cache invalidation failed")
	}
}
