package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-pricing/internal/cache"
)

// VariantFinder loads the first variant of a product.
type VariantFinder interface {
	FirstVariant(ctx context.Context, productID uuid.UUID) (Variant, error)
}

// Service fronts a VariantFinder with a Redis cache.
type Service struct {
	finder VariantFinder
	cache  *cache.JSON
	logger zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Finder VariantFinder
	Cache  *cache.JSON
	Logger zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Finder == nil {
		return nil, errors.New("catalog: variant finder is required")
	}
	return &Service{finder: cfg.Finder, cache: cfg.Cache, logger: cfg.Logger}, nil
}

// FirstVariant returns the variant used to price a product.
func (s *Service) FirstVariant(ctx context.Context, productID uuid.UUID) (Variant, error) {
	key := variantCacheKey(productID)
	if s.cache != nil {
		var cached Variant
		ok, err := s.cache.Get(ctx, key, &cached)
		if err == nil && ok {
			return cached, nil
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("product_id", productID.String()).Msg("variant cache read failed")
		}
	}
	v, err := s.finder.FirstVariant(ctx, productID)
	if err != nil {
		return Variant{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, v)
	}
	return v, nil
}

func variantCacheKey(productID uuid.UUID) string {
	return "variant:first:" + productID.String()
}
