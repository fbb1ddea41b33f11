package catalog_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/cache"
	"github.com/noah-isme/toko-pricing/internal/catalog"
)

type fakeFinder struct {
	variants map[uuid.UUID]catalog.Variant
	calls    int
}

func (f *fakeFinder) FirstVariant(_ context.Context, productID uuid.UUID) (catalog.Variant, error) {
	f.calls++
	v, ok := f.variants[productID]
	if !ok {
		return catalog.Variant{}, catalog.ErrProductNotFound
	}
	return v, nil
}

func TestServiceRequiresFinder(t *testing.T) {
	_, err := catalog.NewService(catalog.ServiceConfig{})
	require.Error(t, err)
}

func TestServiceCachesVariants(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	productID := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	sale := int64(8000)
	finder := &fakeFinder{variants: map[uuid.UUID]catalog.Variant{
		productID: {ID: "v1", ProductID: productID.String(), PriceExclTax: 10000, SalePriceExclTax: &sale, IsOnSale: true, EcoTaxExclTax: 500},
	}}
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Finder: finder,
		Cache:  cache.NewJSON(client, "catalog:", time.Minute),
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	first, err := svc.FirstVariant(ctx, productID)
	require.NoError(t, err)
	second, err := svc.FirstVariant(ctx, productID)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, finder.calls)
	require.NotNil(t, second.SalePriceExclTax)
	require.Equal(t, int64(8000), *second.SalePriceExclTax)
}

func TestServicePropagatesNotFound(t *testing.T) {
	svc, err := catalog.NewService(catalog.ServiceConfig{Finder: &fakeFinder{}})
	require.NoError(t, err)
	_, err = svc.FirstVariant(context.Background(), uuid.New())
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
}
