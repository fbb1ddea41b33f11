package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/resilience"
)

type payload struct {
	Name string `json:"name"`
	Rate int    `json:"rate"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*JSON, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewJSON(client, "test:", ttl), mr
}

func TestJSONSetGetDelete(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	var out payload
	ok, err := c.Get(ctx, "fr", &out)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "fr", payload{Name: "FR", Rate: 2000}))
	require.True(t, mr.Exists("test:fr"))

	ok, err = c.Get(ctx, "fr", &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2000, out.Rate)

	require.NoError(t, c.Delete(ctx, "fr"))
	ok, err = c.Get(ctx, "fr", &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJSONExpires(t *testing.T) {
	c, mr := newTestCache(t, time.Second)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "de", payload{Name: "DE", Rate: 1900}))
	mr.FastForward(2 * time.Second)

	var out payload
	ok, err := c.Get(ctx, "de", &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJSONNilClientNeverHits(t *testing.T) {
	c := NewJSON(nil, "x:", time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", payload{}))
	ok, err := c.Get(ctx, "k", &payload{})
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.Delete(ctx, "k"))
}

func TestJSONBypassesRedisWhileBreakerOpen(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	breaker := resilience.NewBreaker(3, 0.5, time.Minute).WithTarget("cache_json_test")
	c.WithBreaker(breaker)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "fr", payload{Name: "FR", Rate: 2000}))
	mr.Close()

	var out payload
	for i := 0; i < 2; i++ {
		_, err := c.Get(ctx, "fr", &out)
		require.Error(t, err)
	}
	require.Equal(t, resilience.Open, breaker.State())

	ok, err := c.Get(ctx, "fr", &out)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.Set(ctx, "fr", payload{}))
	require.ErrorIs(t, c.Delete(ctx, "fr"), resilience.ErrOpenCircuit)
}
