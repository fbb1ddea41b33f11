// Package cache stores JSON values in Redis for read-mostly lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/toko-pricing/internal/resilience"
)

// JSON stores JSON-encoded payloads in Redis under a common key prefix.
type JSON struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	breaker *resilience.Breaker
}

// NewJSON constructs a JSON cache. A nil client yields a cache that never hits.
func NewJSON(client *redis.Client, prefix string, ttl time.Duration) *JSON {
	return &JSON{client: client, prefix: prefix, ttl: ttl}
}

// WithBreaker routes Redis calls through b. While the breaker is open reads
// report a miss and writes are skipped; deletes return resilience.ErrOpenCircuit
// so callers can log the stale entry.
func (c *JSON) WithBreaker(b *resilience.Breaker) *JSON {
	c.breaker = b
	return c
}

// Get unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *JSON) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	var data []byte
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		data, err = c.client.Get(ctx, c.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if errors.Is(err, resilience.ErrOpenCircuit) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Set serialises v as JSON and stores it with the configured TTL.
func (c *JSON) Set(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	err = c.breaker.Do(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
	})
	if errors.Is(err, resilience.ErrOpenCircuit) {
		return nil
	}
	return err
}

// Delete removes the given keys.
func (c *JSON) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.prefix+k)
	}
	return c.breaker.Do(ctx, func(ctx context.Context) error {
		return c.client.Del(ctx, full...).Err()
	})
}
