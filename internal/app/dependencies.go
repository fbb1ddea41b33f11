// Package app wires the pricing service together: infrastructure clients,
// stores, handlers and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/noah-isme/toko-pricing/internal/auth"
	"github.com/noah-isme/toko-pricing/internal/cache"
	"github.com/noah-isme/toko-pricing/internal/catalog"
	"github.com/noah-isme/toko-pricing/internal/config"
	"github.com/noah-isme/toko-pricing/internal/customer"
	"github.com/noah-isme/toko-pricing/internal/db"
	"github.com/noah-isme/toko-pricing/internal/health"
	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/pricing"
	"github.com/noah-isme/toko-pricing/internal/ratelimit"
	"github.com/noah-isme/toko-pricing/internal/resilience"
	"github.com/noah-isme/toko-pricing/internal/vat"
)

const serviceName = "toko-pricing"

// Dependencies holds the long-lived infrastructure clients.
type Dependencies struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
}

// Connect opens the PostgreSQL pool and the Redis client and checks both.
func Connect(ctx context.Context, cfg *config.Config, logger zerolog.Logger, instrumentMetrics bool) (*Dependencies, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = serviceName

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if instrumentMetrics {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Dependencies{DB: pool, Redis: redisClient}, nil
}

// Close releases the infrastructure clients.
func (d *Dependencies) Close() error {
	var errs []error
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	if d.DB != nil {
		d.DB.Close()
	}
	return errors.Join(errs...)
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(databaseURL string, logger zerolog.Logger) error {
	m, err := db.Open(databaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Error().Err(err).Msg("close migrator")
		}
	}()
	return m.Up()
}

// NewLimiterStore wires a rate limiter store backed by Redis.
func NewLimiterStore(rdb *redis.Client) (limiter.Store, error) {
	return limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:   serviceName + ":admin-limit",
		MaxRetry: 3,
	})
}

// NewAdminLimiter builds the fixed-window limiter guarding the admin API.
// rate uses the "<limit>-<period>" format, e.g. "60-M".
func NewAdminLimiter(store limiter.Store, rate string) (*limiter.Limiter, error) {
	parsed, err := limiter.NewRateFromFormatted(strings.TrimSpace(rate))
	if err != nil {
		return nil, fmt.Errorf("parse admin rate limit: %w", err)
	}
	return limiter.New(store, parsed), nil
}

// Services are the domain components built on top of Dependencies.
type Services struct {
	Calculator *pricing.Calculator
	Pricing    *pricing.Handler
	VatAdmin   vat.AdminHandler
	VatStore   vat.Store
	Verifier   *auth.Verifier
}

// BuildServices wires stores, caches and handlers.
func BuildServices(cfg *config.Config, deps *Dependencies, logger zerolog.Logger) (*Services, error) {
	validator := vat.NewCountryValidator()
	redisBreaker := resilience.NewBreaker(5, 0.5, 15*time.Second).
		WithTarget("redis_cache").
		WithLogger(logger.With().Str("component", "redis_breaker").Logger())

	vatStore := vat.CachedStore{
		Next:   vat.NewPostgresStore(deps.DB),
		Cache:  cache.NewJSON(deps.Redis, serviceName+":vat:", cfg.VatCacheTTL).WithBreaker(redisBreaker),
		Logger: logger.With().Str("component", "vat_cache").Logger(),
	}
	calculator, err := pricing.NewCalculator(pricing.CalculatorConfig{
		Rates:          vat.Resolver{Store: vatStore},
		DefaultCountry: cfg.DefaultCountry,
		Currency:       cfg.Currency,
	})
	if err != nil {
		return nil, err
	}

	variants, err := catalog.NewService(catalog.ServiceConfig{
		Finder: catalog.NewPostgresStore(deps.DB),
		Cache:  cache.NewJSON(deps.Redis, serviceName+":catalog:", cfg.VariantCacheTTL).WithBreaker(redisBreaker),
		Logger: logger.With().Str("component", "catalog").Logger(),
	})
	if err != nil {
		return nil, err
	}

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	if err != nil {
		return nil, err
	}

	return &Services{
		Calculator: calculator,
		Pricing: &pricing.Handler{
			Calculator: calculator,
			Variants:   variants,
			Addresses:  customer.NewAddressStore(deps.DB),
			Validator:  validator,
			Logger:     logger.With().Str("component", "pricing").Logger(),
		},
		VatAdmin: vat.AdminHandler{
			Store:     vatStore,
			Validator: validator,
			Logger:    logger.With().Str("component", "vat_admin").Logger(),
		},
		VatStore: vatStore,
		Verifier: verifier,
	}, nil
}

// ReadinessProbes checks the database, Redis, and that the default country
// has a VAT rate, without which every fallback fails.
func ReadinessProbes(cfg *config.Config, deps *Dependencies, store vat.Store) []health.Probe {
	return []health.Probe{
		{Name: "db", Timeout: 500 * time.Millisecond, Check: func(ctx context.Context) error {
			return deps.DB.Ping(ctx)
		}},
		{Name: "redis", Timeout: 300 * time.Millisecond, Check: func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		}},
		{Name: "vat_default_rate", Timeout: 500 * time.Millisecond, Check: func(ctx context.Context) error {
			_, err := store.Get(ctx, cfg.DefaultCountry)
			return err
		}},
	}
}

// PriceRateLimit builds the sliding-window limiter for the price endpoint.
func PriceRateLimit(cfg *config.Config, rdb *redis.Client, logger zerolog.Logger) ratelimit.Handler {
	return ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: rdb, Prefix: serviceName + ":rl:"},
		Config: ratelimit.Config{
			Key:    ratelimit.CallerKey("price"),
			Window: cfg.PriceRateLimitWin,
			Max:    cfg.PriceRateLimitMax,
		},
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("price rate limiter unavailable")
		},
	}
}
