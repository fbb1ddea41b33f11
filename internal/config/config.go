package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	AccessCookieName   string
	CORSAllowedOrigins []string

	DefaultCountry    string
	Currency          string
	PriceRequireAuth  bool
	VatCacheTTL       time.Duration
	VariantCacheTTL   time.Duration
	PriceRateLimitMax int
	PriceRateLimitWin time.Duration
	AdminRole         string
	AdminBodyLimit    int64
	AdminRateLimit    string
	SecurityHeaders   bool
	SecurityHSTS      bool
	MigrateOnStart    bool
	ShutdownTimeout   time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		JWTSecret:          k.String("JWT_SECRET"),
		JWTIssuer:          strings.TrimSpace(k.String("JWT_ISSUER")),
		JWTAudience:        strings.TrimSpace(k.String("JWT_AUDIENCE")),
		AccessCookieName:   strings.TrimSpace(k.String("ACCESS_COOKIE_NAME")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		DefaultCountry:    strings.ToUpper(valueOrDefault(k.String("PRICING_DEFAULT_COUNTRY"), "FR")),
		Currency:          strings.ToUpper(valueOrDefault(k.String("PRICING_CURRENCY"), "EUR")),
		PriceRequireAuth:  parseBool(k.String("PRICING_REQUIRE_AUTH"), true),
		VatCacheTTL:       parseDuration(k.String("VAT_CACHE_TTL"), "10m"),
		VariantCacheTTL:   parseDuration(k.String("VARIANT_CACHE_TTL"), "1m"),
		PriceRateLimitMax: parseInt(k.String("PRICE_RATE_LIMIT_MAX"), 120),
		PriceRateLimitWin: parseDuration(k.String("PRICE_RATE_LIMIT_WINDOW"), "1m"),
		AdminRole:         valueOrDefault(k.String("ADMIN_ROLE"), "admin"),
		AdminBodyLimit:    int64(parseInt(k.String("ADMIN_BODY_LIMIT_BYTES"), 16*1024)),
		AdminRateLimit:    valueOrDefault(k.String("ADMIN_RATE_LIMIT"), "60-M"),
		SecurityHeaders:   parseBool(k.String("SECURITY_HEADERS_ENABLED"), true),
		SecurityHSTS:      parseBool(k.String("SECURITY_HSTS_ENABLED"), false),
		MigrateOnStart:    parseBool(k.String("MIGRATE_ON_START"), false),
		ShutdownTimeout:   parseDuration(k.String("SHUTDOWN_TIMEOUT"), "10s"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate reports every missing or malformed key at once.
func (c *Config) validate() error {
	var errs []error
	required := []struct{ key, value string }{
		{"DATABASE_URL", c.DatabaseURL},
		{"REDIS_URL", c.RedisURL},
		{"JWT_SECRET", c.JWTSecret},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.key))
		}
	}
	if len(c.DefaultCountry) != 2 {
		errs = append(errs, fmt.Errorf("PRICING_DEFAULT_COUNTRY must be a two-letter country code, got %q", c.DefaultCountry))
	}
	if len(c.Currency) != 3 {
		errs = append(errs, fmt.Errorf("PRICING_CURRENCY must be a three-letter currency code, got %q", c.Currency))
	}
	return errors.Join(errs...)
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
