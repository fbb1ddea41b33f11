package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"

	"github.com/noah-isme/toko-pricing/internal/auth"
	"github.com/noah-isme/toko-pricing/internal/common"
	"github.com/noah-isme/toko-pricing/internal/config"
	"github.com/noah-isme/toko-pricing/internal/health"
	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/pricing"
	"github.com/noah-isme/toko-pricing/internal/ratelimit"
	"github.com/noah-isme/toko-pricing/internal/security"
	"github.com/noah-isme/toko-pricing/internal/vat"
)

// RouterConfig carries everything NewRouter mounts. Nil optional fields
// switch the matching feature off.
type RouterConfig struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *obs.HTTPMetrics
	Tracing bool
	Pprof   http.Handler

	Auth         auth.Middleware
	Pricing      *pricing.Handler
	VatAdmin     vat.AdminHandler
	PriceLimit   ratelimit.Handler
	AdminLimiter *limiter.Limiter
	Health       health.Handler
}

// NewRouter builds the HTTP surface of the service.
func NewRouter(rc RouterConfig) http.Handler {
	cfg := rc.Config
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if rc.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if rc.Metrics != nil {
		r.Use(obs.HTTPObs{Metrics: rc.Metrics}.Middleware)
	}
	r.Use(obs.AccessLog{Logger: rc.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if rc.Metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	if rc.Pprof != nil {
		r.Mount("/debug/pprof", rc.Pprof)
	}
	r.Get("/health/live", rc.Health.Live)
	r.Get("/health/ready", rc.Health.Ready)

	headers := security.Headers{
		Enable:                cfg.SecurityHeaders,
		EnableHSTS:            cfg.SecurityHSTS,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(headers.Middleware)

		v.Group(func(p chi.Router) {
			if cfg.PriceRequireAuth {
				p.Use(rc.Auth.RequireAuth)
			} else {
				p.Use(rc.Auth.Authenticate)
			}
			p.Use(rc.PriceLimit.Middleware)
			p.Get("/products/{id}/price", rc.Pricing.ProductPrice)
		})

		v.Route("/admin/vat-rates", func(admin chi.Router) {
			admin.Use(rc.Auth.RequireAuth)
			admin.Use(auth.RequireRole(cfg.AdminRole))
			admin.Use(security.Headers{Enable: cfg.SecurityHeaders, NoStore: true}.Middleware)
			if rc.AdminLimiter != nil {
				admin.Use(adminRateLimit(rc.AdminLimiter, rc.Logger))
			}
			admin.Use(security.BodyLimit{Max: cfg.AdminBodyLimit}.Middleware)
			admin.Get("/", rc.VatAdmin.List)
			admin.Put("/{country}", rc.VatAdmin.Put)
			admin.Delete("/{country}", rc.VatAdmin.Delete)
		})
	})

	return r
}

// adminRateLimit throttles admin callers per identity. A limiter store
// failure rejects the request: admin writes are not worth serving unthrottled.
func adminRateLimit(l *limiter.Limiter, logger zerolog.Logger) func(http.Handler) http.Handler {
	mw := stdlib.NewMiddleware(l,
		stdlib.WithKeyGetter(ratelimit.CallerKey("admin")),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", nil)
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			reqLogger := obs.RequestLogger(r.Context(), logger)
			reqLogger.Error().Err(err).Msg("admin rate limiter unavailable")
			common.JSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "rate limiter unavailable", nil)
		}),
	)
	return mw.Handler
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
