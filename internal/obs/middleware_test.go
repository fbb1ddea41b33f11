package obs_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/common"
	"github.com/noah-isme/toko-pricing/internal/obs"
)

func TestHTTPMetricsUseRoutePattern(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("toko", []float64{10, 1}, registry)

	r := chi.NewRouter()
	r.Use(obs.HTTPObs{Metrics: metrics}.Middleware)
	r.Get("/api/v1/products/{id}/price", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products/abc/price", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	total := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/api/v1/products/{id}/price", "204"))
	require.Equal(t, 1.0, total)
	require.Positive(t, testutil.CollectAndCount(metrics.ReqDur))
	require.Equal(t, 0.0, testutil.ToFloat64(metrics.InFlight))

	again := obs.NewHTTPMetrics("toko", nil, registry)
	require.Same(t, metrics.ReqTotal, again.ReqTotal)
}

func TestAccessLogCorrelatesRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(obs.AccessLog{Logger: logger}.Middleware)
	r.Get("/api/v1/products/{id}/price", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/abc/price?country=DE", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	req = req.WithContext(common.WithUserID(req.Context(), "user-1"))
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "req-123", entry["request_id"])
	require.Equal(t, "/api/v1/products/{id}/price", entry["route"])
	require.Equal(t, float64(http.StatusNotFound), entry["status"])
	require.Equal(t, "DE", entry["country"])
	require.Equal(t, "user-1", entry["user_id"])
	require.Equal(t, "http_request", entry["message"])
}

func TestRequestLoggerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var seen string
	middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = middleware.GetReqID(r.Context())
		logger := obs.RequestLogger(r.Context(), zerolog.New(&buf))
		logger.Info().Msg("hello")
	})).ServeHTTP(httptest.NewRecorder(), req)

	require.NotEmpty(t, seen)
	require.Contains(t, buf.String(), `"request_id":"`+seen+`"`)
}
