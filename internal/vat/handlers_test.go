package vat_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/vat"
)

func withCountry(req *http.Request, country string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("country", country)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func newAdminHandler(rates ...vat.Rate) (vat.AdminHandler, *vat.MemoryStore) {
	store := vat.NewMemoryStore(rates...)
	return vat.AdminHandler{Store: store, Validator: vat.NewCountryValidator(), Logger: zerolog.Nop()}, store
}

func TestAdminListOrdersByCountry(t *testing.T) {
	handler, _ := newAdminHandler(vat.Rate{CountryCode: "FR", Rate: 2000}, vat.Rate{CountryCode: "BE", Rate: 2100})
	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/vat-rates", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []vat.Rate `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	require.Equal(t, "BE", resp.Data[0].CountryCode)
	require.Equal(t, "FR", resp.Data[1].CountryCode)
}

func TestAdminPutUpsertsUppercasedCountry(t *testing.T) {
	handler, store := newAdminHandler()
	req := withCountry(httptest.NewRequest(http.MethodPut, "/api/v1/admin/vat-rates/de", strings.NewReader(`{"rate":1900}`)), "de")
	rec := httptest.NewRecorder()
	handler.Put(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rate, err := store.Get(context.Background(), "DE")
	require.NoError(t, err)
	require.Equal(t, 1900, rate.Rate)
}

func TestAdminPutValidation(t *testing.T) {
	cases := []struct {
		name    string
		country string
		body    string
	}{
		{"unknown country", "XX", `{"rate":1000}`},
		{"negative rate", "FR", `{"rate":-1}`},
		{"missing rate", "FR", `{}`},
		{"malformed body", "FR", `{"rate":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler, _ := newAdminHandler()
			req := withCountry(httptest.NewRequest(http.MethodPut, "/api/v1/admin/vat-rates/"+tc.country, strings.NewReader(tc.body)), tc.country)
			rec := httptest.NewRecorder()
			handler.Put(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
		})
	}
}

func TestAdminDelete(t *testing.T) {
	handler, _ := newAdminHandler(vat.Rate{CountryCode: "FR", Rate: 2000})

	rec := httptest.NewRecorder()
	handler.Delete(rec, withCountry(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/vat-rates/FR", nil), "FR"))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.Delete(rec, withCountry(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/vat-rates/FR", nil), "FR"))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
