package money

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddSameCurrency(t *testing.T) {
	sum, err := OfMinor(10000, "EUR").Add(OfMinor(500, "eur"))
	require.NoError(t, err)
	require.Equal(t, int64(10500), sum.Amount())
	require.Equal(t, "EUR", sum.Currency())
}

func TestAddCurrencyMismatch(t *testing.T) {
	_, err := OfMinor(100, "EUR").Add(OfMinor(100, "USD"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCurrencyMismatch))
}

func TestMustAddPanicsOnMismatch(t *testing.T) {
	require.Panics(t, func() {
		OfMinor(1, "EUR").MustAdd(OfMinor(1, "IDR"))
	})
}

func TestMulBasisPointsRoundsHalfUp(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		bps    int
		want   int64
	}{
		{"exact", 10500, 2000, 2100},
		{"below half", 333, 1000, 33},
		{"half", 335, 1000, 34},
		{"above half", 337, 1000, 34},
		{"reduced rate", 1999, 550, 110},
		{"zero rate", 12345, 0, 0},
		{"zero amount", 0, 2000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := OfMinor(tc.amount, "EUR").MulBasisPoints(tc.bps)
			require.Equal(t, tc.want, got.Amount())
			require.Equal(t, "EUR", got.Currency())
		})
	}
}

func TestMulBasisPointsLargeAmount(t *testing.T) {
	got := OfMinor(9_007_199_254_740_993, "EUR").MulBasisPoints(2000)
	require.Equal(t, int64(1_801_439_850_948_199), got.Amount())
}

func TestMarshalJSONEncodesAmountAsString(t *testing.T) {
	data, err := json.Marshal(OfMinor(9_007_199_254_740_993, "EUR"))
	require.NoError(t, err)
	require.JSONEq(t, `{"amount":"9007199254740993","currency":"EUR"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, int64(9_007_199_254_740_993), decoded.Amount())
}

func TestUnmarshalJSONRejectsNonInteger(t *testing.T) {
	var m Money
	require.Error(t, json.Unmarshal([]byte(`{"amount":"1.5","currency":"EUR"}`), &m))
}
