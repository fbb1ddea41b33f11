package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch is returned when two amounts of different currencies are combined.
var ErrCurrencyMismatch = errors.New("money: currency mismatch")

// Money is an immutable amount stored in minor units (e.g. cents) tagged with an ISO 4217 code.
type Money struct {
	amount   int64
	currency string
}

// OfMinor constructs Money from an amount in minor units.
func OfMinor(amount int64, currency string) Money {
	return Money{amount: amount, currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return OfMinor(0, currency)
}

// Amount returns the amount in minor units.
func (m Money) Amount() int64 { return m.amount }

// Currency returns the ISO 4217 currency code.
func (m Money) Currency() string { return m.currency }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount == 0 }

// Add returns the sum of m and other. Both must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// MustAdd adds two amounts and panics on a currency mismatch.
func (m Money) MustAdd(other Money) Money {
	sum, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return sum
}

// MulBasisPoints multiplies m by bps/10000 at full precision and rounds the
// result once to the minor unit, half away from zero.
func (m Money) MulBasisPoints(bps int) Money {
	rate := decimal.New(int64(bps), -4)
	product := decimal.New(m.amount, 0).Mul(rate).Round(0)
	return Money{amount: product.IntPart(), currency: m.currency}
}

// String renders the amount in minor units followed by the currency, e.g. "10500 EUR".
func (m Money) String() string {
	return strconv.FormatInt(m.amount, 10) + " " + m.currency
}

type wireMoney struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// MarshalJSON encodes the amount as a string of minor units so that consumers
// limited to 53-bit doubles keep every digit.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMoney{Amount: strconv.FormatInt(m.amount, 10), Currency: m.currency})
}

// UnmarshalJSON decodes the string-encoded wire representation.
func (m *Money) UnmarshalJSON(data []byte) error {
	var w wireMoney
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(w.Amount), 10, 64)
	if err != nil {
		return fmt.Errorf("money: invalid amount %q: %w", w.Amount, err)
	}
	*m = OfMinor(amount, w.Currency)
	return nil
}
