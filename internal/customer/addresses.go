package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ShippingAddress carries the parts of a customer address relevant to pricing.
type ShippingAddress struct {
	ID      string
	Country string
}

// DBTX is the subset of pgxpool.Pool the store needs.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const defaultShippingAddressSQL = `SELECT a.id, a.country
FROM addresses a
WHERE a.user_id = $1 AND a.type = 'shipping' AND a.is_default
ORDER BY a.updated_at DESC
LIMIT 1`

// AddressStore reads customer addresses from PostgreSQL.
type AddressStore struct {
	db DBTX
}

// NewAddressStore constructs an AddressStore.
func NewAddressStore(db DBTX) *AddressStore {
	return &AddressStore{db: db}
}

// DefaultShippingAddress returns the customer's default shipping address.
// found is false when the customer has none.
func (s *AddressStore) DefaultShippingAddress(ctx context.Context, userID string) (addr ShippingAddress, found bool, err error) {
	uid, err := uuid.Parse(strings.TrimSpace(userID))
	if err != nil {
		return ShippingAddress{}, false, nil
	}
	var (
		id      pgtype.UUID
		country pgtype.Text
	)
	err = s.db.QueryRow(ctx, defaultShippingAddressSQL, pgtype.UUID{Bytes: uid, Valid: true}).Scan(&id, &country)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ShippingAddress{}, false, nil
		}
		return ShippingAddress{}, false, fmt.Errorf("get default shipping address: %w", err)
	}
	addr = ShippingAddress{Country: country.String}
	if id.Valid {
		addr.ID = uuid.UUID(id.Bytes).String()
	}
	return addr, true, nil
}
