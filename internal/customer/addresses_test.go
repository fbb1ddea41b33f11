package customer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	id      uuid.UUID
	country string
	err     error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*pgtype.UUID) = pgtype.UUID{Bytes: r.id, Valid: true}
	*dest[1].(*pgtype.Text) = pgtype.Text{String: r.country, Valid: true}
	return nil
}

type fakeDB struct {
	row  fakeRow
	args []any
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	f.args = args
	return f.row
}

func TestDefaultShippingAddressFound(t *testing.T) {
	addrID := uuid.MustParse("55555555-5555-5555-5555-555555555555")
	db := &fakeDB{row: fakeRow{id: addrID, country: "DE"}}
	store := NewAddressStore(db)

	addr, found, err := store.DefaultShippingAddress(context.Background(), "11111111-1111-1111-1111-111111111111")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "DE", addr.Country)
	require.Equal(t, addrID.String(), addr.ID)
	require.Len(t, db.args, 1)
}

func TestDefaultShippingAddressMissing(t *testing.T) {
	store := NewAddressStore(&fakeDB{row: fakeRow{err: pgx.ErrNoRows}})
	_, found, err := store.DefaultShippingAddress(context.Background(), "11111111-1111-1111-1111-111111111111")
	require.NoError(t, err)
	require.False(t, found)
}

func TestDefaultShippingAddressInvalidUser(t *testing.T) {
	db := &fakeDB{}
	store := NewAddressStore(db)
	_, found, err := store.DefaultShippingAddress(context.Background(), "not-a-uuid")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, db.args)
}

func TestDefaultShippingAddressStorageError(t *testing.T) {
	boom := errors.New("connection reset")
	store := NewAddressStore(&fakeDB{row: fakeRow{err: boom}})
	_, _, err := store.DefaultShippingAddress(context.Background(), "11111111-1111-1111-1111-111111111111")
	require.ErrorIs(t, err, boom)
}
