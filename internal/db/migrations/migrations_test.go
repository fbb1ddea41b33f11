package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, name := range entries {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Fatalf("unexpected migration file %s", name)
		}
	}
	require.Equal(t, ups, downs)
}

func TestMigrationsLoadInOrder(t *testing.T) {
	source, err := iofs.New(FS, ".")
	require.NoError(t, err)
	defer source.Close()

	first, err := source.First()
	require.NoError(t, err)
	require.EqualValues(t, 1, first)

	next, err := source.Next(first)
	require.NoError(t, err)
	require.EqualValues(t, 2, next)
}

func TestVatRatesSchema(t *testing.T) {
	body, err := fs.ReadFile(FS, "000001_create_vat_rates.up.sql")
	require.NoError(t, err)
	sql := string(body)
	require.Contains(t, sql, "country_code VARCHAR(2) PRIMARY KEY")
	require.Contains(t, sql, "rate INTEGER NOT NULL CHECK (rate >= 0")
}
