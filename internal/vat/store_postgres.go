package vat

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool used by the stores in this repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	getRateSQL    = `SELECT country_code, rate FROM vat_rates WHERE country_code = $1`
	listRatesSQL  = `SELECT country_code, rate FROM vat_rates ORDER BY country_code ASC`
	upsertRateSQL = `INSERT INTO vat_rates (country_code, rate) VALUES ($1, $2)
ON CONFLICT (country_code) DO UPDATE SET rate = EXCLUDED.rate, updated_at = now()`
	deleteRateSQL = `DELETE FROM vat_rates WHERE country_code = $1`
)

// PostgresStore reads and writes the vat_rates table.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, countryCode string) (Rate, error) {
	var (
		code string
		bps  int32
	)
	err := s.db.QueryRow(ctx, getRateSQL, countryCode).Scan(&code, &bps)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rate{}, &NotFoundError{CountryCode: countryCode}
		}
		return Rate{}, fmt.Errorf("get vat rate: %w", err)
	}
	return Rate{CountryCode: code, Rate: int(bps)}, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Rate, error) {
	rows, err := s.db.Query(ctx, listRatesSQL)
	if err != nil {
		return nil, fmt.Errorf("list vat rates: %w", err)
	}
	defer rows.Close()
	var out []Rate
	for rows.Next() {
		var (
			code string
			bps  int32
		)
		if err := rows.Scan(&code, &bps); err != nil {
			return nil, fmt.Errorf("scan vat rate: %w", err)
		}
		out = append(out, Rate{CountryCode: code, Rate: int(bps)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vat rates: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rate Rate) error {
	if rate.Rate < 0 {
		return ErrInvalidRate
	}
	if _, err := s.db.Exec(ctx, upsertRateSQL, rate.CountryCode, int32(rate.Rate)); err != nil {
		return fmt.Errorf("upsert vat rate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, countryCode string) error {
	tag, err := s.db.Exec(ctx, deleteRateSQL, countryCode)
	if err != nil {
		return fmt.Errorf("delete vat rate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{CountryCode: countryCode}
	}
	return nil
}
