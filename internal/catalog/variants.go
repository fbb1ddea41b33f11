package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	// ErrProductNotFound is returned when the product does not exist.
	ErrProductNotFound = errors.New("catalog: product not found")
	// ErrNoVariants is returned when the product exists but has no variants.
	ErrNoVariants = errors.New("catalog: product has no variants")
)

// Variant is the priced unit of a product. Amounts are minor units excluding tax.
type Variant struct {
	ID               string `json:"id"`
	ProductID        string `json:"productId"`
	SKU              string `json:"sku,omitempty"`
	PriceExclTax     int64  `json:"priceExclTax"`
	SalePriceExclTax *int64 `json:"salePriceExclTax,omitempty"`
	IsOnSale         bool   `json:"isOnSale"`
	EcoTaxExclTax    int64  `json:"ecoTaxExclTax"`
}

// DBTX is the subset of pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	firstVariantSQL = `SELECT v.id, v.product_id, v.sku, v.price_excl_tax, v.sale_price_excl_tax, v.is_on_sale, v.eco_tax_excl_tax
FROM product_variants v
WHERE v.product_id = $1
ORDER BY v.position ASC, v.created_at ASC, v.id ASC
LIMIT 1`
	productExistsSQL = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
)

// PostgresStore reads product variants from PostgreSQL.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// FirstVariant returns the first variant of a product by position.
func (s *PostgresStore) FirstVariant(ctx context.Context, productID uuid.UUID) (Variant, error) {
	pid := pgtype.UUID{Bytes: productID, Valid: true}
	var (
		id, product pgtype.UUID
		sku         pgtype.Text
		price       int64
		sale        pgtype.Int8
		onSale      bool
		ecoTax      int64
	)
	err := s.db.QueryRow(ctx, firstVariantSQL, pid).Scan(&id, &product, &sku, &price, &sale, &onSale, &ecoTax)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return Variant{}, fmt.Errorf("get first variant: %w", err)
		}
		var exists bool
		if err := s.db.QueryRow(ctx, productExistsSQL, pid).Scan(&exists); err != nil {
			return Variant{}, fmt.Errorf("check product exists: %w", err)
		}
		if !exists {
			return Variant{}, ErrProductNotFound
		}
		return Variant{}, ErrNoVariants
	}
	v := Variant{
		ID:            uuidString(id),
		ProductID:     uuidString(product),
		PriceExclTax:  price,
		IsOnSale:      onSale,
		EcoTaxExclTax: ecoTax,
	}
	if sku.Valid {
		v.SKU = sku.String
	}
	if sale.Valid {
		salePrice := sale.Int64
		v.SalePriceExclTax = &salePrice
	}
	return v, nil
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	u, err := uuid.FromBytes(id.Bytes[:])
	if err != nil {
		return ""
	}
	return u.String()
}
