package main

import (
	"database/sql"
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-pricing/internal/obs"
)

// demoCustomerID owns the seeded shipping address, so a token issued for it
// prices against that address.
const demoCustomerID = "6f1c2b9e-8a4d-4e0b-9a51-3c2d7e8f9a10"

func main() {
	ratesOnly := flag.Bool("rates-only", false, "seed VAT rates only")
	flag.Parse()

	_ = godotenv.Load()
	logger := obs.NewLogger("console", "info")

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	seedVatRates(db, logger)
	if !*ratesOnly {
		seedCatalog(db, logger)
		seedAddresses(db, logger)
	}
	logger.Info().Msg("seeding completed")
}

func seedVatRates(db *sql.DB, logger zerolog.Logger) {
	logger.Info().Int("count", len(euStandardRates)).Msg("seeding vat rates")
	for _, r := range euStandardRates {
		_, err := db.Exec(`
			INSERT INTO vat_rates (country_code, rate)
			VALUES ($1, $2)
			ON CONFLICT (country_code) DO UPDATE SET rate = EXCLUDED.rate, updated_at = now();
		`, r.CountryCode, r.Rate)
		if err != nil {
			logger.Error().Err(err).Str("country_code", r.CountryCode).Msg("seed vat rate")
		}
	}
}

func seedCatalog(db *sql.DB, logger zerolog.Logger) {
	products := []struct {
		Name      string
		Slug      string
		Price     int64
		SalePrice *int64
		OnSale    bool
		EcoTax    int64
	}{
		{Name: "Espresso Machine", Slug: "espresso-machine", Price: 10000, EcoTax: 500},
		{Name: "Wireless Headphones", Slug: "wireless-headphones", Price: 24900, SalePrice: ptr(19900), OnSale: true, EcoTax: 50},
		{Name: "Linen Shirt", Slug: "linen-shirt", Price: 4990},
		{Name: "Robot Vacuum", Slug: "robot-vacuum", Price: 39900, SalePrice: ptr(34900), EcoTax: 1200},
	}

	logger.Info().Int("count", len(products)).Msg("seeding products")
	for _, p := range products {
		var productID string
		err := db.QueryRow(`
			INSERT INTO products (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id;
		`, p.Name, p.Slug).Scan(&productID)
		if err != nil {
			logger.Error().Err(err).Str("slug", p.Slug).Msg("seed product")
			continue
		}

		sku := strings.ToUpper(strings.ReplaceAll(p.Slug, "-", ""))
		var sale sql.NullInt64
		if p.SalePrice != nil {
			sale = sql.NullInt64{Int64: *p.SalePrice, Valid: true}
		}
		_, err = db.Exec(`
			DELETE FROM product_variants WHERE product_id = $1;
		`, productID)
		if err != nil {
			logger.Error().Err(err).Str("slug", p.Slug).Msg("reset variants")
			continue
		}
		_, err = db.Exec(`
			INSERT INTO product_variants (product_id, sku, position, price_excl_tax, sale_price_excl_tax, is_on_sale, eco_tax_excl_tax)
			VALUES ($1, $2, 0, $3, $4, $5, $6);
		`, productID, sku, p.Price, sale, p.OnSale, p.EcoTax)
		if err != nil {
			logger.Error().Err(err).Str("slug", p.Slug).Msg("seed variant")
			continue
		}
		logger.Info().Str("product_id", productID).Str("slug", p.Slug).Msg("product seeded")
	}
}

func seedAddresses(db *sql.DB, logger zerolog.Logger) {
	_, err := db.Exec(`
		INSERT INTO addresses (user_id, type, is_default, line1, city, postal_code, country)
		VALUES ($1, 'shipping', TRUE, 'Rue de la Loi 16', 'Brussels', '1000', 'BE')
		ON CONFLICT (user_id, type) WHERE is_default DO UPDATE SET country = EXCLUDED.country, updated_at = now();
	`, demoCustomerID)
	if err != nil {
		logger.Error().Err(err).Msg("seed address")
		return
	}
	logger.Info().Str("user_id", demoCustomerID).Msg("default shipping address seeded")
}

func ptr(v int64) *int64 { return &v }
