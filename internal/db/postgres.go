package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PropertyInfoSchema creates the enrichment table when missing.
const PropertyInfoSchema = `
CREATE TABLE IF NOT EXISTS properties_info (
	id                     BIGSERIAL PRIMARY KEY,
	address                TEXT NOT NULL UNIQUE,
	type                   TEXT,
	size                   DOUBLE PRECISION,
	year_built             INTEGER,
	listing_price          DOUBLE PRECISION,
	last_sold_price        DOUBLE PRECISION,
	rent_estimate          DOUBLE PRECISION,
	days_on_market         INTEGER,
	price_per_sqft         DOUBLE PRECISION,
	estimated_value_zillow DOUBLE PRECISION,
	estimated_value_redfin DOUBLE PRECISION,
	photos                 TEXT,
	description            TEXT,
	gross_yield            DOUBLE PRECISION,
	cap_rate               DOUBLE PRECISION,
	historical_prices      TEXT,
	tax_history            TEXT,
	hoa_fees               DOUBLE PRECISION,
	hoa_rules              TEXT,
	roi_inputs             TEXT,
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// ConnectPostgres opens a sqlx pool on the lib/pq driver and makes sure the
// property info schema exists.
func ConnectPostgres(dsn string) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pg, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	pg.SetMaxOpenConns(10)
	pg.SetConnMaxIdleTime(5 * time.Minute)

	if _, err := pg.ExecContext(ctx, PropertyInfoSchema); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("failed to apply property info schema: %w", err)
	}
	zap.L().Info("connected to Postgres")
	return pg, nil
}

// DisconnectPostgres closes the pool.
func DisconnectPostgres(pg *sqlx.DB) error {
	if pg == nil {
		return nil
	}
	if err := pg.Close(); err != nil {
		return fmt.Errorf("failed to close Postgres: %w", err)
	}
	zap.L().Info("Postgres connection closed")
	return nil
}
