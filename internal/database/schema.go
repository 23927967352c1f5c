package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer runs a statement. *pgxpool.Pool and pgx.Tx satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Schema lists the statements EnsureSchema runs, in order. Every statement
// is idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS popular_ranks (
		run_id           uuid    NOT NULL,
		captured_at      bigint  NOT NULL,
		rank             integer NOT NULL,
		market_hash_name text    NOT NULL,
		volume           bigint  NOT NULL,
		PRIMARY KEY (run_id, market_hash_name)
	)`,
	`CREATE INDEX IF NOT EXISTS popular_ranks_captured_at_idx ON popular_ranks (captured_at)`,
	`CREATE TABLE IF NOT EXISTS exchange_rates (
		run_id      uuid    NOT NULL,
		captured_at bigint  NOT NULL,
		base        text    NOT NULL,
		currency    text    NOT NULL,
		rate        numeric NOT NULL,
		PRIMARY KEY (run_id, currency)
	)`,
	`CREATE INDEX IF NOT EXISTS exchange_rates_currency_idx ON exchange_rates (currency, captured_at)`,
	`CREATE TABLE IF NOT EXISTS item_prices (
		run_id           uuid    NOT NULL,
		captured_at      bigint  NOT NULL,
		market_hash_name text    NOT NULL,
		currency         text    NOT NULL,
		median_price     numeric NOT NULL,
		average_price    numeric NOT NULL,
		lowest_price     numeric NOT NULL,
		highest_price    numeric NOT NULL,
		volume           bigint  NOT NULL,
		first_seen       bigint  NOT NULL,
		PRIMARY KEY (run_id, market_hash_name)
	)`,
	`CREATE INDEX IF NOT EXISTS item_prices_name_idx ON item_prices (market_hash_name, captured_at)`,
}

// EnsureSchema creates the collector tables if they do not exist.
func EnsureSchema(ctx context.Context, db Execer) error {
	for i, stmt := range Schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema (statement %d): %w", i+1, err)
		}
	}
	return nil
}
