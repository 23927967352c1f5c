// Package database provides the PostgreSQL connection pool and schema
// bootstrap for the snapshot collector.
//
// The collector keeps three append-only tables, one per snapshot kind:
//   - popular_ranks: the popularity ranking of each poll cycle
//   - exchange_rates: the latest exchange rates of each poll cycle
//   - item_prices: price statistics of each tracked item
package database
