// Package writer implements batch writers for collected snapshots.
//
// Writers:
//   - Popular rank writer (popular_ranks)
//   - Exchange rate writer (exchange_rates)
//   - Item price writer (item_prices)
//
// All writers use append-only semantics (never update, only insert) with
// ON CONFLICT DO NOTHING on the table's natural key, so replaying a poll
// cycle is harmless. SnapshotWriter fans a model.Snapshot out to the three.
package writer
