// Package poller implements the snapshot poller.
//
// On every tick of a cron schedule the poller:
//   - fetches the popularity ranking
//   - fetches the latest exchange rates
//   - fetches prices for every tracked item the catalog knows
//
// Requests of one cycle run concurrently, bounded by Config.Concurrency.
// Every row of a cycle carries the same run id. A failed request only
// drops its own rows; the rest of the cycle is still handed on.
package poller
