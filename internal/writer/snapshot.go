package writer

import (
	"context"
	"log/slog"

	"github.com/rickgao/steamlytics/internal/model"
)

const (
	insertPopularRank = `
		INSERT INTO popular_ranks (run_id, captured_at, rank, market_hash_name, volume)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id, market_hash_name) DO NOTHING`

	insertExchangeRate = `
		INSERT INTO exchange_rates (run_id, captured_at, base, currency, rate)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id, currency) DO NOTHING`

	insertItemPrice = `
		INSERT INTO item_prices (run_id, captured_at, market_hash_name, currency,
			median_price, average_price, lowest_price, highest_price, volume, first_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id, market_hash_name) DO NOTHING`
)

func popularRankArgs(r model.PopularRank) []any {
	return []any{r.RunID, r.CapturedAt, r.Rank, r.MarketHashName, r.Volume}
}

// Rates and prices are bound as strings so numeric keeps every digit.
func exchangeRateArgs(r model.ExchangeRate) []any {
	return []any{r.RunID, r.CapturedAt, r.Base, r.Currency, r.Rate.String()}
}

func itemPriceArgs(r model.ItemPrice) []any {
	return []any{
		r.RunID, r.CapturedAt, r.MarketHashName, r.Currency,
		r.MedianPrice.String(), r.AveragePrice.String(), r.LowestPrice.String(), r.HighestPrice.String(),
		r.Volume, r.FirstSeen,
	}
}

// SnapshotWriter writes poll cycle snapshots to their three tables.
type SnapshotWriter struct {
	popular *tableWriter[model.PopularRank]
	rates   *tableWriter[model.ExchangeRate]
	prices  *tableWriter[model.ItemPrice]
}

// SnapshotStats reports per-table writer metrics.
type SnapshotStats struct {
	Popular WriterMetrics `json:"popular_ranks"`
	Rates   WriterMetrics `json:"exchange_rates"`
	Prices  WriterMetrics `json:"item_prices"`
}

// Total sums the per-table metrics.
func (s SnapshotStats) Total() WriterMetrics {
	return s.Popular.Add(s.Rates).Add(s.Prices)
}

// NewSnapshotWriter creates a SnapshotWriter. Zero fields of cfg take
// their DefaultWriterConfig values.
func NewSnapshotWriter(cfg WriterConfig, db BatchSender, logger *slog.Logger) *SnapshotWriter {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &SnapshotWriter{
		popular: newTableWriter("popular_ranks", insertPopularRank, popularRankArgs, cfg, db, logger),
		rates:   newTableWriter("exchange_rates", insertExchangeRate, exchangeRateArgs, cfg, db, logger),
		prices:  newTableWriter("item_prices", insertItemPrice, itemPriceArgs, cfg, db, logger),
	}
}

// Start starts the flush loop of every table writer.
func (w *SnapshotWriter) Start(ctx context.Context) error {
	for _, start := range []func(context.Context) error{w.popular.Start, w.rates.Start, w.prices.Start} {
		if err := start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops every table writer, flushing pending rows.
func (w *SnapshotWriter) Stop(ctx context.Context) error {
	_ = w.popular.Stop(ctx)
	_ = w.rates.Stop(ctx)
	return w.prices.Stop(ctx)
}

// Write queues every row of snap. It matches poller.Handler.
func (w *SnapshotWriter) Write(ctx context.Context, snap *model.Snapshot) error {
	w.popular.Add(ctx, snap.Popular...)
	w.rates.Add(ctx, snap.Rates...)
	w.prices.Add(ctx, snap.Prices...)
	return nil
}

// Stats returns current metrics.
func (w *SnapshotWriter) Stats() SnapshotStats {
	return SnapshotStats{
		Popular: w.popular.Stats(),
		Rates:   w.rates.Stats(),
		Prices:  w.prices.Stats(),
	}
}
