package writer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// WriterConfig contains configuration for batch writers.
type WriterConfig struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     1000,
		FlushInterval: 1 * time.Second,
	}
}

// withDefaults fills unset fields from DefaultWriterConfig.
func (c WriterConfig) withDefaults() WriterConfig {
	def := DefaultWriterConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = def.FlushInterval
	}
	return c
}

// BatchSender sends a queued batch. *pgxpool.Pool satisfies it.
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// WriterMetrics holds metrics for a writer.
type WriterMetrics struct {
	Inserts   int64 `json:"inserts"`
	Conflicts int64 `json:"conflicts"`
	Errors    int64 `json:"errors"`
	Flushes   int64 `json:"flushes"`
	Pending   int64 `json:"pending"`
}

// Add returns the field-wise sum of m and o.
func (m WriterMetrics) Add(o WriterMetrics) WriterMetrics {
	return WriterMetrics{
		Inserts:   m.Inserts + o.Inserts,
		Conflicts: m.Conflicts + o.Conflicts,
		Errors:    m.Errors + o.Errors,
		Flushes:   m.Flushes + o.Flushes,
		Pending:   m.Pending + o.Pending,
	}
}
