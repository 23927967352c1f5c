package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PopularRank is one entry of the popularity ranking at capture time.
type PopularRank struct {
	RunID          uuid.UUID // Poll cycle
	CapturedAt     int64     // Collector capture time (µs since epoch)
	Rank           int       // 1-based position
	MarketHashName string    // Item name
	Volume         int64     // Units sold in the ranking window
}

// ExchangeRate is the rate of one currency against Base.
type ExchangeRate struct {
	RunID      uuid.UUID
	CapturedAt int64 // µs since epoch
	Base       string
	Currency   string
	Rate       decimal.Decimal
}

// ItemPrice is a price snapshot of one tracked item.
type ItemPrice struct {
	RunID          uuid.UUID
	CapturedAt     int64 // µs since epoch
	MarketHashName string
	Currency       string // Empty means the server default (USD)
	MedianPrice    decimal.Decimal
	AveragePrice   decimal.Decimal
	LowestPrice    decimal.Decimal
	HighestPrice   decimal.Decimal
	Volume         int64
	FirstSeen      int64 // unix seconds
}

// Snapshot is everything one poll cycle captured.
type Snapshot struct {
	RunID      uuid.UUID
	CapturedAt int64
	Popular    []PopularRank
	Rates      []ExchangeRate
	Prices     []ItemPrice
}

// Empty reports whether the cycle captured nothing.
func (s *Snapshot) Empty() bool {
	return len(s.Popular) == 0 && len(s.Rates) == 0 && len(s.Prices) == 0
}
