package model

import (
	"sort"

	"github.com/google/uuid"
	"github.com/rickgao/steamlytics/api"
)

// PopularRanks converts a popularity ranking to rows, keeping its order.
func PopularRanks(runID uuid.UUID, capturedAt int64, items []api.PopularItem) []PopularRank {
	rows := make([]PopularRank, 0, len(items))
	for _, it := range items {
		rows = append(rows, PopularRank{
			RunID:          runID,
			CapturedAt:     capturedAt,
			Rank:           it.Rank,
			MarketHashName: it.MarketHashName,
			Volume:         it.Volume,
		})
	}
	return rows
}

// ExchangeRates converts a rates table to rows sorted by currency.
func ExchangeRates(runID uuid.UUID, capturedAt int64, rates *api.Rates) []ExchangeRate {
	if rates == nil {
		return nil
	}

	currencies := make([]string, 0, len(rates.Rates))
	for id := range rates.Rates {
		currencies = append(currencies, string(id))
	}
	sort.Strings(currencies)

	rows := make([]ExchangeRate, 0, len(currencies))
	for _, cur := range currencies {
		rows = append(rows, ExchangeRate{
			RunID:      runID,
			CapturedAt: capturedAt,
			Base:       string(rates.Base),
			Currency:   cur,
			Rate:       rates.Rates[api.CurrencyID(cur)],
		})
	}
	return rows
}

// ItemPriceFrom converts a price result for marketHashName to a row.
func ItemPriceFrom(runID uuid.UUID, capturedAt int64, marketHashName, currency string, res *api.PriceResult) ItemPrice {
	return ItemPrice{
		RunID:          runID,
		CapturedAt:     capturedAt,
		MarketHashName: marketHashName,
		Currency:       currency,
		MedianPrice:    res.MedianPrice,
		AveragePrice:   res.AveragePrice,
		LowestPrice:    res.LowestPrice,
		HighestPrice:   res.HighestPrice,
		Volume:         res.Volume,
		FirstSeen:      res.FirstSeen,
	}
}
