package api

import "github.com/shopspring/decimal"

// CurrencyID identifies a currency, e.g. "2001" for USD in the pricing
// endpoints or a currency code in the currencies endpoints.
type CurrencyID string

// Account from GET /v1/account
type Account struct {
	APIPlan            int   `json:"api_plan"`
	SubscriptionEndsAt int64 `json:"subscription_ends_at"`
	CallsThisMinute    int   `json:"calls_this_minute"`
	CallsToday         int   `json:"calls_today"`
}

// PriceWindow holds pricing statistics over one trailing window.
type PriceWindow struct {
	MedianPrice           decimal.Decimal `json:"median_price"`
	MedianNetPrice        decimal.Decimal `json:"median_net_price"`
	AveragePrice          decimal.Decimal `json:"average_price"`
	AverageNetPrice       decimal.Decimal `json:"average_net_price"`
	LowestPrice           decimal.Decimal `json:"lowest_price"`
	LowestNetPrice        decimal.Decimal `json:"lowest_net_price"`
	HighestPrice          decimal.Decimal `json:"highest_price"`
	HighestNetPrice       decimal.Decimal `json:"highest_net_price"`
	MeanAbsoluteDeviation decimal.Decimal `json:"mean_absolute_deviation"`
	DeviationPercentage   float64         `json:"deviation_percentage"`
	Trend                 float64         `json:"trend"`
	Volume                int64           `json:"volume"`
}

// ItemPrice is one entry of the v2 pricelist.
type ItemPrice struct {
	Name                     string          `json:"name"`
	SafePrice                decimal.Decimal `json:"safe_price"`
	SafeNetPrice             decimal.Decimal `json:"safe_net_price"`
	OngoingPriceManipulation bool            `json:"ongoing_price_manipulation"`
	TotalVolume              int64           `json:"total_volume"`
	SevenDays                PriceWindow     `json:"7_days"`
	ThirtyDays               PriceWindow     `json:"30_days"`
	AllTime                  PriceWindow     `json:"all_time"`
	FirstSeen                int64           `json:"first_seen"`
}

// PricelistResponse from GET /v2/pricelist
type PricelistResponse struct {
	Items []ItemPrice `json:"items"`
}

// PriceResult from GET /v1/prices/{market_hash_name}
type PriceResult struct {
	Success bool `json:"success"`
	PriceWindow
	FirstSeen int64 `json:"first_seen"`
}

// Item describes one tracked market item.
type Item struct {
	MarketName     string `json:"market_name"`
	MarketHashName string `json:"market_hash_name"`
	IconURL        string `json:"icon_url"`
	NameColor      string `json:"name_color"`
	QualityColor   string `json:"quality_color"`
}

// ItemList from GET /v1/items
type ItemList struct {
	Count int    `json:"num_items"`
	Items []Item `json:"items"`
}

// PopularItem is one entry of the popularity ranking.
type PopularItem struct {
	Rank           int    `json:"rank"`
	MarketHashName string `json:"market_hash_name"`
	Volume         int64  `json:"volume"`
}

// PopularResponse from GET /v1/items/popular
type PopularResponse struct {
	Items []PopularItem `json:"items"`
}

// CurrencyInfo describes one currency of the catalog.
type CurrencyInfo struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Code   string `json:"code"`
}

// CurrenciesResponse from GET /v1/currencies/
type CurrenciesResponse struct {
	Currencies map[CurrencyID]CurrencyInfo `json:"currencies"`
}

// Rates from GET /v1/currencies/latest/ and /v1/currencies/historical/{date}.
// The base currency is always present at rate 1.
type Rates struct {
	Base  CurrencyID                     `json:"base"`
	Date  string                         `json:"date,omitempty"`
	Rates map[CurrencyID]decimal.Decimal `json:"rates"`
}

// Conversion from GET /v1/currencies/convert/{amount}/{from}/{to}
type Conversion struct {
	Amount decimal.Decimal `json:"amount"`
	Rate   decimal.Decimal `json:"rate"`
}
