package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Currencies fetches the currency catalog of the Steam market.
func (c *Client) Currencies(ctx context.Context) (*Call[map[CurrencyID]CurrencyInfo], error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	target := c.accountURL("/v1/currencies/", nil)

	return newCall(func() (map[CurrencyID]CurrencyInfo, error) {
		var resp CurrenciesResponse
		if err := c.getJSON(ctx, "currencies", target, &resp); err != nil {
			return nil, fmt.Errorf("get currencies: %w", err)
		}
		if resp.Currencies == nil {
			resp.Currencies = map[CurrencyID]CurrencyInfo{}
		}
		return resp.Currencies, nil
	}, map[CurrencyID]CurrencyInfo{}), nil
}

// LatestRates fetches current exchange rates.
func (c *Client) LatestRates(ctx context.Context, opts RatesOptions) (*Call[*Rates], error) {
	const op = "latest rates"

	if err := c.usable(); err != nil {
		return nil, err
	}
	if err := c.checkStruct(op, opts); err != nil {
		return nil, err
	}

	target := c.accountURL("/v1/currencies/latest/", ratesQuery(opts))
	return c.rates(ctx, op, target, opts), nil
}

// HistoricalRates fetches exchange rates for a past day. date must be
// formatted YYYY-MM-DD. Requires the pro plan.
func (c *Client) HistoricalRates(ctx context.Context, date string, opts RatesOptions) (*Call[*Rates], error) {
	const op = "historical rates"

	if err := c.usable(); err != nil {
		return nil, err
	}
	if err := c.checkVar(op, "date", date, "required,datetime="+historicalDateLayout); err != nil {
		return nil, err
	}
	if err := c.checkStruct(op, opts); err != nil {
		return nil, err
	}
	if err := c.require(op, LevelPro); err != nil {
		return nil, err
	}

	target := c.accountURL("/v1/currencies/historical/"+pathEscape(date), ratesQuery(opts))
	return c.rates(ctx, op, target, opts), nil
}

// Convert converts amount from one currency to another. Requires the
// enterprise plan.
func (c *Client) Convert(ctx context.Context, amount decimal.Decimal, from, to CurrencyID) (*Call[*Conversion], error) {
	const op = "convert"

	if err := c.usable(); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, &InvalidArgumentError{Operation: op, Field: "amount", Reason: "must be > 0"}
	}
	if err := c.checkVar(op, "from", from, "required"); err != nil {
		return nil, err
	}
	if err := c.checkVar(op, "to", to, "required"); err != nil {
		return nil, err
	}
	if err := c.require(op, LevelEnterprise); err != nil {
		return nil, err
	}

	target := c.accountURL("/v1/currencies/convert/"+pathEscape(amount.String(), string(from), string(to)), nil)
	return newCall(func() (*Conversion, error) {
		var resp Conversion
		if err := c.getJSON(ctx, op, target, &resp); err != nil {
			return nil, fmt.Errorf("convert %s %s to %s: %w", amount, from, to, err)
		}
		return &resp, nil
	}, nil), nil
}

func (c *Client) rates(ctx context.Context, op, target string, opts RatesOptions) *Call[*Rates] {
	return newCall(func() (*Rates, error) {
		var resp Rates
		if err := c.getJSON(ctx, op, target, &resp); err != nil {
			return nil, fmt.Errorf("get %s: %w", op, err)
		}
		if resp.Base == "" {
			resp.Base = opts.Base.TakeOr("")
		}
		if resp.Rates == nil {
			resp.Rates = map[CurrencyID]decimal.Decimal{}
		}
		if resp.Base != "" {
			if _, ok := resp.Rates[resp.Base]; !ok {
				resp.Rates[resp.Base] = decimal.NewFromInt(1)
			}
		}
		return &resp, nil
	}, nil)
}

func ratesQuery(opts RatesOptions) url.Values {
	query := url.Values{}
	if base, err := opts.Base.Take(); err == nil {
		query.Set("base", string(base))
	}
	if len(opts.Currencies) > 0 {
		ids := make([]string, len(opts.Currencies))
		for i, id := range opts.Currencies {
			ids[i] = string(id)
		}
		query.Set("currencies", strings.Join(ids, ","))
	}
	return query
}
