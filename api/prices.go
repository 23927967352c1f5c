package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/moznion/go-optional"
)

// Pricelist fetches the v2 pricelist of every item. It requires the pro
// plan; lower plans get a CapabilityError without a request being made.
func (c *Client) Pricelist(ctx context.Context, opts PricelistOptions) (*Call[[]ItemPrice], error) {
	if err := c.require("pricelist", LevelPro); err != nil {
		return nil, err
	}

	query := url.Values{}
	if cur, err := opts.Currency.Take(); err == nil {
		query.Set("currency", string(cur))
	}
	target := c.marketURL("/v2/pricelist", query)

	return newCall(func() ([]ItemPrice, error) {
		var resp PricelistResponse
		if err := c.getJSON(ctx, "pricelist", target, &resp); err != nil {
			return nil, fmt.Errorf("get pricelist: %w", err)
		}
		if resp.Items == nil {
			resp.Items = []ItemPrice{}
		}
		return resp.Items, nil
	}, []ItemPrice{}), nil
}

// Prices fetches pricing statistics for a single item. Either a From/To
// range or a single On timestamp may be given, not both.
func (c *Client) Prices(ctx context.Context, marketHashName string, opts PriceOptions) (*Call[*PriceResult], error) {
	const op = "prices"

	if err := c.usable(); err != nil {
		return nil, err
	}
	if err := c.checkVar(op, "market_hash_name", marketHashName, "required"); err != nil {
		return nil, err
	}
	if opts.On.IsSome() && (opts.From.IsSome() || opts.To.IsSome()) {
		return nil, &InvalidArgumentError{
			Operation: op,
			Field:     "on",
			Reason:    `may not be combined with "from" or "to"`,
		}
	}
	if opts.Currency.IsSome() {
		if err := c.require(op+" currency", LevelPro); err != nil {
			return nil, err
		}
	}

	query := url.Values{}
	setTime(query, "from", opts.From)
	setTime(query, "to", opts.To)
	setTime(query, "on", opts.On)
	if cur, err := opts.Currency.Take(); err == nil {
		query.Set("currency", string(cur))
	}
	target := c.marketURL("/v1/prices/"+pathEscape(marketHashName), query)

	return newCall(func() (*PriceResult, error) {
		var resp PriceResult
		if err := c.getJSON(ctx, op, target, &resp); err != nil {
			return nil, fmt.Errorf("get prices %s: %w", marketHashName, err)
		}
		return &resp, nil
	}, nil), nil
}

// setTime adds t as unix seconds when it is set.
func setTime(query url.Values, key string, t optional.Option[time.Time]) {
	if v, err := t.Take(); err == nil {
		query.Set(key, strconv.FormatInt(v.Unix(), 10))
	}
}
