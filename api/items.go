package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Items fetches the catalog of every item Steamlytics tracks.
func (c *Client) Items(ctx context.Context) (*Call[ItemList], error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	target := c.marketURL("/v1/items", nil)
	empty := ItemList{Items: []Item{}}

	return newCall(func() (ItemList, error) {
		var resp ItemList
		if err := c.getJSON(ctx, "items", target, &resp); err != nil {
			return empty, fmt.Errorf("get items: %w", err)
		}
		if resp.Items == nil {
			resp.Items = []Item{}
		}
		return resp, nil
	}, empty), nil
}

// Popular fetches the popularity ranking. Entries keep the order the
// server returned them in, which is rank ascending.
func (c *Client) Popular(ctx context.Context, opts PopularOptions) (*Call[[]PopularItem], error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	if err := c.checkStruct("popular", opts); err != nil {
		return nil, err
	}

	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	target := c.marketURL("/v1/items/popular", query)

	return newCall(func() ([]PopularItem, error) {
		var resp PopularResponse
		if err := c.getJSON(ctx, "popular", target, &resp); err != nil {
			return nil, fmt.Errorf("get popular items: %w", err)
		}
		if resp.Items == nil {
			resp.Items = []PopularItem{}
		}
		return resp.Items, nil
	}, []PopularItem{}), nil
}
