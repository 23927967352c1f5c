package api

import (
	"context"
	"fmt"
)

// Account fetches the account tied to the API key.
func (c *Client) Account(ctx context.Context) (*Call[*Account], error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	return newCall(func() (*Account, error) {
		return c.fetchAccount(ctx)
	}, nil), nil
}

// fetchAccount runs the account request without the readiness check. The
// probe depends on it.
func (c *Client) fetchAccount(ctx context.Context) (*Account, error) {
	var acct Account
	if err := c.getJSON(ctx, "account", c.accountURL("/v1/account", nil), &acct); err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &acct, nil
}
