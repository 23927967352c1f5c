// Package api provides a client for the Steamlytics REST API.
//
// Endpoints:
//   - Account and currencies: http://api.steamlytics.xyz/v1
//   - CS:GO market data: http://api.csgo.steamlytics.xyz/v1 and /v2
//
// Authentication is the key query parameter. Some operations need a paid
// plan: the pricelist, item prices in a non-default currency and
// historical rates need the pro plan (level 2), conversion needs level 3.
//
// Every operation returns a *Call that settles once the request finishes.
// Readiness, argument and plan errors are returned synchronously instead,
// before any request is made:
//
//	c, _, err := api.Dial(ctx, key)
//	if err != nil { ... }
//	call, err := c.Popular(ctx, api.PopularOptions{Limit: 10})
//	if err != nil { ... }
//	items, err := call.Await(ctx)
package api
