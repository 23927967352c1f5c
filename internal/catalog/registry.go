package catalog

import (
	"context"

	"github.com/rickgao/steamlytics/api"
)

// ChangeBufferSize is the capacity of the ItemChange channel.
const ChangeBufferSize = 1000

// Change event types.
const (
	EventAdded   = "added"
	EventRemoved = "removed"
)

// Source is the part of the Steamlytics client the registry needs.
type Source interface {
	Items(ctx context.Context) (*api.Call[api.ItemList], error)
}

// Registry manages the item catalog.
type Registry interface {
	// Start loads the catalog and begins reconciliation in background.
	Start(ctx context.Context) error

	// Stop gracefully shuts down.
	Stop(ctx context.Context) error

	// Items returns every known item sorted by market hash name.
	Items() []api.Item

	// Item returns a specific item by market hash name.
	Item(marketHashName string) (api.Item, bool)

	// Len returns the number of known items.
	Len() int

	// Tracked splits names into those the catalog knows and those it does
	// not. Both keep the input order.
	Tracked(names []string) (known, unknown []string)

	// SubscribeChanges returns a channel of catalog changes.
	SubscribeChanges() <-chan ItemChange
}

// ItemChange represents an item entering or leaving the catalog.
type ItemChange struct {
	MarketHashName string
	EventType      string    // "added" or "removed"
	Item           *api.Item // nil for "removed"
}
