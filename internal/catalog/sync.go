package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rickgao/steamlytics/api"
)

// initialSync loads the full catalog on startup.
func (r *registryImpl) initialSync(ctx context.Context) error {
	start := time.Now()

	if r.cfg.InitialLoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.InitialLoadTimeout)
		defer cancel()
	}

	items, err := r.fetchItems(ctx)
	if err != nil {
		return fmt.Errorf("initial catalog sync: %w", err)
	}

	added, _ := r.state.replace(items)
	for i := range added {
		r.state.notifyChange(ItemChange{
			MarketHashName: added[i].MarketHashName,
			EventType:      EventAdded,
			Item:           &added[i],
		})
	}

	r.logger.Info("initial catalog sync complete",
		"items", r.state.size(),
		"duration", time.Since(start),
	)
	return nil
}

// reconciliationLoop periodically reloads the catalog.
func (r *registryImpl) reconciliationLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile reloads the catalog and emits a change per added or removed
// item. A failed fetch keeps the previous catalog.
func (r *registryImpl) reconcile(ctx context.Context) {
	start := time.Now()

	items, err := r.fetchItems(ctx)
	if err != nil {
		r.logger.Error("catalog reconciliation failed", "err", err)
		return
	}

	added, removed := r.state.replace(items)
	for i := range added {
		r.state.notifyChange(ItemChange{
			MarketHashName: added[i].MarketHashName,
			EventType:      EventAdded,
			Item:           &added[i],
		})
	}
	for _, name := range removed {
		r.state.notifyChange(ItemChange{
			MarketHashName: name,
			EventType:      EventRemoved,
		})
	}

	if len(added) > 0 || len(removed) > 0 {
		r.logger.Info("catalog reconciliation found changes",
			"added", len(added),
			"removed", len(removed),
			"duration", time.Since(start),
		)
	} else {
		r.logger.Debug("catalog reconciliation complete",
			"items", len(items),
			"duration", time.Since(start),
		)
	}
}

func (r *registryImpl) fetchItems(ctx context.Context) ([]api.Item, error) {
	call, err := r.source.Items(ctx)
	if err != nil {
		return nil, err
	}
	list, err := call.Await(ctx)
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}
