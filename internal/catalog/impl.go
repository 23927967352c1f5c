package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/steamlytics/api"
)

// Config holds item registry configuration.
type Config struct {
	ReconcileInterval  time.Duration
	InitialLoadTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReconcileInterval:  6 * time.Hour,
		InitialLoadTimeout: 2 * time.Minute,
	}
}

type registryImpl struct {
	cfg    Config
	source Source
	logger *slog.Logger

	state *registryState

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates a new item registry. A zero ReconcileInterval takes
// the DefaultConfig value; a zero InitialLoadTimeout means no timeout.
func NewRegistry(cfg Config, source Source, logger *slog.Logger) Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = DefaultConfig().ReconcileInterval
	}

	return &registryImpl{
		cfg:    cfg,
		source: source,
		logger: logger,
		state:  newState(),
	}
}

// Start loads the catalog, then reconciles it in the background.
func (r *registryImpl) Start(ctx context.Context) error {
	ctx, r.cancel = context.WithCancel(ctx)

	if err := r.initialSync(ctx); err != nil {
		r.cancel()
		return err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.reconciliationLoop(ctx)
	}()

	r.logger.Info("item catalog started", "items", r.state.size())
	return nil
}

// Stop gracefully shuts down.
func (r *registryImpl) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("item catalog stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *registryImpl) Items() []api.Item {
	return r.state.getItems()
}

func (r *registryImpl) Item(marketHashName string) (api.Item, bool) {
	return r.state.getItem(marketHashName)
}

func (r *registryImpl) Len() int {
	return r.state.size()
}

func (r *registryImpl) Tracked(names []string) (known, unknown []string) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	for _, name := range names {
		if _, ok := r.state.items[name]; ok {
			known = append(known, name)
		} else {
			unknown = append(unknown, name)
		}
	}
	return known, unknown
}

func (r *registryImpl) SubscribeChanges() <-chan ItemChange {
	return r.state.changes
}
