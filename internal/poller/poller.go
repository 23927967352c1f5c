package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rickgao/steamlytics/api"
	"github.com/rickgao/steamlytics/internal/model"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Client is the part of the Steamlytics client the poller uses.
type Client interface {
	Level() int
	Popular(ctx context.Context, opts api.PopularOptions) (*api.Call[[]api.PopularItem], error)
	LatestRates(ctx context.Context, opts api.RatesOptions) (*api.Call[*api.Rates], error)
	Prices(ctx context.Context, marketHashName string, opts api.PriceOptions) (*api.Call[*api.PriceResult], error)
}

// ItemSource filters tracked items against the item catalog.
type ItemSource interface {
	Tracked(names []string) (known, unknown []string)
}

// Handler receives the snapshot of every cycle.
type Handler interface {
	Write(ctx context.Context, snap *model.Snapshot) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(context.Context, *model.Snapshot) error

func (f HandlerFunc) Write(ctx context.Context, snap *model.Snapshot) error {
	return f(ctx, snap)
}

// Config holds poller configuration.
type Config struct {
	Schedule    string        // Cron expression (default: "@every 15m")
	Concurrency int           // Max concurrent requests per cycle
	Timeout     time.Duration // Per-request timeout

	PopularLimit   int
	TrackedItems   []string
	Currency       string // Price currency; needs the pro plan
	Base           string
	RateCurrencies []string

	// RunOnStart polls once immediately instead of waiting for the first tick.
	RunOnStart bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Schedule:     "@every 15m",
		Concurrency:  4,
		Timeout:      2 * time.Minute,
		PopularLimit: 100,
		RunOnStart:   true,
	}
}

// Stats summarises poller activity.
type Stats struct {
	Cycles      int64  `json:"cycles"`
	Failures    int64  `json:"failures"`
	LastRunID   string `json:"last_run_id,omitempty"`
	LastCycleAt int64  `json:"last_cycle_at,omitempty"` // µs since epoch
}

// Poller periodically captures snapshots via the Steamlytics API.
type Poller struct {
	cfg     Config
	client  Client
	items   ItemSource
	handler Handler
	logger  *slog.Logger

	sched *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	cycles   atomic.Int64
	failures atomic.Int64
	lastMu   sync.Mutex
	last     Stats
}

// New creates a new Poller. items may be nil, in which case every tracked
// item is polled. Zero Schedule, Concurrency, Timeout and PopularLimit take
// their DefaultConfig values.
func New(cfg Config, client Client, items ItemSource, handler Handler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Schedule == "" {
		cfg.Schedule = def.Schedule
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.PopularLimit == 0 {
		cfg.PopularLimit = def.PopularLimit
	}
	return &Poller{
		cfg:     cfg,
		client:  client,
		items:   items,
		handler: handler,
		logger:  logger,
	}
}

// Start schedules the poll cycles.
func (p *Poller) Start(ctx context.Context) error {
	schedule, err := cron.ParseStandard(p.cfg.Schedule)
	if err != nil {
		return fmt.Errorf("parse poller schedule %q: %w", p.cfg.Schedule, err)
	}

	if p.cfg.Currency != "" && p.client.Level() < api.LevelPro {
		p.logger.Warn("price currency needs the pro plan, using the default currency",
			"currency", p.cfg.Currency,
			"plan", api.PlanName(p.client.Level()),
		)
		p.cfg.Currency = ""
	}

	// Cycles outlive ctx so Stop can let the one in flight finish.
	p.ctx, p.cancel = context.WithCancel(context.WithoutCancel(ctx))

	// The start-up run shares the wrapped job, so it never overlaps a tick.
	cl := cronLogger{p.logger}
	job := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(p.runCycle))

	p.sched = cron.New(cron.WithLogger(cl))
	p.sched.Schedule(schedule, job)
	p.sched.Start()

	if p.cfg.RunOnStart {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			job.Run()
		}()
	}

	p.logger.Info("snapshot poller started",
		"schedule", p.cfg.Schedule,
		"concurrency", p.cfg.Concurrency,
		"tracked_items", len(p.cfg.TrackedItems),
	)
	return nil
}

// Stop stops scheduling and waits for a running cycle to finish and hand
// its snapshot on. If ctx ends first the cycle is cancelled and ctx's
// error returned.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel == nil {
		return nil
	}
	defer p.cancel()

	done := make(chan struct{})
	go func() {
		<-p.sched.Stop().Done()
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("snapshot poller stopped")
		return nil
	case <-ctx.Done():
		p.logger.Warn("poller stop timed out, cancelling running cycle")
		return ctx.Err()
	}
}

// Stats returns current poller activity.
func (p *Poller) Stats() Stats {
	p.lastMu.Lock()
	s := p.last
	p.lastMu.Unlock()

	s.Cycles = p.cycles.Load()
	s.Failures = p.failures.Load()
	return s
}

// runCycle polls once and hands the snapshot on.
func (p *Poller) runCycle() {
	if p.ctx.Err() != nil {
		return
	}
	start := time.Now()

	snap, err := p.PollOnce(p.ctx)
	p.cycles.Add(1)
	if err != nil {
		p.logger.Warn("poll cycle had failures", "run_id", snap.RunID, "err", err)
	}

	p.lastMu.Lock()
	p.last.LastRunID = snap.RunID.String()
	p.last.LastCycleAt = snap.CapturedAt
	p.lastMu.Unlock()

	if !snap.Empty() && p.handler != nil {
		if err := p.handler.Write(p.ctx, snap); err != nil {
			p.logger.Error("snapshot handler failed", "run_id", snap.RunID, "err", err)
		}
	}

	p.logger.Info("poll cycle complete",
		"run_id", snap.RunID,
		"popular", len(snap.Popular),
		"rates", len(snap.Rates),
		"prices", len(snap.Prices),
		"duration", time.Since(start),
	)
}

// PollOnce captures one snapshot. Failed requests are joined into the
// returned error; the snapshot holds whatever succeeded and is never nil.
func (p *Poller) PollOnce(ctx context.Context) (*model.Snapshot, error) {
	snap := &model.Snapshot{
		RunID:      uuid.New(),
		CapturedAt: time.Now().UnixMicro(),
	}

	tracked := p.cfg.TrackedItems
	if p.items != nil && len(tracked) > 0 {
		var unknown []string
		tracked, unknown = p.items.Tracked(tracked)
		if len(unknown) > 0 {
			p.logger.Warn("tracked items missing from catalog", "items", unknown)
		}
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		p.failures.Add(1)
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(max(p.cfg.Concurrency, 1))

	g.Go(func() error {
		rows, err := p.pollPopular(ctx, snap)
		if err != nil {
			fail(err)
			return nil
		}
		mu.Lock()
		snap.Popular = rows
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		rows, err := p.pollRates(ctx, snap)
		if err != nil {
			fail(err)
			return nil
		}
		mu.Lock()
		snap.Rates = rows
		mu.Unlock()
		return nil
	})

	prices := make([]*model.ItemPrice, len(tracked))
	for i, name := range tracked {
		g.Go(func() error {
			row, err := p.pollPrice(ctx, snap, name)
			if err != nil {
				fail(err)
				return nil
			}
			prices[i] = &row
			return nil
		})
	}

	_ = g.Wait()

	for _, row := range prices {
		if row != nil {
			snap.Prices = append(snap.Prices, *row)
		}
	}

	return snap, errors.Join(errs...)
}

func (p *Poller) pollPopular(ctx context.Context, snap *model.Snapshot) ([]model.PopularRank, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	call, err := p.client.Popular(ctx, api.PopularOptions{Limit: p.cfg.PopularLimit})
	if err != nil {
		return nil, err
	}
	items, err := call.Await(ctx)
	if err != nil {
		return nil, err
	}
	return model.PopularRanks(snap.RunID, snap.CapturedAt, items), nil
}

func (p *Poller) pollRates(ctx context.Context, snap *model.Snapshot) ([]model.ExchangeRate, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	opts := api.RatesOptions{}
	if p.cfg.Base != "" {
		opts.Base = optional.Some(api.CurrencyID(p.cfg.Base))
	}
	for _, id := range p.cfg.RateCurrencies {
		opts.Currencies = append(opts.Currencies, api.CurrencyID(id))
	}

	call, err := p.client.LatestRates(ctx, opts)
	if err != nil {
		return nil, err
	}
	rates, err := call.Await(ctx)
	if err != nil {
		return nil, err
	}
	return model.ExchangeRates(snap.RunID, snap.CapturedAt, rates), nil
}

func (p *Poller) pollPrice(ctx context.Context, snap *model.Snapshot, name string) (model.ItemPrice, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	opts := api.PriceOptions{}
	if p.cfg.Currency != "" {
		opts.Currency = optional.Some(api.CurrencyID(p.cfg.Currency))
	}

	call, err := p.client.Prices(ctx, name, opts)
	if err != nil {
		return model.ItemPrice{}, err
	}
	res, err := call.Await(ctx)
	if err != nil {
		return model.ItemPrice{}, err
	}
	return model.ItemPriceFrom(snap.RunID, snap.CapturedAt, name, p.cfg.Currency, res), nil
}
