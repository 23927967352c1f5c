package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
)

// Default endpoint settings.
const (
	DefaultScheme      = "http"
	DefaultAccountHost = "api.steamlytics.xyz"
	DefaultMarketHost  = "api.csgo.steamlytics.xyz"
	DefaultTimeout     = 30 * time.Second
)

// API levels, as reported by the account's api_plan.
const (
	LevelFree       = 0
	LevelBasic      = 1
	LevelPro        = 2
	LevelEnterprise = 3
)

// PlanName returns the human-readable plan name for an API level.
func PlanName(level int) string {
	switch {
	case level >= LevelEnterprise:
		return "enterprise"
	case level == LevelPro:
		return "pro"
	case level == LevelBasic:
		return "basic"
	default:
		return "free"
	}
}

// State is the lifecycle state of a Client.
type State int32

const (
	StateConstructing State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "constructing"
	}
}

// Client provides access to the Steamlytics API.
//
// A Client probes the account endpoint when it is created. Until the probe
// resolves every operation returns ErrNotReady; if the probe fails the
// client stays unusable for good.
type Client struct {
	apiKey      string
	scheme      string
	accountHost string
	marketHost  string
	userAgent   string
	timeout     time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
	validate    *validator.Validate

	// Written once by the probe, state last.
	state    atomic.Int32
	level    atomic.Int32
	probeErr error

	ready *Call[*Account]
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client and starts the account probe in the
// background. ctx bounds the probe request only.
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:      apiKey,
		scheme:      DefaultScheme,
		accountHost: DefaultAccountHost,
		marketHost:  DefaultMarketHost,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:   slog.Default(),
		validate: newValidator(),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = withoutRedirects(c.httpClient)
	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}

	c.ready = c.probe(ctx)
	return c
}

// Dial creates a client and waits for the account probe. On probe failure
// the failed client is returned alongside the error.
func Dial(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, *Account, error) {
	c := NewClient(ctx, apiKey, opts...)
	acct, err := c.Ready().Await(ctx)
	if err != nil {
		return c, nil, err
	}
	return c, acct, nil
}

// WithTimeout sets the request timeout. It wins over the timeout of a
// client given to WithHTTPClient, whatever the option order.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets a custom HTTP client. Its redirect policy is
// replaced on a copy; the client passed in is not modified.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithScheme sets the URL scheme, "http" or "https".
func WithScheme(scheme string) ClientOption {
	return func(c *Client) {
		c.scheme = scheme
	}
}

// WithHosts overrides the account and market hostnames. Either may carry a
// port.
func WithHosts(accountHost, marketHost string) ClientOption {
	return func(c *Client) {
		if accountHost != "" {
			c.accountHost = accountHost
		}
		if marketHost != "" {
			c.marketHost = marketHost
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// withoutRedirects returns a shallow copy of hc that hands redirects back
// to the caller instead of following them.
func withoutRedirects(hc *http.Client) *http.Client {
	cp := *hc
	cp.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &cp
}

// Ready returns the account probe. It resolves with the account once the
// client is ready and rejects with the probe error otherwise.
func (c *Client) Ready() *Call[*Account] {
	return c.ready
}

// OnReady registers fn to run once the probe settles. On failure fn
// receives a nil client.
func (c *Client) OnReady(fn func(*Client, *Account, error)) {
	c.ready.Done(func(acct *Account, err error) {
		if err != nil {
			fn(nil, nil, err)
			return
		}
		fn(c, acct, nil)
	})
}

// State reports the client's lifecycle state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Level reports the account's API level. It is zero until the client is
// ready and never changes afterwards.
func (c *Client) Level() int {
	return int(c.level.Load())
}

// probe runs the account request that moves the client out of
// StateConstructing.
func (c *Client) probe(ctx context.Context) *Call[*Account] {
	return newCall(func() (*Account, error) {
		acct, err := c.fetchAccount(ctx)
		if err != nil {
			c.probeErr = err
			c.state.Store(int32(StateFailed))
			c.logger.Warn("steamlytics account probe failed", "err", err)
			return nil, err
		}

		c.level.Store(int32(acct.APIPlan))
		c.state.Store(int32(StateReady))
		c.logger.Info("steamlytics client ready",
			"api_plan", acct.APIPlan,
			"plan", PlanName(acct.APIPlan),
			"calls_today", acct.CallsToday,
		)
		return acct, nil
	}, nil)
}

// usable fails fast unless the client is ready.
func (c *Client) usable() error {
	switch c.State() {
	case StateReady:
		return nil
	case StateFailed:
		return &ClientFailedError{Cause: c.probeErr}
	default:
		return ErrNotReady
	}
}

// require checks readiness and, for gated operations, the API level.
func (c *Client) require(op string, level int) error {
	if err := c.usable(); err != nil {
		return err
	}
	if have := c.Level(); have < level {
		return &CapabilityError{Operation: op, Required: level, Level: have}
	}
	return nil
}
