package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/moznion/go-optional"
	"github.com/rickgao/steamlytics/api"
	"github.com/rickgao/steamlytics/internal/config"
	"github.com/rickgao/steamlytics/internal/version"
	"github.com/shopspring/decimal"
)

// options holds the parsed command line.
type options struct {
	key         string
	op          string
	item        string
	currency    string
	from        string
	to          string
	on          string
	limit       int
	base        string
	currencies  string
	date        string
	amount      string
	src         string
	dst         string
	scheme      string
	accountHost string
	marketHost  string
	timeout     time.Duration
	verbose     bool
	version     bool
}

type operation func(ctx context.Context, c *api.Client, o *options) (any, error)

var operations = map[string]operation{
	"account":    runAccount,
	"pricelist":  runPricelist,
	"prices":     runPrices,
	"items":      runItems,
	"popular":    runPopular,
	"currencies": runCurrencies,
	"rates":      runRates,
	"historical": runHistorical,
	"convert":    runConvert,
}

func operationNames() string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

func parseFlags(args []string, stderr io.Writer, getenv func(string) string) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("steamlytics", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.key, "key", "", "API key (default $"+config.APIKeyEnv+")")
	fs.StringVar(&o.op, "op", "", "operation: "+operationNames())
	fs.StringVar(&o.item, "item", "", "market hash name (prices)")
	fs.StringVar(&o.currency, "currency", "", "price currency id (pricelist, prices)")
	fs.StringVar(&o.from, "from", "", "range start: unix seconds, YYYY-MM-DD or RFC 3339 (prices)")
	fs.StringVar(&o.to, "to", "", "range end (prices)")
	fs.StringVar(&o.on, "on", "", "point in time (prices)")
	fs.IntVar(&o.limit, "limit", 0, "maximum results (popular)")
	fs.StringVar(&o.base, "base", "", "base currency (rates, historical)")
	fs.StringVar(&o.currencies, "currencies", "", "comma-separated currency filter (rates, historical)")
	fs.StringVar(&o.date, "date", "", "day formatted YYYY-MM-DD (historical)")
	fs.StringVar(&o.amount, "amount", "", "amount to convert (convert)")
	fs.StringVar(&o.src, "src", "", "source currency (convert)")
	fs.StringVar(&o.dst, "dst", "", "target currency (convert)")
	fs.StringVar(&o.scheme, "scheme", api.DefaultScheme, "URL scheme, http or https")
	fs.StringVar(&o.accountHost, "account-host", api.DefaultAccountHost, "account API host")
	fs.StringVar(&o.marketHost, "market-host", api.DefaultMarketHost, "market API host")
	fs.DurationVar(&o.timeout, "timeout", api.DefaultTimeout, "request timeout")
	fs.BoolVar(&o.verbose, "v", false, "debug logging to stderr")
	fs.BoolVar(&o.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.version {
		return o, nil
	}

	if o.key == "" {
		o.key = getenv(config.APIKeyEnv)
	}
	if o.key == "" {
		return nil, fmt.Errorf("no API key: pass -key or set %s", config.APIKeyEnv)
	}
	if _, ok := operations[o.op]; !ok {
		return nil, fmt.Errorf("unknown -op %q, want one of %s", o.op, operationNames())
	}
	return o, nil
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	o, err := parseFlags(args, stderr, getenv)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, "steamlytics:", err)
		}
		return 1
	}
	if o.version {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	client, _, err := api.Dial(ctx, o.key,
		api.WithScheme(o.scheme),
		api.WithHosts(o.accountHost, o.marketHost),
		api.WithTimeout(o.timeout),
		api.WithLogger(logger),
		api.WithUserAgent(version.UserAgent()),
	)
	if err != nil {
		fmt.Fprintln(stderr, "steamlytics:", err)
		return 1
	}

	result, err := operations[o.op](ctx, client, o)
	if err != nil {
		fmt.Fprintln(stderr, "steamlytics:", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(stderr, "steamlytics: encode result:", err)
		return 1
	}
	return 0
}

func runAccount(ctx context.Context, c *api.Client, _ *options) (any, error) {
	call, err := c.Account(ctx)
	if err != nil {
		return nil, err
	}
	return call.Await(ctx)
}

func runPricelist(ctx context.Context, c *api.Client, o *options) (any, error) {
	call, err := c.Pricelist(ctx, api.PricelistOptions{Currency: currencyOpt(o.currency)})
	if err != nil {
		return nil, err
	}
	return call.Await(ctx)
}

func runPrices(ctx context.Context, c *api.Client, o *options) (any, error) {
	opts := api.PriceOptions{Currency: currencyOpt(o.currency)}
	var err error
	if opts.From, err = timeOpt("from", o.from); err != nil {
		return nil, err
	}
	if opts.To, err = timeOpt("to", o.to); err != nil {
		return nil, err
	}
	if opts.On, err = timeOpt("on", o.on); err != nil {
		return nil, err
	}
	call, err := c.Prices(ctx, o.item, opts)
	if err != nil {
		return nil, err
	}
	return call.Await(ctx)
}

func runItems(ctx context.Context, c *api.Client, _ *options) (any, error) {
	call, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	return call.Await(ctx)
}

func runPopular(ctx context.Context, c *api.Client, o *options) (any, error) {
	call, err := c.Popular(ctx, api.PopularOptions{Limit: o.limit})
	if err != nil {
		return nil, err
	}
	return call.Await(ctx)
}

func runCurrencies(ctx context.Context, c *api.Client, _ *options) (any, error) {
	call, err := c.Currencies(ctx)
	if err != nil {
		return nil, err
	}
	return call.Await(ctx)
}

func runRates(ctx context.Context, c *api.Client, o *options) (any, error) {
	call, err := c.LatestRates(ctx, ratesOpts(o))
	if err != nil {
		return nil, err
	}
	return call.Await(ctx)
}

func runHistorical(ctx context.Context, c *api.Client, o *options) (any, error) {
	call, err := c.HistoricalRates(ctx, o.date, ratesOpts(o))
	if err != nil {
		return nil, err
	}
	return call.Await(ctx)
}

func runConvert(ctx context.Context, c *api.Client, o *options) (any, error) {
	amount, err := decimal.NewFromString(o.amount)
	if err != nil {
		return nil, fmt.Errorf("-amount %q: %w", o.amount, err)
	}
	call, err := c.Convert(ctx, amount, api.CurrencyID(o.src), api.CurrencyID(o.dst))
	if err != nil {
		return nil, err
	}
	return call.Await(ctx)
}

func currencyOpt(id string) optional.Option[api.CurrencyID] {
	if id == "" {
		return optional.None[api.CurrencyID]()
	}
	return optional.Some(api.CurrencyID(id))
}

func ratesOpts(o *options) api.RatesOptions {
	opts := api.RatesOptions{Base: currencyOpt(o.base)}
	if o.currencies != "" {
		for _, id := range strings.Split(o.currencies, ",") {
			opts.Currencies = append(opts.Currencies, api.CurrencyID(strings.TrimSpace(id)))
		}
	}
	return opts
}

// timeOpt parses unix seconds, a YYYY-MM-DD day (UTC) or an RFC 3339
// timestamp.
func timeOpt(flagName, v string) (optional.Option[time.Time], error) {
	if v == "" {
		return optional.None[time.Time](), nil
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return optional.Some(time.Unix(secs, 0)), nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return optional.Some(t), nil
		}
	}
	return nil, fmt.Errorf("-%s %q: want unix seconds, YYYY-MM-DD or RFC 3339", flagName, v)
}
