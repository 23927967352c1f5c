package config

import (
	"os"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultLogLevel          = "info"
	DefaultAPIScheme         = "http"
	DefaultAccountHost       = "api.steamlytics.xyz"
	DefaultMarketHost        = "api.csgo.steamlytics.xyz"
	DefaultAPITimeout        = 30 * time.Second
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultReconcileInterval = 6 * time.Hour
	DefaultSchedule          = "@every 15m"
	DefaultPollConcurrency   = 4
	DefaultPollTimeout       = 2 * time.Minute
	DefaultPopularLimit      = 100
	DefaultBatchSize         = 1000
	DefaultFlushInterval     = 1 * time.Second
	DefaultMetricsPort       = 9090
)

// APIKeyEnv is consulted when api.key is empty.
const APIKeyEnv = "STEAMLYTICS_API_KEY"

func (c *CollectorConfig) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	// API defaults
	if c.API.Key == "" {
		c.API.Key = os.Getenv(APIKeyEnv)
	}
	if c.API.Scheme == "" {
		c.API.Scheme = DefaultAPIScheme
	}
	if c.API.AccountHost == "" {
		c.API.AccountHost = DefaultAccountHost
	}
	if c.API.MarketHost == "" {
		c.API.MarketHost = DefaultMarketHost
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	applyDBDefaults(&c.Database.Postgres)

	if c.Catalog.ReconcileInterval == 0 {
		c.Catalog.ReconcileInterval = DefaultReconcileInterval
	}

	// Poller defaults
	if c.Poller.Schedule == "" {
		c.Poller.Schedule = DefaultSchedule
	}
	if c.Poller.Concurrency == 0 {
		c.Poller.Concurrency = DefaultPollConcurrency
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}
	if c.Poller.PopularLimit == 0 {
		c.Poller.PopularLimit = DefaultPopularLimit
	}

	// Writers defaults
	if c.Writers.BatchSize == 0 {
		c.Writers.BatchSize = DefaultBatchSize
	}
	if c.Writers.FlushInterval == 0 {
		c.Writers.FlushInterval = DefaultFlushInterval
	}

	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
