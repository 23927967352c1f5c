package config

import "time"

// CollectorConfig is the root configuration for a collector instance.
type CollectorConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Log      LogConfig      `yaml:"log"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Poller   PollerConfig   `yaml:"poller"`
	Writers  WritersConfig  `yaml:"writers"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// InstanceConfig identifies this collector.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// LogConfig selects the slog level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// APIConfig holds Steamlytics client settings.
type APIConfig struct {
	Key         string        `yaml:"key"`
	Scheme      string        `yaml:"scheme"`
	AccountHost string        `yaml:"account_host"`
	MarketHost  string        `yaml:"market_host"`
	Timeout     time.Duration `yaml:"timeout"`
}

// DatabaseConfig holds the PostgreSQL connection snapshots are written to.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CatalogConfig holds item catalog registry settings.
type CatalogConfig struct {
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
}

// PollerConfig holds snapshot poller settings.
type PollerConfig struct {
	// Schedule is a standard cron expression or descriptor like "@every 15m".
	Schedule    string        `yaml:"schedule"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`

	PopularLimit int      `yaml:"popular_limit"`
	TrackedItems []string `yaml:"tracked_items"`

	// Currency is sent with price requests; it needs the pro plan.
	Currency       string   `yaml:"currency"`
	Base           string   `yaml:"base"`
	RateCurrencies []string `yaml:"rate_currencies"`
}

// WritersConfig holds batch writer settings.
type WritersConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// MetricsConfig holds the health endpoint settings.
type MetricsConfig struct {
	Port int `yaml:"port"`
}
