package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-collector
api:
  key: abc123
  scheme: https
  market_host: market.local:8080
database:
  postgres:
    host: localhost
    port: 5432
    name: steamlytics
    user: testuser
    password: testpass
poller:
  schedule: "*/5 * * * *"
  tracked_items:
    - "AK-47 | Redline (Field-Tested)"
    - "AWP | Asiimov (Field-Tested)"
  rate_currencies: [EUR, GBP]
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-collector" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-collector")
	}
	if cfg.API.Scheme != "https" {
		t.Errorf("API.Scheme = %q, want %q", cfg.API.Scheme, "https")
	}
	if cfg.API.MarketHost != "market.local:8080" {
		t.Errorf("API.MarketHost = %q, want %q", cfg.API.MarketHost, "market.local:8080")
	}
	if len(cfg.Poller.TrackedItems) != 2 || cfg.Poller.TrackedItems[0] != "AK-47 | Redline (Field-Tested)" {
		t.Errorf("Poller.TrackedItems = %v", cfg.Poller.TrackedItems)
	}
	if len(cfg.Poller.RateCurrencies) != 2 {
		t.Errorf("Poller.RateCurrencies = %v, want 2 entries", cfg.Poller.RateCurrencies)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")
	t.Setenv("TEST_API_KEY", "k3y")

	yaml := `
instance:
  id: test-collector
api:
  key: ${TEST_API_KEY}
database:
  postgres:
    host: localhost
    name: steamlytics
    user: testuser
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Postgres.Password != "secret123" {
		t.Errorf("Database.Postgres.Password = %q, want %q", cfg.Database.Postgres.Password, "secret123")
	}
	if cfg.API.Key != "k3y" {
		t.Errorf("API.Key = %q, want %q", cfg.API.Key, "k3y")
	}
}

func TestLoadEnvFallback(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "")
	t.Setenv("TEST_DB_USER", "from-env")

	yaml := `
instance:
  id: test-collector
database:
  postgres:
    host: ${TEST_DB_HOST:-db.local}
    name: steamlytics
    user: ${TEST_DB_USER:-fallback}
    password: ${TEST_UNSET_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	pg := cfg.Database.Postgres
	if pg.Host != "db.local" {
		t.Errorf("Host = %q, want fallback %q", pg.Host, "db.local")
	}
	if pg.User != "from-env" {
		t.Errorf("User = %q, want %q", pg.User, "from-env")
	}
	if pg.Password != "" {
		t.Errorf("Password = %q, want empty", pg.Password)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	yaml := `
instance:
  id: test-collector
poller:
  shedule: "@every 1m"
`
	path := writeTempFile(t, yaml)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "shedule") {
		t.Errorf("Load() error = %v, want unknown field error", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeTempFile(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Instance.ID != "" {
		t.Errorf("Instance.ID = %q, want empty", cfg.Instance.ID)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.HasPrefix(err.Error(), "read config file:") {
		t.Errorf("Load() error = %v, want read error", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")

	yaml := `
instance:
  id: test-collector
database:
  postgres:
    host: localhost
    name: steamlytics
    user: testuser
    password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.API.Key != "from-env" {
		t.Errorf("API.Key = %q, want value of %s", cfg.API.Key, APIKeyEnv)
	}
	if cfg.API.Scheme != DefaultAPIScheme {
		t.Errorf("API.Scheme = %q, want default %q", cfg.API.Scheme, DefaultAPIScheme)
	}
	if cfg.API.AccountHost != DefaultAccountHost || cfg.API.MarketHost != DefaultMarketHost {
		t.Errorf("API hosts = %q/%q, want defaults", cfg.API.AccountHost, cfg.API.MarketHost)
	}
	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want default %v", cfg.API.Timeout, DefaultAPITimeout)
	}
	if cfg.Database.Postgres.Port != DefaultDBPort {
		t.Errorf("Database.Postgres.Port = %d, want default %d", cfg.Database.Postgres.Port, DefaultDBPort)
	}
	if cfg.Poller.Schedule != DefaultSchedule {
		t.Errorf("Poller.Schedule = %q, want default %q", cfg.Poller.Schedule, DefaultSchedule)
	}
	if cfg.Poller.PopularLimit != DefaultPopularLimit {
		t.Errorf("Poller.PopularLimit = %d, want default %d", cfg.Poller.PopularLimit, DefaultPopularLimit)
	}
	if cfg.Catalog.ReconcileInterval != DefaultReconcileInterval {
		t.Errorf("Catalog.ReconcileInterval = %v, want default %v", cfg.Catalog.ReconcileInterval, DefaultReconcileInterval)
	}
	if cfg.Metrics.Port != DefaultMetricsPort {
		t.Errorf("Metrics.Port = %d, want default %d", cfg.Metrics.Port, DefaultMetricsPort)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadAndValidate(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	yaml := `
instance:
  id: test-collector
database:
  postgres:
    host: localhost
    name: steamlytics
    user: testuser
    password: testpass
`
	path := writeTempFile(t, yaml)

	_, err := LoadAndValidate(path)
	if err == nil || !strings.HasSuffix(err.Error(), ": api.key is required") {
		t.Errorf("LoadAndValidate() error = %v, want missing api.key", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CollectorConfig)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(*CollectorConfig) {},
			wantErr: "",
		},
		{
			name:    "missing instance id",
			mutate:  func(c *CollectorConfig) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "bad log level",
			mutate:  func(c *CollectorConfig) { c.Log.Level = "loud" },
			wantErr: `log.level "loud" is not one of debug, info, warn, error`,
		},
		{
			name:    "bad scheme",
			mutate:  func(c *CollectorConfig) { c.API.Scheme = "ftp" },
			wantErr: `api.scheme must be http or https, got "ftp"`,
		},
		{
			name:    "missing postgres password",
			mutate:  func(c *CollectorConfig) { c.Database.Postgres.Password = "" },
			wantErr: "database.postgres.password is required",
		},
		{
			name:    "min_conns exceeds max_conns",
			mutate:  func(c *CollectorConfig) { c.Database.Postgres.MinConns = 20 },
			wantErr: "database.postgres.min_conns (20) cannot exceed max_conns (10)",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *CollectorConfig) { c.Poller.Concurrency = 0 },
			wantErr: "poller.concurrency must be >= 1",
		},
		{
			name:    "blank tracked item",
			mutate:  func(c *CollectorConfig) { c.Poller.TrackedItems = []string{"ok", "  "} },
			wantErr: "poller.tracked_items[1] is empty",
		},
		{
			name:    "comma in rate currency",
			mutate:  func(c *CollectorConfig) { c.Poller.RateCurrencies = []string{"EUR,GBP"} },
			wantErr: `poller.rate_currencies[0] "EUR,GBP" is invalid`,
		},
		{
			name:    "metrics port out of range",
			mutate:  func(c *CollectorConfig) { c.Metrics.Port = 70000 },
			wantErr: "metrics.port must be between 1 and 65535, got 70000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	for _, schedule := range []string{"@every 15m", "@hourly", "*/10 * * * *", "0 3 * * 1-5"} {
		cfg := validConfig()
		cfg.Poller.Schedule = schedule
		if err := cfg.Validate(); err != nil {
			t.Errorf("schedule %q: unexpected error %v", schedule, err)
		}
	}

	for _, schedule := range []string{"every 15m", "* * *", "@every"} {
		cfg := validConfig()
		cfg.Poller.Schedule = schedule
		err := cfg.Validate()
		if err == nil || !strings.HasPrefix(err.Error(), "poller.schedule") {
			t.Errorf("schedule %q: error = %v, want poller.schedule error", schedule, err)
		}
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range tests {
		got, err := LogConfig{Level: name}.SlogLevel()
		if err != nil {
			t.Errorf("SlogLevel(%q) error: %v", name, err)
		}
		if got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func validConfig() *CollectorConfig {
	return &CollectorConfig{
		Instance: InstanceConfig{ID: "test"},
		Log:      LogConfig{Level: "info"},
		API: APIConfig{
			Key:         "k3y",
			Scheme:      "http",
			AccountHost: DefaultAccountHost,
			MarketHost:  DefaultMarketHost,
			Timeout:     30 * time.Second,
		},
		Database: DatabaseConfig{
			Postgres: DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 10, MinConns: 2},
		},
		Catalog: CatalogConfig{ReconcileInterval: time.Hour},
		Poller: PollerConfig{
			Schedule:     "@every 15m",
			Concurrency:  4,
			Timeout:      time.Minute,
			PopularLimit: 50,
		},
		Writers: WritersConfig{
			BatchSize:     1000,
			FlushInterval: time.Second,
		},
		Metrics: MetricsConfig{Port: 9090},
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
