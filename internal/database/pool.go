package database

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rickgao/steamlytics/internal/config"
)

// ApplicationName is reported to PostgreSQL for every collector connection.
const ApplicationName = "steamlytics-collector"

// ConnURL renders cfg as a postgres:// URL. Credentials are escaped as URL
// userinfo; use Redacted() before logging it.
func ConnURL(cfg config.DBConfig) *url.URL {
	q := url.Values{}
	q.Set("sslmode", cmp.Or(cfg.SSLMode, config.DefaultDBSSLMode))
	q.Set("application_name", ApplicationName)

	return &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Name,
		RawQuery: q.Encode(),
	}
}

// Open connects a pool sized from cfg, pings it and applies Schema. The
// pool is closed again if any step fails.
func Open(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	u := ConnURL(cfg)

	poolCfg, err := pgxpool.ParseConfig(u.String())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", u.Redacted(), err)
	}
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	logger.Info("connecting to database", "url", u.Redacted(), "max_conns", cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s: %w", u.Redacted(), err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("database ready", "tables", len(Schema))
	return pool, nil
}
