package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/ingrid-backend/internal/config"
)

const applicationName = "ingrid"

var errInvalidDSN = errors.New("invalid database DSN")

// NewPool opens a pool from DatabaseConfig and pings it before returning.
// Sessions run in UTC so timestamps compare the same way in SQL and Go.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidDSN, err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = time.Minute

	params := poolCfg.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = applicationName
	}
	params["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Connect calls NewPool until it succeeds, retry stops, or ctx ends. An
// unparsable DSN fails at once. notify, if set, sees each failed attempt.
func Connect(ctx context.Context, cfg config.DatabaseConfig, retry backoff.BackOff, notify backoff.Notify) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	op := func() error {
		p, err := NewPool(ctx, cfg)
		if errors.Is(err, errInvalidDSN) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		pool = p
		return nil
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(retry, ctx), notify); err != nil {
		return nil, err
	}
	return pool, nil
}
