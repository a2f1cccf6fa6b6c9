// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

// Package store connects to the PostgreSQL credential store and manages its schema.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Pool defaults for a small, read-mostly workload.
const (
	DefaultMaxConns          = 10
	defaultMinConns          = 1
	defaultMaxConnLifetime   = 30 * time.Minute
	defaultMaxConnIdleTime   = 5 * time.Minute
	defaultHealthCheckPeriod = 30 * time.Second
	DefaultConnectTimeout    = 15 * time.Second
)

// ConnectOptions tunes Connect.
type ConnectOptions struct {
	// MaxConns caps the pool size. Zero uses DefaultMaxConns.
	MaxConns int32
	// Timeout bounds the whole connect-and-ping sequence, retries included.
	// Zero uses DefaultConnectTimeout.
	Timeout time.Duration
	// Logger receives one warning per failed attempt. Nil uses slog.Default().
	Logger *slog.Logger
}

// PoolConfig parses dsn and applies the pool defaults.
func PoolConfig(dsn string, maxConns int32) (*pgxpool.Config, error) {
	if dsn == "" {
		return nil, oops.Code("STORE_CONFIG_INVALID").Errorf("database dsn is empty")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, oops.Code("STORE_CONFIG_INVALID").With("operation", "parse dsn").Wrap(err)
	}

	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}
	config.MaxConns = maxConns
	config.MinConns = min(int32(defaultMinConns), maxConns)
	config.MaxConnLifetime = defaultMaxConnLifetime
	config.MaxConnIdleTime = defaultMaxConnIdleTime
	config.HealthCheckPeriod = defaultHealthCheckPeriod
	return config, nil
}

// Connect opens a pgx pool and pings it, backing off exponentially between
// attempts until opts.Timeout elapses. Retrying happens here, at startup,
// and nowhere on the request path.
func Connect(ctx context.Context, dsn string, opts ConnectOptions) (*pgxpool.Pool, error) {
	config, err := PoolConfig(dsn, opts.MaxConns)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := retry.WithCappedDuration(2*time.Second, retry.NewExponential(100*time.Millisecond))

	var pool *pgxpool.Pool
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		p, err := pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			// Config errors will not fix themselves.
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			logger.Warn("database not reachable yet", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("host", config.ConnConfig.Host).
			With("database", config.ConnConfig.Database).
			With("attempts", attempt).
			Wrap(err)
	}
	return pool, nil
}
