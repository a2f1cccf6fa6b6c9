// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package main

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/samber/oops"

	"github.com/tienda/authcore/internal/auth"
	"github.com/tienda/authcore/internal/auth/postgres"
	"github.com/tienda/authcore/internal/auth/sqlite"
	"github.com/tienda/authcore/internal/config"
	"github.com/tienda/authcore/internal/store"
	"github.com/tienda/authcore/internal/xdg"
)

// openStore connects to the configured credential store. SQLite stores have
// their schema applied on open; PostgreSQL schemas are managed by migrate.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (auth.UserStore, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := store.Connect(ctx, cfg.DSN, store.ConnectOptions{
			MaxConns: cfg.MaxConns,
			Timeout:  cfg.ConnectTimeout,
			Logger:   logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewUserRepository(pool), pool.Close, nil

	case config.DriverSQLite:
		if err := xdg.EnsureDir(filepath.Dir(cfg.DSN)); err != nil {
			return nil, nil, err
		}
		repo, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close() //nolint:errcheck // migrate error takes precedence
			return nil, nil, err
		}
		closer := func() {
			if err := repo.Close(); err != nil {
				logger.Warn("error closing sqlite store", "error", err)
			}
		}
		return repo, closer, nil

	default:
		return nil, nil, oops.Code("CONFIG_INVALID").
			With("driver", cfg.Driver).
			Errorf("unsupported store driver %q", cfg.Driver)
	}
}

// buildService wires the auth pipeline around users.
func buildService(users auth.UserRepository, secret string, logger *slog.Logger) (*auth.Service, error) {
	key, err := auth.NewSigningKey(secret)
	if err != nil {
		return nil, err
	}
	issuer, err := auth.NewTokenIssuer(key, nil)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenVerifier(key, nil, logger)
	if err != nil {
		return nil, err
	}
	return auth.NewAuthServiceWithLogger(users, auth.NewPasswordVerifier(logger), issuer, tokens, logger)
}
