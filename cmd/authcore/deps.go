// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/tienda/authcore/internal/auth"
	"github.com/tienda/authcore/internal/config"
	"github.com/tienda/authcore/internal/store"
)

// Migrator is the schema tooling the migrate command drives.
// *store.Migrator implements it.
type Migrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	Pending() ([]uint, error)
	Close() error
}

// Deps contains injectable dependencies for the subcommands.
// All fields with nil values use their default implementations.
type Deps struct {
	// StoreOpener connects to the configured credential store. The returned
	// func releases it.
	// Default: openStore
	StoreOpener func(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (auth.UserStore, func(), error)

	// MigratorFactory creates a PostgreSQL schema migrator whose connection
	// and lock waits are bounded by timeout.
	// Default: store.NewMigratorWithTimeout
	MigratorFactory func(databaseURL string, timeout time.Duration) (Migrator, error)

	// OnReady is called by serve once both listeners are bound.
	// Default: no-op
	OnReady func(apiAddr, metricsAddr string)
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.StoreOpener == nil {
		out.StoreOpener = openStore
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string, timeout time.Duration) (Migrator, error) {
			return store.NewMigratorWithTimeout(databaseURL, timeout)
		}
	}
	if out.OnReady == nil {
		out.OnReady = func(string, string) {}
	}
	return &out
}
