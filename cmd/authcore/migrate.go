// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tienda/authcore/internal/config"
)

const defaultMigrateTimeout = time.Minute

type migrateConfig struct {
	yes     bool
	timeout time.Duration
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd(deps *Deps) *cobra.Command {
	cfg := &migrateConfig{}

	cmd := &cobra.Command{
		Use:   "migrate [up|down|version]",
		Short: "Manage the credential store schema",
		Long: `Apply (up, the default), roll back (down) or report (version) the users
schema. PostgreSQL uses versioned migrations; SQLite applies its embedded DDL.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			return runMigrate(cmd, deps, cfg, action)
		},
	}

	cmd.Flags().BoolVar(&cfg.yes, "yes", false, "confirm a destructive down migration")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultMigrateTimeout,
		"bound on connecting and waiting for the schema lock (PostgreSQL) or on applying the schema (SQLite)")

	return cmd
}

func runMigrate(cmd *cobra.Command, deps *Deps, mcfg *migrateConfig, action string) error {
	switch action {
	case "up", "down", "version":
	default:
		return oops.Code("MIGRATE_ACTION_INVALID").
			With("action", action).
			Errorf("unknown migrate action %q: use up, down or version", action)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	if cfg.Store.Driver == config.DriverSQLite {
		return runSQLiteMigrate(cmd, deps, cfg, mcfg, action, logger)
	}

	if action == "down" && !mcfg.yes {
		return oops.Code("MIGRATE_CONFIRM_REQUIRED").Errorf("down drops the users table; pass --yes to confirm")
	}

	migrator, err := deps.MigratorFactory(cfg.Store.DSN, mcfg.timeout)
	if err != nil {
		return oops.With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("error closing migrator", "error", closeErr)
		}
	}()

	switch action {
	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		pending, err := migrator.Pending()
		if err != nil {
			return err
		}
		cmd.Printf("schema version %d", version)
		if dirty {
			cmd.Print(" (dirty)")
		}
		cmd.Printf(", %d pending\n", len(pending))
		return nil

	case "down":
		cmd.Println("Rolling back migrations...")
		if err := migrator.Down(); err != nil {
			return err
		}
		cmd.Println("Schema rolled back")
		return nil

	default:
		pending, err := migrator.Pending()
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			cmd.Println("Schema is up to date")
			return nil
		}
		cmd.Printf("Applying %d migration(s)...\n", len(pending))
		if err := migrator.Up(); err != nil {
			return err
		}
		cmd.Println("Migrations completed successfully")
		return nil
	}
}

func runSQLiteMigrate(cmd *cobra.Command, deps *Deps, cfg config.Config, mcfg *migrateConfig, action string, logger *slog.Logger) error {
	if action != "up" {
		return oops.Code("MIGRATE_UNSUPPORTED").
			With("driver", cfg.Store.Driver).
			With("action", action).
			Errorf("sqlite stores only support migrate up")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), mcfg.timeout)
	defer cancel()

	// Opening a sqlite store applies its schema.
	_, closeStore, err := deps.StoreOpener(ctx, cfg.Store, logger)
	if err != nil {
		return oops.With("operation", "apply sqlite schema").Wrap(err)
	}
	closeStore()

	cmd.Println("SQLite schema applied")
	return nil
}
