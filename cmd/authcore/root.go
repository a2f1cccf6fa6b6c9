// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tienda/authcore/internal/config"
	"github.com/tienda/authcore/internal/logging"
	"github.com/tienda/authcore/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the authcore CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmdWithDeps(nil)
}

func newRootCmdWithDeps(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "authcore",
		Short: "authcore - credential verification and session tokens",
		Long: `authcore verifies username/password pairs against a PostgreSQL or SQLite
credential store and issues signed, 24-hour session tokens.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/authcore/authcore.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd(deps))
	cmd.AddCommand(NewMigrateCmd(deps))
	cmd.AddCommand(NewCheckCmd(deps))
	cmd.AddCommand(NewHashPasswordCmd())
	cmd.AddCommand(NewSeedCmd(deps))
	cmd.AddCommand(NewRehashCmd(deps))

	return cmd
}

// loadConfig reads and validates configuration for cmd. Without --config,
// authcore.yaml in the XDG config dir is used when present.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := configFile
	if path == "" {
		path = xdg.DefaultConfigFile()
	}
	cfg, err := config.Load(config.LoadOptions{
		Path:  path,
		Flags: cmd.Flags(),
	})
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg and installs it as the
// slog default. Log output goes to the command's stderr.
func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	// Validate already rejected unparseable levels.
	level, _ := logging.ParseLevel(cfg.Log.Level) //nolint:errcheck // validated
	return logging.SetDefault(logging.Options{
		Service: "authcore",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
	})
}
