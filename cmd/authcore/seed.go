// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tienda/authcore/internal/auth"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	file    string
	scheme  string
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd(deps *Deps) *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create users from a YAML fixture",
		Long: `Creates every user listed in a YAML fixture, storing hashed passwords.
This command is idempotent - existing users are left untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, deps, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "", "YAML fixture with a users list (required)")
	cmd.Flags().StringVar(&cfg.scheme, "scheme", string(auth.SchemeBcrypt), "hash scheme (bcrypt, argon2id)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	_ = cmd.MarkFlagRequired("file") //nolint:errcheck // flag defined above

	return cmd
}

func runSeed(cmd *cobra.Command, deps *Deps, scfg *seedConfig) error {
	hasher, err := auth.NewHasher(auth.Scheme(scfg.scheme))
	if err != nil {
		return err
	}

	fixture, err := auth.LoadSeedFile(scfg.file)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), scfg.timeout)
	defer cancel()

	users, closeStore, err := deps.StoreOpener(ctx, cfg.Store, logger)
	if err != nil {
		return oops.With("operation", "open credential store").Wrap(err)
	}
	defer closeStore()

	report, err := auth.Seed(ctx, users, hasher, fixture, logger)
	if err != nil {
		return err
	}

	cmd.Printf("Seeded users: %d created, %d already present\n", report.Created, report.Skipped)
	return nil
}
