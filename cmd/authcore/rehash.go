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

const defaultRehashTimeout = 10 * time.Minute

type rehashConfig struct {
	dryRun  bool
	scheme  string
	timeout time.Duration
}

// NewRehashCmd creates the rehash subcommand.
func NewRehashCmd(deps *Deps) *cobra.Command {
	cfg := &rehashConfig{}

	cmd := &cobra.Command{
		Use:   "rehash",
		Short: "Rewrite legacy plaintext credentials as salted hashes",
		Long: `Scan every user and replace plaintext credentials with salted hashes,
completing the migration away from plaintext storage. Already hashed rows are
left untouched, so the command can be rerun safely.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRehash(cmd, deps, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.dryRun, "dry-run", false, "count plaintext credentials without rewriting them")
	cmd.Flags().StringVar(&cfg.scheme, "scheme", string(auth.SchemeBcrypt), "hash scheme (bcrypt, argon2id)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultRehashTimeout, "timeout for the whole run")

	return cmd
}

func runRehash(cmd *cobra.Command, deps *Deps, rcfg *rehashConfig) error {
	hasher, err := auth.NewHasher(auth.Scheme(rcfg.scheme))
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), rcfg.timeout)
	defer cancel()

	users, closeStore, err := deps.StoreOpener(ctx, cfg.Store, logger)
	if err != nil {
		return oops.With("operation", "open credential store").Wrap(err)
	}
	defer closeStore()

	rehasher, err := auth.NewRehasher(users, hasher, logger)
	if err != nil {
		return err
	}
	report, err := rehasher.Run(ctx, rcfg.dryRun)
	if err != nil {
		return err
	}

	if rcfg.dryRun {
		cmd.Printf("Dry run: %d users scanned, %d plaintext credentials found\n", report.Scanned, report.Plaintext)
		return nil
	}
	cmd.Printf("Rehashed %d of %d plaintext credentials (%d skipped, %d users scanned)\n",
		report.Rewritten, report.Plaintext, report.Skipped, report.Scanned)
	return nil
}
