// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

const defaultCheckTimeout = 10 * time.Second

// NewCheckCmd creates the check subcommand.
func NewCheckCmd(deps *Deps) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify configuration and credential store reachability",
		Long: `Validate the serve configuration, including the signing secret, then run
one reachability query against the credential store. Exits non-zero on failure.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, deps, timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", defaultCheckTimeout, "timeout for the whole check")

	return cmd
}

func runCheck(cmd *cobra.Command, deps *Deps, timeout time.Duration) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	secret, err := cfg.SigningSecret()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	users, closeStore, err := deps.StoreOpener(ctx, cfg.Store, logger)
	if err != nil {
		return oops.With("operation", "open credential store").Wrap(err)
	}
	defer closeStore()

	svc, err := buildService(users, secret, logger)
	if err != nil {
		return err
	}
	if err := svc.CheckStoreReachable(ctx); err != nil {
		return err
	}

	cmd.Printf("credential store reachable (%s)\n", cfg.Store.Driver)
	return nil
}
