// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tienda/authcore/internal/auth"
)

// NewHashPasswordCmd creates the hash-password subcommand.
func NewHashPasswordCmd() *cobra.Command {
	var scheme string

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from stdin",
		Long: `Read one password line from stdin and print its encoded hash, ready to be
stored as a user credential. The password is never accepted as an argument.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHashPassword(cmd, scheme)
		},
	}

	cmd.Flags().StringVar(&scheme, "scheme", string(auth.SchemeBcrypt), "hash scheme (bcrypt, argon2id)")

	return cmd
}

func runHashPassword(cmd *cobra.Command, scheme string) error {
	hasher, err := auth.NewHasher(auth.Scheme(scheme))
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return oops.Code("PASSWORD_READ_FAILED").Wrap(err)
	}
	password := strings.TrimRight(line, "\r\n")

	encoded, err := hasher.Hash(password)
	if err != nil {
		return err
	}
	// stdout, so the hash can be piped.
	_, err = fmt.Fprintln(cmd.OutOrStdout(), encoded)
	return err
}
