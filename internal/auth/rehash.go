// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// RehashReport summarizes a Rehasher run.
type RehashReport struct {
	Scanned   int
	Plaintext int
	Rewritten int
	Skipped   int
}

// Rehasher rewrites legacy plaintext credentials as salted hashes.
type Rehasher struct {
	admin  CredentialAdmin
	hasher CredentialHasher
	logger *slog.Logger
}

// NewRehasher creates a Rehasher that writes hashes produced by hasher.
func NewRehasher(admin CredentialAdmin, hasher CredentialHasher, logger *slog.Logger) (*Rehasher, error) {
	if admin == nil {
		return nil, oops.Errorf("credential admin is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("credential hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Rehasher{admin: admin, hasher: hasher, logger: logger}, nil
}

// Run hashes every plaintext credential in the store. With dryRun set it only
// counts them. Rows with an empty plaintext credential cannot be hashed and
// are skipped.
func (r *Rehasher) Run(ctx context.Context, dryRun bool) (RehashReport, error) {
	var report RehashReport

	users, err := r.admin.List(ctx)
	if err != nil {
		return report, oops.Code("REHASH_FAILED").With("operation", "list users").Wrap(err)
	}

	for _, u := range users {
		report.Scanned++
		cred := ParseCredential(u.Credential)
		if cred.IsHashed() {
			continue
		}
		report.Plaintext++

		if u.Credential == "" {
			r.logger.Warn("skipping user with empty credential", "user_id", u.ID, "username", u.Username)
			report.Skipped++
			continue
		}
		if dryRun {
			continue
		}

		hashed, err := r.hasher.Hash(u.Credential)
		if err != nil {
			return report, oops.Code("REHASH_FAILED").
				With("operation", "hash credential").
				With("user_id", u.ID).
				Wrap(err)
		}
		if err := r.admin.UpdateCredential(ctx, u.ID, hashed); err != nil {
			return report, oops.Code("REHASH_FAILED").
				With("operation", "update credential").
				With("user_id", u.ID).
				Wrap(err)
		}
		report.Rewritten++
		r.logger.Info("credential rehashed",
			"user_id", u.ID,
			"username", u.Username,
			"scheme", string(r.hasher.Scheme()))
	}

	return report, nil
}
