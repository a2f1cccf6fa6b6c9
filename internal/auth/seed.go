// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// SeedUser is one user entry in a seed fixture.
type SeedUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SeedFile is a YAML fixture of users to provision:
//
//	users:
//	  - username: alice
//	    password: secret123
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

// SeedReport summarizes a Seed run.
type SeedReport struct {
	Created int
	Skipped int
}

// LoadSeedFile reads a seed fixture from disk.
func LoadSeedFile(path string) (*SeedFile, error) {
	f, err := os.Open(path) //nolint:gosec // path is an operator-supplied fixture
	if err != nil {
		return nil, oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}
	defer f.Close() //nolint:errcheck // read-only

	seed, err := ParseSeedFile(f)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return seed, nil
}

// ParseSeedFile decodes a seed fixture. Unknown fields are rejected.
func ParseSeedFile(r io.Reader) (*SeedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed SeedFile
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, oops.Code("SEED_PARSE_FAILED").Wrap(err)
	}
	for i, u := range seed.Users {
		if u.Username == "" || u.Password == "" {
			return nil, oops.Code("SEED_PARSE_FAILED").
				With("index", i).
				Errorf("seed user %d needs both username and password", i)
		}
	}
	return &seed, nil
}

// Seed creates every user in the fixture that does not already exist,
// storing passwords hashed with hasher. Existing users are left untouched.
func Seed(ctx context.Context, store UserStore, hasher CredentialHasher, seed *SeedFile, logger *slog.Logger) (SeedReport, error) {
	var report SeedReport
	if logger == nil {
		logger = slog.Default()
	}

	for _, u := range seed.Users {
		_, err := store.GetByUsername(ctx, u.Username)
		if err == nil {
			report.Skipped++
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return report, oops.Code("SEED_FAILED").With("username", u.Username).Wrap(err)
		}

		hashed, err := hasher.Hash(u.Password)
		if err != nil {
			return report, oops.Code("SEED_FAILED").With("username", u.Username).Wrap(err)
		}

		if _, err := store.Create(ctx, u.Username, hashed); err != nil {
			if errors.Is(err, ErrUserExists) {
				report.Skipped++
				continue
			}
			return report, oops.Code("SEED_FAILED").With("username", u.Username).Wrap(err)
		}
		report.Created++
		logger.Info("seeded user", "username", u.Username, "scheme", string(hasher.Scheme()))
	}

	return report, nil
}
