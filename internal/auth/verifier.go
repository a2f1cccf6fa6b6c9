// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import (
	"crypto/subtle"
	"log/slog"
)

// PasswordVerifier decides whether a plaintext password matches a stored
// Credential. It never returns an error: an unreadable hash is a mismatch.
type PasswordVerifier struct {
	hashers map[Scheme]CredentialHasher
	logger  *slog.Logger
}

// NewPasswordVerifier creates a verifier that understands bcrypt and argon2id
// hashes as well as legacy plaintext credentials.
func NewPasswordVerifier(logger *slog.Logger) *PasswordVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	v := &PasswordVerifier{
		hashers: make(map[Scheme]CredentialHasher, 2),
		logger:  logger,
	}
	for _, scheme := range []Scheme{SchemeBcrypt, SchemeArgon2id} {
		h, _ := NewHasher(scheme) //nolint:errcheck // both schemes are known
		v.hashers[scheme] = h
	}
	return v
}

// Verify reports whether password matches the stored credential.
// Hashed credentials are checked in constant time by their scheme's hasher.
// Plaintext credentials are compared for exact equality.
func (v *PasswordVerifier) Verify(stored Credential, password string) bool {
	if !stored.IsHashed() {
		return subtle.ConstantTimeCompare([]byte(stored.value), []byte(password)) == 1
	}

	hasher, ok := v.hashers[stored.scheme]
	if !ok {
		return false
	}

	match, err := hasher.Verify(password, stored.value)
	if err != nil {
		v.logger.Debug("stored credential could not be verified",
			"scheme", string(stored.scheme),
			"error", err)
		return false
	}
	return match
}
