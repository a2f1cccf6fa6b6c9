// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import "strings"

// Scheme identifies how a stored credential is encoded.
type Scheme string

// Known credential schemes.
const (
	SchemePlaintext Scheme = "plaintext"
	SchemeBcrypt    Scheme = "bcrypt"
	SchemeArgon2id  Scheme = "argon2id"
)

const (
	bcryptPrefix   = "$2"
	argon2idPrefix = "$argon2id$"
)

// Credential is a stored credential classified by scheme. A Credential is
// either hashed (bcrypt or argon2id) or a legacy plaintext value.
type Credential struct {
	scheme Scheme
	value  string
}

// ParseCredential classifies a stored credential by its prefix.
// Values without a recognized hash prefix are treated as plaintext.
func ParseCredential(stored string) Credential {
	switch {
	case strings.HasPrefix(stored, argon2idPrefix):
		return Credential{scheme: SchemeArgon2id, value: stored}
	case strings.HasPrefix(stored, bcryptPrefix):
		return Credential{scheme: SchemeBcrypt, value: stored}
	default:
		return Credential{scheme: SchemePlaintext, value: stored}
	}
}

// Scheme returns the credential's encoding scheme.
func (c Credential) Scheme() Scheme {
	return c.scheme
}

// IsHashed reports whether the credential is a salted hash.
func (c Credential) IsHashed() bool {
	return c.scheme == SchemeBcrypt || c.scheme == SchemeArgon2id
}

// String never reveals the stored value.
func (c Credential) String() string {
	return string(c.scheme) + " credential"
}
