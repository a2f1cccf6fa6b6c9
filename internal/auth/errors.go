// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("not found")

// ErrStoreFailure marks errors caused by the credential store rather than by
// the credentials themselves.
var ErrStoreFailure = errors.New("credential store failure")

// ErrInvalidToken is the only error a TokenVerifier returns. Expired, tampered
// and malformed tokens are indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid token")

// ErrUserExists is returned by CredentialAdmin.Create when the username is taken.
var ErrUserExists = errors.New("user already exists")
