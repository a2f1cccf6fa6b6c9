// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

// Package auth provides credential verification and session tokens for authcore.
//
// # Components
//
// The login pipeline is built from small, independently testable parts:
//   - UserRepository - looks up a UserRecord by exact username
//   - PasswordVerifier - checks a plaintext password against a stored Credential
//   - TokenIssuer / TokenVerifier - sign and validate HS256 session tokens
//   - Service - composes the above into Login, IsTokenValid, IdentityFromToken
//     and CheckStoreReachable
//
// Stored credentials are classified once with ParseCredential. Hashed values
// (bcrypt, argon2id) are verified in constant time; anything else is a legacy
// plaintext value compared for equality. Rehasher rewrites those legacy rows.
//
// # Outcomes
//
// Credential decisions (unknown user, wrong password) are returned as a
// LoginResult, never as an error. Errors from Login always mean the store or
// the signer failed. Token checks never fail: every invalid token collapses to
// a negative result.
package auth
