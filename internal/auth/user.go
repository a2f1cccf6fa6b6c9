// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import "context"

// Fixed LoginResult messages, one per outcome.
const (
	MessageUserNotFound      = "user not found"
	MessageIncorrectPassword = "incorrect password"
	MessageLoginSuccessful   = "login successful"
)

// UserRecord is a stored user row. Credential holds either a salted hash or a
// legacy plaintext password; see ParseCredential.
type UserRecord struct {
	ID         int64
	Username   string
	Credential string
}

// Identity returns the public identity of the record.
func (u *UserRecord) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username}
}

// Identity is the user identity asserted by a session token.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// LoginRequest carries the credentials supplied for a single login attempt.
// Password is never persisted or logged.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the credential decision for a login attempt.
// Token and Identity are set if and only if Success is true.
type LoginResult struct {
	Success  bool      `json:"success"`
	Token    string    `json:"token,omitempty"`
	Identity *Identity `json:"user,omitempty"`
	Message  string    `json:"message"`
}

func userNotFound() LoginResult {
	return LoginResult{Success: false, Message: MessageUserNotFound}
}

func incorrectPassword() LoginResult {
	return LoginResult{Success: false, Message: MessageIncorrectPassword}
}

func loginSucceeded(token string, id Identity) LoginResult {
	return LoginResult{Success: true, Token: token, Identity: &id, Message: MessageLoginSuccessful}
}

// UserRepository provides read access to the credential store.
// Implementations must be safe for concurrent use.
type UserRepository interface {
	// GetByUsername returns the user with exactly this username (case-sensitive).
	// Returns ErrNotFound if no row matches. Any other error means the store
	// could not answer.
	GetByUsername(ctx context.Context, username string) (*UserRecord, error)

	// Ping issues a trivial query to confirm the store is reachable.
	Ping(ctx context.Context) error
}

// CredentialAdmin provides the write operations used by provisioning tools.
// The login path never writes.
type CredentialAdmin interface {
	// Create stores a new user with an already encoded credential.
	Create(ctx context.Context, username, credential string) (*UserRecord, error)

	// List returns every user ordered by ID.
	List(ctx context.Context) ([]*UserRecord, error)

	// UpdateCredential replaces the stored credential of a user.
	// Returns ErrNotFound if the user does not exist.
	UpdateCredential(ctx context.Context, id int64, credential string) error
}

// UserStore is a credential store that supports both lookups and provisioning.
type UserStore interface {
	UserRepository
	CredentialAdmin
}
