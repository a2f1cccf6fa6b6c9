// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

// Package postgres implements the auth repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/tienda/authcore/internal/auth"
)

// Pool is the subset of *pgxpool.Pool the repository needs.
type Pool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const selectUserColumns = `SELECT id, username, credential FROM users`

// UserRepository implements auth.UserStore using PostgreSQL.
type UserRepository struct {
	pool Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByUsername retrieves a user by exact, case-sensitive username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.UserRecord, error) {
	rows, err := r.pool.Query(ctx, selectUserColumns+` WHERE username = $1 ORDER BY id LIMIT 2`, username)
	if err != nil {
		return nil, storeError(err, "USER_LOOKUP_FAILED").
			With("operation", "get user by username").
			With("username", username).
			Wrap(err)
	}
	defer rows.Close()

	var found []*auth.UserRecord
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_LOOKUP_FAILED").
				With("operation", "scan user").
				With("username", username).
				Wrap(err)
		}
		found = append(found, user)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, "USER_LOOKUP_FAILED").
			With("operation", "get user by username").
			With("username", username).
			Wrap(err)
	}

	switch len(found) {
	case 0:
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return nil, oops.Code("USER_DUPLICATE").
			With("username", username).
			Errorf("more than one user row for username")
	}
}

// Ping issues SELECT 1 against the store.
func (r *UserRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.pool.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return storeError(err, "STORE_PING_FAILED").With("operation", "ping").Wrap(err)
	}
	return nil
}

// Create inserts a user with an already encoded credential.
func (r *UserRepository) Create(ctx context.Context, username, credential string) (*auth.UserRecord, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, credential) VALUES ($1, $2) RETURNING id`,
		username, credential,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, oops.Code("USER_EXISTS").
				With("username", username).
				Wrap(auth.ErrUserExists)
		}
		return nil, storeError(err, "USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", username).
			Wrap(err)
	}
	return &auth.UserRecord{ID: id, Username: username, Credential: credential}, nil
}

// List returns every user ordered by ID.
func (r *UserRepository) List(ctx context.Context) ([]*auth.UserRecord, error) {
	rows, err := r.pool.Query(ctx, selectUserColumns+` ORDER BY id`)
	if err != nil {
		return nil, storeError(err, "USER_LIST_FAILED").With("operation", "list users").Wrap(err)
	}
	defer rows.Close()

	var users []*auth.UserRecord
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_LIST_FAILED").With("operation", "scan user").Wrap(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, "USER_LIST_FAILED").With("operation", "iterate users").Wrap(err)
	}
	return users, nil
}

// UpdateCredential replaces a user's stored credential.
func (r *UserRepository) UpdateCredential(ctx context.Context, id int64, credential string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET credential = $2, updated_at = now() WHERE id = $1`,
		id, credential,
	)
	if err != nil {
		return storeError(err, "USER_UPDATE_FAILED").
			With("operation", "update credential").
			With("user_id", id).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("user_id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

func scanUser(row pgx.Row) (*auth.UserRecord, error) {
	var u auth.UserRecord
	if err := row.Scan(&u.ID, &u.Username, &u.Credential); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with operation context
	}
	return &u, nil
}

// storeError picks STORE_UNAVAILABLE when the database could not be reached
// or the schema is missing, and fallback otherwise.
func storeError(err error, fallback string) oops.OopsErrorBuilder {
	if isUnavailable(err) {
		return oops.Code("STORE_UNAVAILABLE")
	}
	return oops.Code(fallback)
}

func isUnavailable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgErr.Code == pgerrcode.UndefinedTable ||
			pgErr.Code == pgerrcode.CannotConnectNow ||
			pgErr.Code == pgerrcode.AdminShutdown
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err)
}

var _ auth.UserStore = (*UserRepository)(nil)
