// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

// Package sqlite implements the auth repositories on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/oops"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/tienda/authcore/internal/auth"
)

//go:embed schema.sql
var schemaSQL string

const selectUserColumns = `SELECT id, username, credential FROM users`

// UserRepository implements auth.UserStore on SQLite.
type UserRepository struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path in WAL mode.
// Call Migrate before first use.
func Open(path string) (*UserRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, oops.Code("STORE_CONFIG_INVALID").Errorf("sqlite path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, oops.Code("STORE_UNAVAILABLE").With("path", path).Wrap(err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, oops.Code("STORE_UNAVAILABLE").With("path", path).Wrap(err)
	}
	return &UserRepository{db: db}, nil
}

// Migrate creates the users table if it does not exist.
func (r *UserRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return oops.Code("MIGRATION_UP_FAILED").With("driver", "sqlite").Wrap(err)
	}
	return nil
}

// Close closes the database handle.
func (r *UserRepository) Close() error {
	return r.db.Close()
}

// GetByUsername retrieves a user by exact, case-sensitive username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.UserRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectUserColumns+` WHERE username = ? ORDER BY id LIMIT 2`, username)
	if err != nil {
		return nil, storeError(err, "USER_LOOKUP_FAILED").
			With("operation", "get user by username").
			With("username", username).
			Wrap(err)
	}
	defer rows.Close() //nolint:errcheck // read-only

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
		return nil, oops.Code("USER_NOT_FOUND").With("username", username).Wrap(auth.ErrNotFound)
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
	if err := r.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return storeError(err, "STORE_PING_FAILED").With("operation", "ping").Wrap(err)
	}
	return nil
}

// Create inserts a user with an already encoded credential.
func (r *UserRepository) Create(ctx context.Context, username, credential string) (*auth.UserRecord, error) {
	now := time.Now().UTC().UnixMilli()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, credential, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		username, credential, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, oops.Code("USER_EXISTS").With("username", username).Wrap(auth.ErrUserExists)
		}
		return nil, storeError(err, "USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", username).
			Wrap(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, oops.Code("USER_CREATE_FAILED").With("operation", "last insert id").Wrap(err)
	}
	return &auth.UserRecord{ID: id, Username: username, Credential: credential}, nil
}

// List returns every user ordered by ID.
func (r *UserRepository) List(ctx context.Context) ([]*auth.UserRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectUserColumns+` ORDER BY id`)
	if err != nil {
		return nil, storeError(err, "USER_LIST_FAILED").With("operation", "list users").Wrap(err)
	}
	defer rows.Close() //nolint:errcheck // read-only

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
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET credential = ?, updated_at = ? WHERE id = ?`,
		credential, time.Now().UTC().UnixMilli(), id,
	)
	if err != nil {
		return storeError(err, "USER_UPDATE_FAILED").
			With("operation", "update credential").
			With("user_id", id).
			Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("operation", "rows affected").Wrap(err)
	}
	if n == 0 {
		return oops.Code("USER_NOT_FOUND").With("user_id", id).Wrap(auth.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*auth.UserRecord, error) {
	var u auth.UserRecord
	if err := row.Scan(&u.ID, &u.Username, &u.Credential); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with operation context
	}
	return &u, nil
}

func storeError(err error, fallback string) oops.OopsErrorBuilder {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_CANTOPEN, sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED,
			sqlite3lib.SQLITE_IOERR, sqlite3lib.SQLITE_CORRUPT, sqlite3lib.SQLITE_NOTADB:
			return oops.Code("STORE_UNAVAILABLE")
		}
	}
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "no such table") {
		return oops.Code("STORE_UNAVAILABLE")
	}
	return oops.Code(fallback)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ auth.UserStore = (*UserRepository)(nil)
