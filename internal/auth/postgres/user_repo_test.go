// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tienda/authcore/internal/auth"
	"github.com/tienda/authcore/internal/auth/postgres"
	"github.com/tienda/authcore/pkg/errutil"
)

var userColumns = []string{"id", "username", "credential"}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *postgres.UserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, postgres.NewUserRepository(mock)
}

func TestUserRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta(`SELECT id, username, credential FROM users WHERE username = $1 ORDER BY id LIMIT 2`)

	t.Run("returns the single matching row", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs("alice").
			WillReturnRows(pgxmock.NewRows(userColumns).AddRow(int64(1), "alice", "$2a$10$hash"))

		user, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, &auth.UserRecord{ID: 1, Username: "alice", Credential: "$2a$10$hash"}, user)
	})

	t.Run("no rows is not found", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs("bob").WillReturnRows(pgxmock.NewRows(userColumns))

		_, err := repo.GetByUsername(ctx, "bob")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
	})

	t.Run("duplicate rows fail the lookup", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs("alice").
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow(int64(1), "alice", "a").
				AddRow(int64(2), "alice", "b"))

		_, err := repo.GetByUsername(ctx, "alice")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "USER_DUPLICATE")
	})

	t.Run("connection failure is unavailable", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs("alice").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.ConnectionFailure, Message: "connection failure"})

		_, err := repo.GetByUsername(ctx, "alice")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "STORE_UNAVAILABLE")
		errutil.AssertErrorContext(t, err, "username", "alice")
	})

	t.Run("missing table is unavailable", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs("alice").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UndefinedTable, Message: `relation "users" does not exist`})

		_, err := repo.GetByUsername(ctx, "alice")
		errutil.AssertErrorCode(t, err, "STORE_UNAVAILABLE")
	})

	t.Run("other query errors are lookup failures", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs("alice").WillReturnError(errors.New("syntax error"))

		_, err := repo.GetByUsername(ctx, "alice")
		errutil.AssertErrorCode(t, err, "USER_LOOKUP_FAILED")
	})
}

func TestUserRepository_Ping(t *testing.T) {
	ctx := context.Background()

	t.Run("reachable", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1`)).WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
		require.NoError(t, repo.Ping(ctx))
	})

	t.Run("unreachable", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1`)).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.AdminShutdown})
		err := repo.Ping(ctx)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "STORE_UNAVAILABLE")
	})
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	insert := regexp.QuoteMeta(`INSERT INTO users (username, credential) VALUES ($1, $2) RETURNING id`)

	t.Run("returns the new record", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(insert).WithArgs("carol", "$2a$hash").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

		user, err := repo.Create(ctx, "carol", "$2a$hash")
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, "carol", user.Username)
	})

	t.Run("unique violation is ErrUserExists", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(insert).WithArgs("carol", "x").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		_, err := repo.Create(ctx, "carol", "x")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrUserExists)
		errutil.AssertErrorCode(t, err, "USER_EXISTS")
	})
}

func TestUserRepository_List(t *testing.T) {
	mock, repo := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, credential FROM users ORDER BY id`)).
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow(int64(1), "alice", "a").
			AddRow(int64(2), "bob", "b"))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[1].Username)
}

func TestUserRepository_UpdateCredential(t *testing.T) {
	ctx := context.Background()
	update := regexp.QuoteMeta(`UPDATE users SET credential = $2, updated_at = now() WHERE id = $1`)

	t.Run("updates the row", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectExec(update).WithArgs(int64(1), "new").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		require.NoError(t, repo.UpdateCredential(ctx, 1, "new"))
	})

	t.Run("missing row is not found", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectExec(update).WithArgs(int64(99), "new").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		err := repo.UpdateCredential(ctx, 99, "new")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}
