// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tienda/authcore/internal/store"
	"github.com/tienda/authcore/pkg/errutil"
)

func TestPoolConfig(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		cfg, err := store.PoolConfig("postgres://u:p@localhost:5432/authcore", 0)
		require.NoError(t, err)
		assert.Equal(t, int32(store.DefaultMaxConns), cfg.MaxConns)
		assert.Equal(t, int32(1), cfg.MinConns)
		assert.Equal(t, 30*time.Second, cfg.HealthCheckPeriod)
		assert.Equal(t, "authcore", cfg.ConnConfig.Database)
	})

	t.Run("honors max conns", func(t *testing.T) {
		cfg, err := store.PoolConfig("postgres://localhost/authcore", 3)
		require.NoError(t, err)
		assert.Equal(t, int32(3), cfg.MaxConns)
	})

	t.Run("rejects empty dsn", func(t *testing.T) {
		_, err := store.PoolConfig("", 0)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "STORE_CONFIG_INVALID")
	})

	t.Run("rejects unparseable dsn", func(t *testing.T) {
		_, err := store.PoolConfig("postgres://%zz", 0)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "STORE_CONFIG_INVALID")
	})
}

func TestConnect_GivesUpAfterTimeout(t *testing.T) {
	start := time.Now()
	// Port 1 on loopback refuses connections immediately.
	_, err := store.Connect(context.Background(), "postgres://u:p@127.0.0.1:1/authcore?connect_timeout=1",
		store.ConnectOptions{Timeout: 500 * time.Millisecond})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "STORE_CONNECT_FAILED")
	assert.Less(t, time.Since(start), 5*time.Second)
}
