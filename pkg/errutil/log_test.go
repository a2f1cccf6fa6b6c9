// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tienda/authcore/pkg/errutil"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain error", errors.New("boom"), ""},
		{"oops without code", oops.Errorf("boom"), ""},
		{"oops with code", oops.Code("STORE_UNAVAILABLE").Errorf("boom"), "STORE_UNAVAILABLE"},
		{"deepest code wins", oops.Code("OUTER").Wrap(oops.Code("INNER").Errorf("boom")), "INNER"},
		{"through fmt wrapping", fmt.Errorf("ctx: %w", oops.Code("X").Errorf("boom")), "X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errutil.Code(tt.err))
		})
	}
}

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("USER_LOOKUP_FAILED").
		With("username", "alice").
		Errorf("query failed")

	errutil.LogError(logger, "login failed", err, "request_id", "01J")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "login failed", entry["msg"])
	assert.Equal(t, "USER_LOOKUP_FAILED", entry["code"])
	assert.Equal(t, "query failed", entry["error"])
	assert.Equal(t, "01J", entry["request_id"])
	errCtx, ok := entry["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", errCtx["username"])
}

func TestLogErrorContext_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogErrorContext(context.Background(), logger, "operation failed", errors.New("standard error"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "standard error", entry["error"])
	assert.NotContains(t, entry, "code")
}
