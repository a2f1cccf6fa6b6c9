// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/tienda/authcore/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("AUTH_TOKEN_INVALID").Errorf("invalid token")
	errutil.AssertErrorCode(t, err, "AUTH_TOKEN_INVALID")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("user_id", int64(7)).Errorf("update failed")
	errutil.AssertErrorContext(t, err, "user_id", int64(7))
}
