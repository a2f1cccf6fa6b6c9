// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tienda/authcore/internal/auth"
)

func TestPasswordVerifier_Verify(t *testing.T) {
	verifier := auth.NewPasswordVerifier(nil)

	bcryptHash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	argonHash, err := auth.NewArgon2idHasher().Hash("secret123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		stored   string
		password string
		want     bool
	}{
		{"bcrypt match", string(bcryptHash), "secret123", true},
		{"bcrypt mismatch", string(bcryptHash), "wrong", false},
		{"argon2id match", argonHash, "secret123", true},
		{"argon2id mismatch", argonHash, "wrong", false},
		{"plaintext match", "hunter2", "hunter2", true},
		{"plaintext mismatch", "hunter2", "hunter3", false},
		{"plaintext is case sensitive", "Hunter2", "hunter2", false},
		{"plaintext prefix is not a match", "hunter2", "hunter", false},
		{"empty plaintext matches only empty password", "", "", true},
		{"malformed bcrypt is a mismatch", "$2a$10$short", "anything", false},
		{"malformed argon2id is a mismatch", "$argon2id$v=19$garbage", "anything", false},
		{"argon2id with zero iterations is a mismatch",
			"$argon2id$v=19$m=65536,t=0,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA", "secret123", false},
		{"argon2id with oversized memory is a mismatch",
			"$argon2id$v=19$m=4294967295,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA", "secret123", false},
		{"hash is not accepted as its own password", string(bcryptHash), string(bcryptHash), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, verifier.Verify(auth.ParseCredential(tt.stored), tt.password))
			})
		})
	}
}
