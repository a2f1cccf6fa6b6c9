// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// TokenLifetime is how long an issued session token remains valid.
const TokenLifetime = 24 * time.Hour

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// SigningKey is the process-wide symmetric key shared by TokenIssuer and
// TokenVerifier. It is immutable after construction.
type SigningKey struct {
	secret []byte
}

// NewSigningKey copies secret into a new SigningKey. An empty secret is rejected.
func NewSigningKey(secret string) (SigningKey, error) {
	if secret == "" {
		return SigningKey{}, oops.Code("AUTH_SIGNING_KEY_EMPTY").Errorf("signing secret cannot be empty")
	}
	return SigningKey{secret: []byte(secret)}, nil
}

// String never reveals the secret.
func (k SigningKey) String() string {
	return "[redacted]"
}

func (k SigningKey) bytes() []byte {
	// A copy keeps jwt internals from aliasing the key.
	out := make([]byte, len(k.secret))
	copy(out, k.secret)
	return out
}

// SessionClaims is the identity assertion carried inside a session token.
// Subject encodes as a JSON number.
type SessionClaims struct {
	Subject   int64            `json:"sub"`
	Username  string           `json:"username"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
}

// GetExpirationTime implements jwt.Claims.
func (c SessionClaims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }

// GetIssuedAt implements jwt.Claims.
func (c SessionClaims) GetIssuedAt() (*jwt.NumericDate, error) { return c.IssuedAt, nil }

// GetNotBefore implements jwt.Claims.
func (c SessionClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }

// GetIssuer implements jwt.Claims.
func (c SessionClaims) GetIssuer() (string, error) { return "", nil }

// GetSubject implements jwt.Claims.
func (c SessionClaims) GetSubject() (string, error) {
	return strconv.FormatInt(c.Subject, 10), nil
}

// GetAudience implements jwt.Claims.
func (c SessionClaims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }

// Identity returns the identity asserted by the claims.
func (c SessionClaims) Identity() Identity {
	return Identity{ID: c.Subject, Username: c.Username}
}

// presenceClaims mirrors SessionClaims for decoding so that an absent sub or
// username can be told apart from a zero value.
type presenceClaims struct {
	Subject   *int64           `json:"sub"`
	Username  *string          `json:"username"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
}

func (c presenceClaims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c presenceClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c presenceClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c presenceClaims) GetIssuer() (string, error)                   { return "", nil }
func (c presenceClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

func (c presenceClaims) GetSubject() (string, error) {
	if c.Subject == nil {
		return "", nil
	}
	return strconv.FormatInt(*c.Subject, 10), nil
}

// TokenIssuer signs HS256 session tokens.
type TokenIssuer struct {
	key   SigningKey
	clock Clock
}

// NewTokenIssuer creates a TokenIssuer. A nil clock uses time.Now.
func NewTokenIssuer(key SigningKey, clock Clock) (*TokenIssuer, error) {
	if len(key.secret) == 0 {
		return nil, oops.Code("AUTH_SIGNING_KEY_EMPTY").Errorf("signing key is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &TokenIssuer{key: key, clock: clock}, nil
}

// Issue returns a signed token for the user, valid for TokenLifetime.
func (i *TokenIssuer) Issue(userID int64, username string) (string, error) {
	now := i.clock().Truncate(time.Second)
	claims := SessionClaims{
		Subject:   userID,
		Username:  username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key.bytes())
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").With("user_id", userID).Wrap(err)
	}
	return signed, nil
}

// TokenVerifier validates session tokens signed by a TokenIssuer with the
// same key.
type TokenVerifier struct {
	key    SigningKey
	parser *jwt.Parser
	logger *slog.Logger
}

// NewTokenVerifier creates a TokenVerifier. A nil clock uses time.Now and a
// nil logger uses slog.Default().
func NewTokenVerifier(key SigningKey, clock Clock, logger *slog.Logger) (*TokenVerifier, error) {
	if len(key.secret) == 0 {
		return nil, oops.Code("AUTH_SIGNING_KEY_EMPTY").Errorf("signing key is required")
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(clock),
	)
	return &TokenVerifier{key: key, parser: parser, logger: logger}, nil
}

// Verify checks the token's signature and expiry and returns its claims.
// Every failure is reported as ErrInvalidToken. Any subject value the issuer
// can produce is accepted, including zero and negative ids.
func (v *TokenVerifier) Verify(token string) (SessionClaims, error) {
	var claims presenceClaims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.key.bytes(), nil
	})
	if err != nil {
		v.logger.Debug("token rejected", "reason", rejectReason(err))
		return SessionClaims{}, oops.Code("AUTH_TOKEN_INVALID").Wrap(ErrInvalidToken)
	}
	if claims.Subject == nil || claims.Username == nil {
		v.logger.Debug("token rejected", "reason", "missing identity")
		return SessionClaims{}, oops.Code("AUTH_TOKEN_INVALID").Wrap(ErrInvalidToken)
	}
	return SessionClaims{
		Subject:   *claims.Subject,
		Username:  *claims.Username,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return "issued in future"
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "missing claim"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	default:
		return "malformed"
	}
}
