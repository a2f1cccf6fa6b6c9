// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("authcore/auth")

// Login outcomes as reported in logs and metrics.
const (
	OutcomeSuccess           = "success"
	OutcomeUserNotFound      = "user_not_found"
	OutcomeIncorrectPassword = "incorrect_password"
	OutcomeError             = "error"
)

// Service provides authentication operations.
type Service struct {
	users     UserRepository
	passwords *PasswordVerifier
	issuer    *TokenIssuer
	tokens    *TokenVerifier
	logger    *slog.Logger
}

// NewAuthService creates a new Service that logs to slog.Default().
func NewAuthService(
	users UserRepository,
	passwords *PasswordVerifier,
	issuer *TokenIssuer,
	tokens *TokenVerifier,
) (*Service, error) {
	return NewAuthServiceWithLogger(users, passwords, issuer, tokens, slog.Default())
}

// NewAuthServiceWithLogger creates a new Service with an explicit logger.
func NewAuthServiceWithLogger(
	users UserRepository,
	passwords *PasswordVerifier,
	issuer *TokenIssuer,
	tokens *TokenVerifier,
	logger *slog.Logger,
) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if passwords == nil {
		return nil, oops.Errorf("password verifier is required")
	}
	if issuer == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token verifier is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		users:     users,
		passwords: passwords,
		issuer:    issuer,
		tokens:    tokens,
		logger:    logger,
	}, nil
}

// Login looks up the user, verifies the password and issues a session token.
// Unknown users and wrong passwords are negative LoginResults. An error is
// returned only when the store cannot answer or the token cannot be signed;
// store errors match ErrStoreFailure.
func (s *Service) Login(ctx context.Context, req LoginRequest) (result LoginResult, err error) {
	ctx, span := tracer.Start(ctx, "auth.login",
		trace.WithAttributes(attribute.String("auth.username", req.Username)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logOutcome(ctx, req.Username, OutcomeUserNotFound)
			return userNotFound(), nil
		}
		s.logOutcome(ctx, req.Username, OutcomeError)
		return LoginResult{}, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by username").
			Wrap(fmt.Errorf("%w: %w", ErrStoreFailure, err))
	}

	if !s.passwords.Verify(ParseCredential(user.Credential), req.Password) {
		s.logOutcome(ctx, req.Username, OutcomeIncorrectPassword)
		return incorrectPassword(), nil
	}

	token, err := s.issuer.Issue(user.ID, user.Username)
	if err != nil {
		s.logOutcome(ctx, req.Username, OutcomeError)
		return LoginResult{}, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			With("user_id", user.ID).
			Wrap(err)
	}

	s.logOutcome(ctx, req.Username, OutcomeSuccess)
	span.SetAttributes(attribute.Int64("auth.user_id", user.ID))
	return loginSucceeded(token, user.Identity()), nil
}

// IsTokenValid reports whether the token is well formed, correctly signed and
// unexpired.
func (s *Service) IsTokenValid(token string) bool {
	_, err := s.tokens.Verify(token)
	return err == nil
}

// IdentityFromToken returns the identity asserted by a valid token.
func (s *Service) IdentityFromToken(token string) (Identity, bool) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return Identity{}, false
	}
	return claims.Identity(), true
}

// CheckStoreReachable issues a trivial query against the credential store.
// Failures match ErrStoreFailure.
func (s *Service) CheckStoreReachable(ctx context.Context) error {
	if err := s.users.Ping(ctx); err != nil {
		return oops.Code("STORE_UNREACHABLE").Wrap(fmt.Errorf("%w: %w", ErrStoreFailure, err))
	}
	return nil
}

func (s *Service) logOutcome(ctx context.Context, username, outcome string) {
	level := slog.LevelInfo
	if outcome == OutcomeError {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "login attempt", "username", username, "outcome", outcome)
}
