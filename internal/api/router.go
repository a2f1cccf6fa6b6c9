// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

// Package api exposes the authentication operations as a JSON command API.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tienda/authcore/internal/auth"
	"github.com/tienda/authcore/internal/observability"
	"github.com/tienda/authcore/pkg/errutil"
)

// AccessTokenCookie is the cookie a browser shell stores the session token in.
const AccessTokenCookie = "accessToken"

// Authenticator is the set of operations the API exposes. *auth.Service
// implements it.
type Authenticator interface {
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResult, error)
	IsTokenValid(token string) bool
	IdentityFromToken(token string) (auth.Identity, bool)
	CheckStoreReachable(ctx context.Context) error
}

var _ Authenticator = (*auth.Service)(nil)

// Options configures NewRouter.
type Options struct {
	Logger *slog.Logger
	// Metrics may be nil.
	Metrics *observability.Metrics
}

type handlers struct {
	svc     Authenticator
	logger  *slog.Logger
	metrics *observability.Metrics
}

type loginBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenBody struct {
	Token string `json:"token"`
}

// NewRouter constructs the gin engine with every route wired.
func NewRouter(svc Authenticator, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{svc: svc, logger: logger, metrics: opts.Metrics}

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.Use(TracingMiddleware())
	r.Use(LoggingMiddleware(logger))
	r.Use(RecoveryMiddleware(logger))

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, CodeNotFound, "route not found")
	})

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", h.login)
		api.POST("/auth/token/validate", h.validateToken)
		api.POST("/auth/token/identity", h.tokenIdentity)
		api.GET("/auth/me", h.me)
		api.GET("/store/health", h.storeHealth)
	}

	return r
}

func (h *handlers) login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "username and password are required")
		return
	}

	result, err := h.svc.Login(c.Request.Context(), auth.LoginRequest{
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		h.metrics.RecordLogin(auth.OutcomeError)
		if errors.Is(err, auth.ErrStoreFailure) {
			h.metrics.RecordStoreError("login")
			errutil.LogErrorContext(c.Request.Context(), h.logger, "login failed", err,
				"request_id", RequestID(c))
			respondError(c, http.StatusServiceUnavailable, CodeStoreUnavailable, "credential store unavailable")
			return
		}
		errutil.LogErrorContext(c.Request.Context(), h.logger, "login failed", err,
			"request_id", RequestID(c))
		respondError(c, http.StatusInternalServerError, CodeInternal, "internal error")
		return
	}

	h.metrics.RecordLogin(loginOutcome(result))
	c.JSON(http.StatusOK, result)
}

func loginOutcome(result auth.LoginResult) string {
	switch {
	case result.Success:
		return auth.OutcomeSuccess
	case result.Message == auth.MessageUserNotFound:
		return auth.OutcomeUserNotFound
	default:
		return auth.OutcomeIncorrectPassword
	}
}

func (h *handlers) validateToken(c *gin.Context) {
	var body tokenBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "invalid json")
		return
	}

	valid := h.svc.IsTokenValid(body.Token)
	h.metrics.RecordTokenCheck("validate", valid)
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

func (h *handlers) tokenIdentity(c *gin.Context) {
	var body tokenBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "invalid json")
		return
	}

	id, ok := h.svc.IdentityFromToken(body.Token)
	h.metrics.RecordTokenCheck("identity", ok)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": id})
}

func (h *handlers) me(c *gin.Context) {
	token := bearerToken(c)
	id, ok := h.svc.IdentityFromToken(token)
	h.metrics.RecordTokenCheck("me", ok)
	if !ok {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "invalid or missing token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": id})
}

// bearerToken reads the token from the access token cookie, falling back to
// a Bearer Authorization header.
func bearerToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
	if found && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

func (h *handlers) storeHealth(c *gin.Context) {
	if err := h.svc.CheckStoreReachable(c.Request.Context()); err != nil {
		h.metrics.RecordStoreError("health")
		errutil.LogErrorContext(c.Request.Context(), h.logger, "store health check failed", err,
			"request_id", RequestID(c))
		respondError(c, http.StatusServiceUnavailable, CodeStoreUnavailable, "credential store unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
