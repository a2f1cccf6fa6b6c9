// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tienda/authcore/internal/api"
	"github.com/tienda/authcore/internal/config"
	"github.com/tienda/authcore/internal/observability"
	"github.com/tienda/authcore/pkg/errutil"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the command API and observability server",
		Long: `Start the JSON command API (login, token validation, identity, store health)
and the metrics/health server. Shuts down gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, deps)
		},
	}
}

func runServe(cmd *cobra.Command, deps *Deps) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	secret, err := cfg.SigningSecret()
	if err != nil {
		return err
	}
	if secret == config.DevSecret {
		logger.Warn("signing tokens with the development secret; do not use in production")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting authcore",
		"http_addr", cfg.HTTP.Addr,
		"metrics_addr", cfg.Metrics.Addr,
		"store_driver", cfg.Store.Driver,
	)

	users, closeStore, err := deps.StoreOpener(ctx, cfg.Store, logger)
	if err != nil {
		return oops.With("operation", "open credential store").Wrap(err)
	}
	defer closeStore()

	svc, err := buildService(users, secret, logger)
	if err != nil {
		return oops.With("operation", "build auth service").Wrap(err)
	}

	// The observability server owns the registry; the API records into it.
	var obsServer *observability.Server
	var metrics *observability.Metrics
	var obsErrCh <-chan error
	metricsAddr := ""
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServerWithLogger(cfg.Metrics.Addr, svc.CheckStoreReachable, logger)
		metrics = obsServer.Metrics()
		obsErrCh, err = obsServer.Start()
		if err != nil {
			return oops.With("operation", "start observability server").Wrap(err)
		}
		metricsAddr = obsServer.Addr()
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(svc, api.Options{Logger: logger, Metrics: metrics})
	apiServer := api.NewServer(cfg.HTTP.Addr, router, logger)
	apiErrCh, err := apiServer.Start()
	if err != nil {
		stopServers(logger, nil, obsServer)
		return oops.With("operation", "start api server").Wrap(err)
	}

	cmd.Println("authcore started")
	deps.OnReady(apiServer.Addr(), metricsAddr)

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-apiErrCh:
		if err != nil {
			serveErr = oops.With("operation", "serve api").Wrap(err)
		}
	case err := <-obsErrCh:
		if err != nil {
			serveErr = oops.With("operation", "serve observability").Wrap(err)
		}
	}

	stopServers(logger, apiServer, obsServer)
	if serveErr != nil {
		errutil.LogError(logger, "server failed", serveErr)
		return serveErr
	}
	logger.Info("shutdown complete")
	return nil
}

// stopServers stops whichever servers were started. Either may be nil.
func stopServers(logger *slog.Logger, apiServer *api.Server, obsServer *observability.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if apiServer != nil {
		if err := apiServer.Stop(ctx); err != nil {
			logger.Warn("error stopping api server", "error", err)
		}
	}
	if obsServer != nil {
		if err := obsServer.Stop(ctx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}
}
