// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

// Package main is the entry point for the Faultline events API server.
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, config.yaml, env)
//  2. Logging: zerolog with the configured level and format
//  3. Engine clients: circuit-broken HTTP transports for the baseline and
//     metrics-enhanced query engines
//  4. HTTP server: chi router serving the organization events endpoints and
//     the Prometheus exposition endpoint
//
// Graceful shutdown on SIGINT and SIGTERM: the server stops accepting new
// connections and waits for in-flight requests up to the configured
// shutdown timeout.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/faultline-hq/faultline/internal/api"
	"github.com/faultline-hq/faultline/internal/auth"
	"github.com/faultline-hq/faultline/internal/config"
	"github.com/faultline-hq/faultline/internal/discover"
	"github.com/faultline-hq/faultline/internal/flags"
	"github.com/faultline-hq/faultline/internal/links"
	"github.com/faultline-hq/faultline/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("baseline_engine", cfg.Engine.BaselineURL).
		Str("enhanced_engine", cfg.Engine.EnhancedURL).
		Int("organizations", len(cfg.Organizations)).
		Msg("Configuration loaded")

	base, err := links.NewBaseResolver(cfg.Server.BaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid server.base_url")
	}

	baseline := discover.NewHTTPEngine(discover.DatasetDiscover, engineClientConfig(cfg, cfg.Engine.BaselineURL))

	// Without a dedicated metrics backend the enhanced dataset falls back to
	// the baseline transport; dataset selection still runs unchanged.
	enhanced := baseline
	if cfg.Engine.EnhancedURL != "" {
		enhanced = discover.NewHTTPEngine(discover.DatasetMetricsEnhanced, engineClientConfig(cfg, cfg.Engine.EnhancedURL))
	}

	var tokens *auth.TokenManager
	if cfg.Security.JWTSecret != "" {
		tokens, err = auth.NewTokenManager(cfg.Security.JWTSecret)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize token manager")
		}
	} else {
		logging.Warn().Msg("No JWT secret configured; API tokens will not be recognized")
	}

	handler := api.NewHandler(
		cfg,
		api.NewStaticStore(cfg.Organizations),
		flags.NewStaticResolver(cfg.Features.Organizations),
		baseline,
		enhanced,
		base,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(cfg, handler, tokens).Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logging.Fatal().Err(err).Msg("HTTP server failed")
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown did not complete")
		if err := server.Close(); err != nil {
			logging.Error().Err(err).Msg("Forced close failed")
		}
	}
	logging.Info().Msg("Server stopped")
}

func engineClientConfig(cfg *config.Config, url string) discover.ClientConfig {
	return discover.ClientConfig{
		URL:                url,
		Timeout:            cfg.Engine.Timeout,
		RateLimit:          cfg.Engine.RateLimit,
		RateBurst:          cfg.Engine.RateBurst,
		BreakerMaxFailures: cfg.Engine.BreakerMaxFailures,
		BreakerTimeout:     cfg.Engine.BreakerTimeout,
	}
}
