// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/faultline-hq/faultline/internal/auth"
	"github.com/faultline-hq/faultline/internal/config"
	"github.com/faultline-hq/faultline/internal/middleware"
)

// Router assembles the HTTP surface: the events endpoints under their
// organization scope, plus the Prometheus exposition endpoint.
type Router struct {
	cfg     *config.Config
	handler *Handler
	tokens  *auth.TokenManager
}

// NewRouter creates a router. tokens may be nil when no JWT secret is
// configured; requests are then never token-authenticated and the token
// referrer is never forced.
func NewRouter(cfg *config.Config, handler *Handler, tokens *auth.TokenManager) *Router {
	return &Router{cfg: cfg, handler: handler, tokens: tokens}
}

// Setup builds the chi handler tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/0/organizations/{organization_slug}", func(r chi.Router) {
		if !rt.cfg.Security.RateLimitDisabled {
			r.Use(httprate.LimitByIP(rt.cfg.Security.RateLimitReqs, rt.cfg.Security.RateLimitWindow))
		}
		r.Use(middleware.PrometheusMetrics)
		if rt.tokens != nil {
			r.Use(auth.Middleware(rt.tokens))
		}

		r.Get("/events/", rt.handler.OrganizationEvents)
		r.Get("/events-v2/", rt.handler.OrganizationEventsV2)
		r.Get("/events-geo/", rt.handler.OrganizationEventsGeo)
	})

	return r
}
