// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package api

import (
	"github.com/faultline-hq/faultline/internal/config"
	"github.com/faultline-hq/faultline/internal/discover"
	"github.com/faultline-hq/faultline/internal/flags"
	"github.com/faultline-hq/faultline/internal/links"
)

// Handler serves the organization events endpoints. All collaborators are
// injected; nothing in the handler consults global state, so behavior is
// deterministic under test.
type Handler struct {
	cfg      *config.Config
	store    OrganizationStore
	flags    flags.Resolver
	baseline discover.Engine
	enhanced discover.Engine
	base     *links.BaseResolver
}

// NewHandler wires a handler. The enhanced engine may equal the baseline
// engine in deployments without a metrics backend; dataset selection still
// runs, it just lands on the same transport.
func NewHandler(
	cfg *config.Config,
	store OrganizationStore,
	resolver flags.Resolver,
	baseline, enhanced discover.Engine,
	base *links.BaseResolver,
) *Handler {
	return &Handler{
		cfg:      cfg,
		store:    store,
		flags:    resolver,
		baseline: baseline,
		enhanced: enhanced,
		base:     base,
	}
}

// engineFor maps a dataset decision to its transport.
func (h *Handler) engineFor(dataset discover.Dataset) discover.Engine {
	if dataset == discover.DatasetMetricsEnhanced {
		return h.enhanced
	}
	return h.baseline
}
