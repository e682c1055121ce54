// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

// Package flags defines the capability-resolution interface used by the
// events API. Handlers never consult a global flag service; a Resolver is
// injected so behavior stays deterministic under test.
package flags

import "context"

// Feature flag names recognized by the events API.
const (
	// DiscoverBasic gates the private organization-events endpoint.
	DiscoverBasic = "organizations:discover-basic"

	// DiscoverQuery gates the public organization-events-v2 endpoint.
	DiscoverQuery = "organizations:discover-query"

	// DashboardsBasic gates the geo endpoint.
	DashboardsBasic = "organizations:dashboards-basic"

	// PerformanceUseMetrics makes the metrics-enhanced dataset eligible for
	// performance queries.
	PerformanceUseMetrics = "organizations:performance-use-metrics"

	// DashboardsMEP makes the metrics-enhanced dataset eligible for
	// dashboard widget queries.
	DashboardsMEP = "organizations:dashboards-mep"

	// PerformanceDryRunMEP probes the metrics-enhanced engine alongside
	// baseline queries without affecting results.
	PerformanceDryRunMEP = "organizations:performance-dry-run-mep"
)

// Resolver evaluates a feature flag for an organization and acting user.
type Resolver interface {
	Has(ctx context.Context, flag, orgSlug, actor string) bool
}

// StaticResolver resolves flags from a fixed per-organization table, the
// source of truth for deployments without an external flag service. The "*"
// key applies to every organization.
type StaticResolver struct {
	orgs map[string]map[string]bool
}

// NewStaticResolver builds a resolver from organization slug -> enabled flag
// names, as loaded from configuration.
func NewStaticResolver(orgs map[string][]string) *StaticResolver {
	table := make(map[string]map[string]bool, len(orgs))
	for slug, names := range orgs {
		set := make(map[string]bool, len(names))
		for _, name := range names {
			set[name] = true
		}
		table[slug] = set
	}
	return &StaticResolver{orgs: table}
}

// Has reports whether the flag is enabled for the organization. The actor is
// ignored by the static resolver; it exists so external services that do
// per-actor rollouts satisfy the same interface.
func (r *StaticResolver) Has(_ context.Context, flag, orgSlug, _ string) bool {
	if set, ok := r.orgs["*"]; ok && set[flag] {
		return true
	}
	set, ok := r.orgs[orgSlug]
	return ok && set[flag]
}
