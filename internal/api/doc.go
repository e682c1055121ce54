// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

// Package api implements the organization events HTTP endpoints.
//
// Three GET endpoints translate query-string parameters into structured
// engine queries and shape the results:
//
//	/api/0/organizations/{organization_slug}/events/     (alias-translating)
//	/api/0/organizations/{organization_slug}/events-v2/
//	/api/0/organizations/{organization_slug}/events-geo/
//
// Each endpoint is feature-gated per organization, resolves a project/time
// scope from the request, picks the baseline or metrics-enhanced engine, and
// either executes once (noPagination) or drives the offset paginator and
// emits Link cursor headers. All engine failures pass through a single
// error-translation boundary; no partial rows are ever returned.
package api
