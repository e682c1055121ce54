// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package api

import "github.com/faultline-hq/faultline/internal/logging"

// Referrers tag each engine query with the UI surface that issued it, for
// analytics attribution downstream. Values supplied by clients are only
// forwarded when they appear on the endpoint's allow-list; anything else is
// coerced to the endpoint default so arbitrary tags cannot propagate.
const (
	referrerEventsDefault   = "api.organization-events"
	referrerEventsV2Default = "api.organization-events-v2"
	referrerEventsGeo       = "api.organization-events-geo"

	// tokenAuthReferrer overrides whatever the client sent when the request
	// authenticated with an API token.
	tokenAuthReferrer = "api.auth-token.events"
)

// allowedEventsReferrers is shared by the events and events-v2 endpoints;
// only the fallback default differs between them.
var allowedEventsReferrers = map[string]bool{
	referrerEventsDefault:                     true,
	referrerEventsV2Default:                   true,
	"api.dashboards.tablewidget":              true,
	"api.dashboards.bignumberwidget":          true,
	"api.discover.transactions-list":          true,
	"api.discover.query-table":                true,
	"api.performance.vitals-cards":            true,
	"api.performance.landing-table":           true,
	"api.performance.transaction-summary":     true,
	"api.performance.transaction-spans":       true,
	"api.performance.status-breakdown":        true,
	"api.performance.vital-detail":            true,
	"api.performance.durationpercentilechart": true,
	"api.performance.tag-page":                true,
	"api.trace-view.span-detail":              true,
	"api.trace-view.errors-view":              true,
	"api.trace-view.hover-card":               true,
}

var allowedEventsGeoReferrers = map[string]bool{
	referrerEventsGeo:               true,
	"api.dashboards.worldmapwidget": true,
}

// normalizeReferrer passes through allow-listed referrers and replaces
// everything else with the endpoint default. Unrecognized values are logged
// once per request so new UI surfaces get noticed and added.
func normalizeReferrer(supplied string, allowed map[string]bool, fallback string) string {
	if supplied == "" {
		return fallback
	}
	if allowed[supplied] {
		return supplied
	}
	logging.Warn().Str("referrer", sanitizeLogValue(supplied)).Msg("referrer is not allowlisted")
	return fallback
}
