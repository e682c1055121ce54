// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package discover

import "net/url"

// Dataset identifies which engine answers a query.
type Dataset string

const (
	// DatasetDiscover is the baseline engine over raw event data.
	DatasetDiscover Dataset = "discover"

	// DatasetMetricsEnhanced is the engine over pre-aggregated metrics.
	DatasetMetricsEnhanced Dataset = "metricsEnhanced"
)

// Query parameter names involved in dataset selection. metricsEnhanced is
// the legacy spelling, kept until clients migrate to dataset.
const (
	paramMetricsEnhanced = "metricsEnhanced"
	paramDataset         = "dataset"
)

// Decision is the outcome of dataset selection for one request.
type Decision struct {
	Dataset Dataset

	// MetricsEnhanced reports whether the enhanced engine is authoritative
	// for this request. Recorded as a diagnostic tag on every query.
	MetricsEnhanced bool

	// DryRun requests a non-authoritative enhanced-engine probe alongside
	// the baseline query. Only ever set when Dataset is DatasetDiscover.
	DryRun bool
}

// SelectDataset decides which engine answers a request.
//
// useMetrics is the flag-derived eligibility (performance-use-metrics OR
// dashboards-mep); dryRun is the performance-dry-run-mep flag. The explicit
// metricsEnhanced override can force the choice, but it only upgrades to the
// enhanced engine when useMetrics already holds — the override narrows, it
// never widens, so selection stays monotonic in the flags. When the legacy
// override is absent, the newer dataset parameter picks the engine under the
// same eligibility gate.
func SelectDataset(useMetrics, dryRun bool, q url.Values) Decision {
	var enhanced bool
	if q.Has(paramMetricsEnhanced) {
		enhanced = q.Get(paramMetricsEnhanced) == "1" && useMetrics
	} else {
		enhanced = useMetrics && q.Get(paramDataset) == string(DatasetMetricsEnhanced)
	}

	if enhanced {
		return Decision{Dataset: DatasetMetricsEnhanced, MetricsEnhanced: true}
	}
	return Decision{Dataset: DatasetDiscover, DryRun: dryRun}
}
