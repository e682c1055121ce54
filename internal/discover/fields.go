// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package discover

import (
	"regexp"
	"strings"
)

// functionRe matches aggregate function expressions like "count()" or
// "percentile(transaction.duration, 0.95)".
var functionRe = regexp.MustCompile(`^\s*(\w+)\((.*)\)\s*$`)

// aggregateFunctions is the set of aggregate function names the engines
// accept. Column expressions outside this set are plain fields.
var aggregateFunctions = map[string]bool{
	"count":           true,
	"count_unique":    true,
	"count_if":        true,
	"count_miserable": true,
	"avg":             true,
	"min":             true,
	"max":             true,
	"sum":             true,
	"any":             true,
	"percentile":      true,
	"p50":             true,
	"p75":             true,
	"p95":             true,
	"p99":             true,
	"p100":            true,
	"apdex":           true,
	"user_misery":     true,
	"failure_rate":    true,
	"failure_count":   true,
	"eps":             true,
	"epm":             true,
	"last_seen":       true,
}

// IsAggregateFunction reports whether the field expression is a recognized
// aggregate function call.
func IsAggregateFunction(field string) bool {
	m := functionRe.FindStringSubmatch(field)
	if m == nil {
		return false
	}
	return aggregateFunctions[strings.ToLower(m[1])]
}
