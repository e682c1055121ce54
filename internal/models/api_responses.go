// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package models

import "time"

// APIResponse is the standardized envelope used by the HTTP layer for error
// responses and simple payloads.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - INVALID_SEARCH_QUERY: The free-text query failed to parse upstream
//   - QUERY_TIMEOUT: The events engine timed out answering the query
//   - RATE_LIMITED: The events engine rejected the query for throttling
//   - ENGINE_ERROR: Unclassified upstream failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// EventsMeta describes the result columns of an events query: the value type
// per output field and, where known, its unit. IsMetricsData reports whether
// the metrics-enhanced dataset answered the query.
type EventsMeta struct {
	Fields        map[string]string `json:"fields"`
	Units         map[string]string `json:"units,omitempty"`
	IsMetricsData bool              `json:"isMetricsData"`
}

// EventsResponse is the body of a successful events query: raw rows plus the
// field metadata clients need to render them.
type EventsResponse struct {
	Data []map[string]interface{} `json:"data"`
	Meta EventsMeta               `json:"meta"`
}
