// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

// Package discover defines the contract between the events API and the
// query-execution engines. Two engines answer the same query shape: the
// baseline ("discover") engine reads raw event data, the metrics-enhanced
// engine reads pre-aggregated metrics. Query planning, aggregation and
// storage live behind the Engine interface in an external service; this
// package is the client side only.
package discover

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Params is the resolved project/time/environment scope of a query.
type Params struct {
	OrganizationID int64     `json:"organization_id"`
	ProjectIDs     []int64   `json:"project_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Environments   []string  `json:"environment,omitempty"`
}

// QueryRequest is a fully resolved events query. It is constructed fresh per
// HTTP request, immutable once built, and consumed by an Engine.
type QueryRequest struct {
	SelectedColumns []string `json:"selected_columns"`
	Query           string   `json:"query,omitempty"`
	Params          Params   `json:"params"`
	Equations       []string `json:"equations,omitempty"`
	Orderby         []string `json:"orderby,omitempty"`
	Offset          int      `json:"offset"`
	Limit           int      `json:"limit"`
	Referrer        string   `json:"referrer"`

	AutoFields             bool `json:"auto_fields"`
	AutoAggregations       bool `json:"auto_aggregations"`
	UseAggregateConditions bool `json:"use_aggregate_conditions"`
	AllowMetricAggregates  bool `json:"allow_metric_aggregates"`
	TransformAliasToInput  bool `json:"transform_alias_to_input_format,omitempty"`

	// DryRun marks a non-authoritative compatibility probe. The engine
	// validates and plans the query without charging it against quotas; the
	// caller discards the result.
	DryRun bool `json:"dry_run,omitempty"`
}

// Meta describes result columns: value type per output field and, where
// known, its unit.
type Meta struct {
	Fields        map[string]string `json:"fields"`
	Units         map[string]string `json:"units,omitempty"`
	IsMetricsData bool              `json:"isMetricsData"`
}

// QueryResult is an engine's answer: raw rows plus column metadata.
type QueryResult struct {
	Data []map[string]interface{} `json:"data"`
	Meta Meta                     `json:"meta"`
}

// Engine executes events queries. Implementations block on network I/O and
// honor context cancellation.
type Engine interface {
	Query(ctx context.Context, req *QueryRequest) (*QueryResult, error)
}

// Engine failure kinds. The HTTP layer translates these to client-facing
// statuses; nothing else should inspect engine errors.
var (
	// ErrQueryTimeout: the engine gave up answering within its deadline.
	ErrQueryTimeout = errors.New("query timeout")

	// ErrRateLimited: the engine rejected the query for throttling.
	ErrRateLimited = errors.New("query rate limited")

	// ErrEngineUnavailable: transport failure, 5xx, or open circuit.
	ErrEngineUnavailable = errors.New("events engine unavailable")
)

// InvalidSearchQueryError reports a free-text query the engine could not
// parse. The message is safe to surface to clients.
type InvalidSearchQueryError struct {
	Message string
}

func (e *InvalidSearchQueryError) Error() string {
	return fmt.Sprintf("invalid search query: %s", e.Message)
}

// AsInvalidSearchQuery unwraps err as an InvalidSearchQueryError if it is one.
func AsInvalidSearchQuery(err error) (*InvalidSearchQueryError, bool) {
	var isq *InvalidSearchQueryError
	if errors.As(err, &isq) {
		return isq, true
	}
	return nil, false
}
