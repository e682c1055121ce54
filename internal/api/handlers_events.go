// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/faultline-hq/faultline/internal/auth"
	"github.com/faultline-hq/faultline/internal/discover"
	"github.com/faultline-hq/faultline/internal/flags"
	"github.com/faultline-hq/faultline/internal/logging"
	"github.com/faultline-hq/faultline/internal/metrics"
	"github.com/faultline-hq/faultline/internal/models"
	"github.com/faultline-hq/faultline/internal/pagination"
)

// eventsVariant captures what differs between the events endpoints: the
// gating feature, the referrer policy, and whether output aliases are
// translated back to their input expressions.
type eventsVariant struct {
	feature            string
	defaultReferrer    string
	forceTokenReferrer bool
	transformAlias     bool
}

var (
	eventsPrivate = eventsVariant{
		feature:            flags.DiscoverBasic,
		defaultReferrer:    referrerEventsDefault,
		forceTokenReferrer: true,
		transformAlias:     true,
	}

	eventsV2 = eventsVariant{
		feature:         flags.DiscoverQuery,
		defaultReferrer: referrerEventsV2Default,
	}
)

// OrganizationEvents serves GET /api/0/organizations/{organization_slug}/events/.
// This is the private variant: output field aliases are translated back to
// their input expressions, and API-token requests get the fixed token
// referrer.
func (h *Handler) OrganizationEvents(w http.ResponseWriter, r *http.Request) {
	h.serveEvents(w, r, eventsPrivate)
}

// OrganizationEventsV2 serves GET /api/0/organizations/{organization_slug}/events-v2/.
func (h *Handler) OrganizationEventsV2(w http.ResponseWriter, r *http.Request) {
	h.serveEvents(w, r, eventsV2)
}

func (h *Handler) serveEvents(w http.ResponseWriter, r *http.Request, variant eventsVariant) {
	ctx := r.Context()
	actor := auth.ActorFromContext(ctx)

	org, err := h.store.GetOrganization(ctx, chi.URLParam(r, "organization_slug"))
	if err != nil {
		// Unknown organizations and disabled features answer identically so
		// slugs cannot be probed.
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if !h.flags.Has(ctx, variant.feature, org.Slug, actor) {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	scope, err := h.resolveScope(r, org, actor)
	if err != nil {
		h.handleScopeError(w, err)
		return
	}

	q := r.URL.Query()

	referrer := normalizeReferrer(q.Get("referrer"), allowedEventsReferrers, variant.defaultReferrer)
	if variant.forceTokenReferrer && auth.IsTokenAuthenticated(ctx) {
		referrer = tokenAuthReferrer
	}

	// user_modified reports whether the client hand-edited the search input.
	// It is a diagnostic only; anything but the two boolean spellings is
	// dropped so clients cannot mint arbitrary label values.
	if modified := q.Get("user_modified"); modified == "true" || modified == "false" {
		metrics.RecordUserModifiedQuery(modified)
	}

	useMetrics := h.flags.Has(ctx, flags.PerformanceUseMetrics, org.Slug, actor) ||
		h.flags.Has(ctx, flags.DashboardsMEP, org.Slug, actor)
	dryRun := h.flags.Has(ctx, flags.PerformanceDryRunMEP, org.Slug, actor)
	decision := discover.SelectDataset(useMetrics, dryRun, q)

	perPage, err := resolvePerPage(r, h.cfg.API.DefaultPerPage, h.cfg.API.MaxPerPage)
	if err != nil {
		h.handleScopeError(w, err)
		return
	}

	buildQuery := func(offset, limit int) *discover.QueryRequest {
		return &discover.QueryRequest{
			SelectedColumns:        q["field"],
			Query:                  q.Get("query"),
			Params:                 scope,
			Equations:              q["equation"],
			Orderby:                q["sort"],
			Offset:                 offset,
			Limit:                  limit,
			Referrer:               referrer,
			AutoFields:             true,
			AutoAggregations:       true,
			UseAggregateConditions: true,
			AllowMetricAggregates:  q.Get("preventMetricAggregates") != "1",
			TransformAliasToInput:  variant.transformAlias,
		}
	}

	if decision.DryRun {
		h.dryRunProbe(ctx, buildQuery(0, perPage))
	}

	engine := h.engineFor(decision.Dataset)

	if q.Has("noPagination") {
		result, err := engine.Query(ctx, buildQuery(0, perPage))
		if err != nil {
			handleQueryError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, shapeResult(result, decision))
		return
	}

	cursor, err := parseCursorParam(q.Get("cursor"))
	if err != nil {
		h.handleScopeError(w, err)
		return
	}

	var lastResult *discover.QueryResult
	paginator := pagination.GenericOffsetPaginator{
		DataFn: func(offset, limit int) ([]map[string]interface{}, error) {
			result, err := engine.Query(ctx, buildQuery(offset, limit))
			if err != nil {
				return nil, err
			}
			lastResult = result
			return result.Data, nil
		},
	}

	page, err := paginator.GetResult(perPage, cursor)
	if err != nil {
		handleQueryError(w, err)
		return
	}

	w.Header().Set("Link", page.LinkHeader(h.absoluteRequestURL(r)))
	rows := page.Rows
	if rows == nil {
		rows = []map[string]interface{}{}
	}
	respondJSON(w, http.StatusOK, models.EventsResponse{
		Data: rows,
		Meta: models.EventsMeta{
			Fields:        lastResult.Meta.Fields,
			Units:         lastResult.Meta.Units,
			IsMetricsData: decision.MetricsEnhanced,
		},
	})
}

// dryRunProbe executes a non-authoritative metrics-enhanced copy of the
// query to gauge compatibility. The result is discarded and failures are
// suppressed; the only output is a diagnostic counter, so nothing on this
// path can affect the primary response.
func (h *Handler) dryRunProbe(ctx context.Context, req *discover.QueryRequest) {
	probe := *req
	probe.DryRun = true

	result, err := h.enhanced.Query(ctx, &probe)
	switch {
	case err == nil && result.Meta.IsMetricsData:
		metrics.RecordDryRunProbe("compatible")
	case err == nil:
		metrics.RecordDryRunProbe("incompatible")
	default:
		metrics.RecordDryRunProbe("error")
		logging.Debug().Err(err).Str("referrer", probe.Referrer).Msg("dry-run probe failed")
	}
}

// parseCursorParam parses the cursor query parameter, defaulting to the
// first page.
func parseCursorParam(raw string) (pagination.Cursor, error) {
	if raw == "" {
		return pagination.Cursor{}, nil
	}
	cursor, err := pagination.ParseCursor(raw)
	if err != nil {
		return pagination.Cursor{}, invalidParams("Invalid cursor parameter")
	}
	return cursor, nil
}

// shapeResult wraps raw rows with column metadata. Whether the enhanced
// dataset answered is reported from the selection decision, not trusted from
// the engine response.
func shapeResult(result *discover.QueryResult, decision discover.Decision) models.EventsResponse {
	data := result.Data
	if data == nil {
		data = []map[string]interface{}{}
	}
	return models.EventsResponse{
		Data: data,
		Meta: models.EventsMeta{
			Fields:        result.Meta.Fields,
			Units:         result.Meta.Units,
			IsMetricsData: decision.MetricsEnhanced,
		},
	}
}

// absoluteRequestURL rebuilds the request URL against the configured base so
// pagination links are absolute and environment-aware.
func (h *Handler) absoluteRequestURL(r *http.Request) *url.URL {
	u, err := url.Parse(h.base.Absolute(r.URL.RequestURI()))
	if err != nil {
		return r.URL
	}
	return u
}

// geoQuerySuffix restricts geo queries to events that carry a country code.
const geoQuerySuffix = "has:geo.country_code"

// geoMaxRows bounds geo result size: 250 ISO country codes plus one unknown
// bucket. Pagination is unnecessary at this bound.
const geoMaxRows = 251

// OrganizationEventsGeo serves GET /api/0/organizations/{organization_slug}/events-geo/.
// It answers exactly one aggregate grouped by country code.
func (h *Handler) OrganizationEventsGeo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := auth.ActorFromContext(ctx)

	org, err := h.store.GetOrganization(ctx, chi.URLParam(r, "organization_slug"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if !h.flags.Has(ctx, flags.DashboardsBasic, org.Slug, actor) {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	scope, err := h.resolveScope(r, org, actor)
	if err != nil {
		h.handleScopeError(w, err)
		return
	}

	q := r.URL.Query()

	aggregate := q.Get("field")
	if aggregate == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "No column selected", nil)
		return
	}
	if !discover.IsAggregateFunction(aggregate) {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Functions may only be given", nil)
		return
	}

	referrer := normalizeReferrer(q.Get("referrer"), allowedEventsGeoReferrers, referrerEventsGeo)

	perPage, err := resolvePerPage(r, geoMaxRows, geoMaxRows)
	if err != nil {
		h.handleScopeError(w, err)
		return
	}

	orderby := q["sort"]
	if len(orderby) == 0 {
		orderby = []string{aggregate}
	}

	query := strings.TrimSpace(q.Get("query") + " " + geoQuerySuffix)

	result, err := h.baseline.Query(ctx, &discover.QueryRequest{
		SelectedColumns:        []string{"geo.country_code", aggregate},
		Query:                  query,
		Params:                 scope,
		Orderby:                orderby,
		Limit:                  perPage,
		Referrer:               referrer,
		UseAggregateConditions: true,
	})
	if err != nil {
		handleQueryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, shapeResult(result, discover.Decision{Dataset: discover.DatasetDiscover}))
}
