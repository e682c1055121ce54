// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/faultline-hq/faultline/internal/auth"
	"github.com/faultline-hq/faultline/internal/config"
	"github.com/faultline-hq/faultline/internal/discover"
	"github.com/faultline-hq/faultline/internal/flags"
	"github.com/faultline-hq/faultline/internal/links"
	"github.com/faultline-hq/faultline/internal/models"
)

// fakeEngine records every query it receives and answers from a canned
// result or error.
type fakeEngine struct {
	mu       sync.Mutex
	requests []*discover.QueryRequest
	result   *discover.QueryResult
	err      error
}

func (f *fakeEngine) Query(_ context.Context, req *discover.QueryRequest) (*discover.QueryResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &discover.QueryResult{
		Data: []map[string]interface{}{},
		Meta: discover.Meta{Fields: map[string]string{}},
	}, nil
}

func (f *fakeEngine) lastRequest(t *testing.T) *discover.QueryRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("engine was never queried")
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeEngine) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

const testJWTSecret = "0123456789abcdef0123456789abcdef"

// testEnv bundles a fully wired router with its fakes.
type testEnv struct {
	router   http.Handler
	baseline *fakeEngine
	enhanced *fakeEngine
	tokens   *auth.TokenManager
}

// newTestEnv wires a handler against an "acme" organization with two
// projects and an "empty" organization with none. orgFlags follows the
// static-resolver shape: slug -> enabled flags.
func newTestEnv(t *testing.T, orgFlags map[string][]string) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "https://faultline.example"},
		API:    config.APIConfig{DefaultPerPage: 50, MaxPerPage: 100},
		Organizations: []config.OrganizationConfig{
			{
				ID:   1,
				Slug: "acme",
				Projects: []config.ProjectConfig{
					{ID: 10, Slug: "frontend"},
					{ID: 11, Slug: "backend"},
				},
			},
			{ID: 2, Slug: "empty"},
		},
		Security: config.SecurityConfig{JWTSecret: testJWTSecret, RateLimitDisabled: true},
	}

	base, err := links.NewBaseResolver(cfg.Server.BaseURL)
	if err != nil {
		t.Fatalf("NewBaseResolver: %v", err)
	}
	tokens, err := auth.NewTokenManager(cfg.Security.JWTSecret)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	baseline := &fakeEngine{}
	enhanced := &fakeEngine{}
	handler := NewHandler(cfg, NewStaticStore(cfg.Organizations),
		flags.NewStaticResolver(orgFlags), baseline, enhanced, base)

	return &testEnv{
		router:   NewRouter(cfg, handler, tokens).Setup(),
		baseline: baseline,
		enhanced: enhanced,
		tokens:   tokens,
	}
}

func allEventsFlags() map[string][]string {
	return map[string][]string{
		"*": {flags.DiscoverBasic, flags.DiscoverQuery, flags.DashboardsBasic},
	}
}

func (env *testEnv) get(t *testing.T, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for key, values := range header {
		req.Header[key] = values
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeEvents(t *testing.T, rec *httptest.ResponseRecorder) models.EventsResponse {
	t.Helper()
	var resp models.EventsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode events response: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func TestEventsFeatureGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
	}{
		{"events", "/api/0/organizations/acme/events/?field=title"},
		{"events-v2", "/api/0/organizations/acme/events-v2/?field=title"},
		{"events-geo", "/api/0/organizations/acme/events-geo/?field=count()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, nil)

			rec := env.get(t, tt.path, nil)
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
			if rec.Body.Len() != 0 {
				t.Errorf("body should be empty, got %q", rec.Body.String())
			}
			if env.baseline.queryCount() != 0 {
				t.Error("engine must not be queried when the feature is off")
			}
		})
	}
}

func TestEventsUnknownOrganization(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, allEventsFlags())
	rec := env.get(t, "/api/0/organizations/nobody/events/?field=title", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body should be empty, got %q", rec.Body.String())
	}
}

func TestEventsNoProjects(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, allEventsFlags())
	rec := env.get(t, "/api/0/organizations/empty/events/?field=title", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
	if env.baseline.queryCount() != 0 {
		t.Error("engine must not be queried without projects")
	}
}

func TestEventsInvalidParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{"unknown project", "field=title&project=999"},
		{"malformed project", "field=title&project=abc"},
		{"start without end", "field=title&start=2026-08-01"},
		{"start after end", "field=title&start=2026-08-10&end=2026-08-01"},
		{"statsPeriod with range", "field=title&statsPeriod=7d&start=2026-08-01&end=2026-08-10"},
		{"bad statsPeriod", "field=title&statsPeriod=7x"},
		{"per_page over max", "field=title&per_page=101"},
		{"per_page zero", "field=title&per_page=0"},
		{"bad cursor", "field=title&cursor=bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, allEventsFlags())

			rec := env.get(t, "/api/0/organizations/acme/events/?"+tt.query, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400\nbody: %s", rec.Code, rec.Body.String())
			}

			var resp models.APIResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body did not decode: %v", err)
			}
			if resp.Error == nil || resp.Error.Message == "" {
				t.Error("error response must carry a message")
			}
		})
	}
}

func TestEventsReferrerNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		referrer string
		want     string
	}{
		{"missing defaults", "/api/0/organizations/acme/events/", "", "api.organization-events"},
		{"unknown coerced", "/api/0/organizations/acme/events/", "api.made-up", "api.organization-events"},
		{"allowlisted passes", "/api/0/organizations/acme/events/", "api.discover.query-table", "api.discover.query-table"},
		{"vital-detail passes", "/api/0/organizations/acme/events/", "api.performance.vital-detail", "api.performance.vital-detail"},
		{"v2 default", "/api/0/organizations/acme/events-v2/", "", "api.organization-events-v2"},
		{"v2 unknown coerced", "/api/0/organizations/acme/events-v2/", "api.made-up", "api.organization-events-v2"},
		{"allow-list is shared with v2", "/api/0/organizations/acme/events-v2/", "api.performance.landing-table", "api.performance.landing-table"},
		{"events default passes on v2", "/api/0/organizations/acme/events-v2/", "api.organization-events", "api.organization-events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, allEventsFlags())

			path := tt.path + "?field=title&noPagination=1"
			if tt.referrer != "" {
				path += "&referrer=" + tt.referrer
			}
			rec := env.get(t, path, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
			}
			if got := env.baseline.lastRequest(t).Referrer; got != tt.want {
				t.Errorf("referrer = %q, want %q", got, tt.want)
			}
		})
	}
}

// userModifiedCount reads the diagnostic counter for one label value from
// the default registry, returning 0 when the series does not exist.
func userModifiedCount(t *testing.T, modified string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "api_user_modified_queries_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == "modified" && pair.GetValue() == modified {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestEventsUserModifiedDiagnostic(t *testing.T) {
	env := newTestEnv(t, allEventsFlags())

	trueBefore := userModifiedCount(t, "true")
	falseBefore := userModifiedCount(t, "false")

	for _, value := range []string{"true", "false", "maybe"} {
		rec := env.get(t, "/api/0/organizations/acme/events-v2/?field=title&noPagination=1&user_modified="+value, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("user_modified=%s status = %d\nbody: %s", value, rec.Code, rec.Body.String())
		}
	}

	if got := userModifiedCount(t, "true"); got != trueBefore+1 {
		t.Errorf("true counter = %v, want %v", got, trueBefore+1)
	}
	if got := userModifiedCount(t, "false"); got != falseBefore+1 {
		t.Errorf("false counter = %v, want %v", got, falseBefore+1)
	}
	// Off-list values must never become label values.
	if got := userModifiedCount(t, "maybe"); got != 0 {
		t.Errorf("maybe counter = %v, want no series", got)
	}
}

func TestEventsTokenReferrerForcing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, allEventsFlags())
	token, err := env.tokens.GenerateToken("robot", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	header := http.Header{"Authorization": {"Bearer " + token}}

	// The private events endpoint always forces the token referrer, even
	// over an allowlisted value.
	rec := env.get(t, "/api/0/organizations/acme/events/?field=title&noPagination=1&referrer=api.discover.query-table", header)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	if got := env.baseline.lastRequest(t).Referrer; got != "api.auth-token.events" {
		t.Errorf("events referrer = %q, want api.auth-token.events", got)
	}

	// V2 does not force it.
	rec = env.get(t, "/api/0/organizations/acme/events-v2/?field=title&noPagination=1&referrer=api.discover.query-table", header)
	if rec.Code != http.StatusOK {
		t.Fatalf("v2 status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	if got := env.baseline.lastRequest(t).Referrer; got != "api.discover.query-table" {
		t.Errorf("v2 referrer = %q, want api.discover.query-table", got)
	}
}

func TestEventsEngineSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		orgFlags     []string
		query        string
		wantEnhanced bool
	}{
		{
			name:     "no flags stays baseline despite override",
			orgFlags: []string{flags.DiscoverBasic},
			query:    "metricsEnhanced=1",
		},
		{
			name:         "performance flag plus override upgrades",
			orgFlags:     []string{flags.DiscoverBasic, flags.PerformanceUseMetrics},
			query:        "metricsEnhanced=1",
			wantEnhanced: true,
		},
		{
			name:         "dashboards flag plus dataset param upgrades",
			orgFlags:     []string{flags.DiscoverBasic, flags.DashboardsMEP},
			query:        "dataset=metricsEnhanced",
			wantEnhanced: true,
		},
		{
			name:     "eligibility without opt-in stays baseline",
			orgFlags: []string{flags.DiscoverBasic, flags.PerformanceUseMetrics},
			query:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, map[string][]string{"acme": tt.orgFlags})

			path := "/api/0/organizations/acme/events/?field=title&noPagination=1"
			if tt.query != "" {
				path += "&" + tt.query
			}
			rec := env.get(t, path, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
			}

			if tt.wantEnhanced {
				if env.enhanced.queryCount() != 1 || env.baseline.queryCount() != 0 {
					t.Errorf("enhanced=%d baseline=%d, want enhanced only",
						env.enhanced.queryCount(), env.baseline.queryCount())
				}
				resp := decodeEvents(t, rec)
				if !resp.Meta.IsMetricsData {
					t.Error("meta.isMetricsData should be true for enhanced queries")
				}
			} else {
				if env.baseline.queryCount() != 1 || env.enhanced.queryCount() != 0 {
					t.Errorf("enhanced=%d baseline=%d, want baseline only",
						env.enhanced.queryCount(), env.baseline.queryCount())
				}
			}
		})
	}
}

func TestEventsDryRunProbe(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, map[string][]string{
		"acme": {flags.DiscoverBasic, flags.PerformanceDryRunMEP},
	})
	env.baseline.result = &discover.QueryResult{
		Data: []map[string]interface{}{{"title": "oops"}},
		Meta: discover.Meta{Fields: map[string]string{"title": "string"}},
	}
	// Probe failures must never reach the client.
	env.enhanced.err = discover.ErrEngineUnavailable

	rec := env.get(t, "/api/0/organizations/acme/events/?field=title&noPagination=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}

	if env.enhanced.queryCount() != 1 {
		t.Fatalf("enhanced probe count = %d, want 1", env.enhanced.queryCount())
	}
	probe := env.enhanced.lastRequest(t)
	if !probe.DryRun {
		t.Error("probe request must set DryRun")
	}
	primary := env.baseline.lastRequest(t)
	if primary.DryRun {
		t.Error("primary request must not set DryRun")
	}

	resp := decodeEvents(t, rec)
	if len(resp.Data) != 1 || resp.Data[0]["title"] != "oops" {
		t.Errorf("primary result was affected by the probe: %+v", resp.Data)
	}
}

func TestEventsDryRunSkippedOnEnhanced(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, map[string][]string{
		"acme": {flags.DiscoverBasic, flags.PerformanceUseMetrics, flags.PerformanceDryRunMEP},
	})

	rec := env.get(t, "/api/0/organizations/acme/events/?field=title&noPagination=1&metricsEnhanced=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	// One authoritative enhanced query, no probe on top of it.
	if env.enhanced.queryCount() != 1 {
		t.Errorf("enhanced count = %d, want 1", env.enhanced.queryCount())
	}
	if env.enhanced.lastRequest(t).DryRun {
		t.Error("authoritative enhanced query must not be a dry run")
	}
}

func TestEventsNoPagination(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, allEventsFlags())
	rec := env.get(t, "/api/0/organizations/acme/events/?field=title&noPagination=1&per_page=25", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}

	if rec.Header().Get("Link") != "" {
		t.Error("noPagination responses must not carry Link headers")
	}
	req := env.baseline.lastRequest(t)
	if req.Offset != 0 || req.Limit != 25 {
		t.Errorf("offset=%d limit=%d, want 0/25", req.Offset, req.Limit)
	}
}

func TestEventsPagination(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, allEventsFlags())
	// Return limit+1 rows so a next page exists.
	rows := make([]map[string]interface{}, 3)
	for i := range rows {
		rows[i] = map[string]interface{}{"id": i}
	}
	env.baseline.result = &discover.QueryResult{
		Data: rows,
		Meta: discover.Meta{Fields: map[string]string{"id": "integer"}},
	}

	rec := env.get(t, "/api/0/organizations/acme/events/?field=id&per_page=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}

	req := env.baseline.lastRequest(t)
	if req.Limit != 3 {
		t.Errorf("engine limit = %d, want per_page+1", req.Limit)
	}

	resp := decodeEvents(t, rec)
	if len(resp.Data) != 2 {
		t.Errorf("rows = %d, want per_page", len(resp.Data))
	}

	link := rec.Header().Get("Link")
	if !strings.Contains(link, `rel="next"; results="true"; cursor="0:2:0"`) {
		t.Errorf("Link header missing next cursor: %s", link)
	}
	if !strings.Contains(link, `rel="previous"; results="false"`) {
		t.Errorf("Link header missing previous cursor: %s", link)
	}
	if !strings.Contains(link, "https://faultline.example/api/0/organizations/acme/events/") {
		t.Errorf("Link header must be absolute: %s", link)
	}
}

func TestEventsCursorAdvancesOffset(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, allEventsFlags())
	rec := env.get(t, "/api/0/organizations/acme/events/?field=id&per_page=10&cursor=0:20:0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	if got := env.baseline.lastRequest(t).Offset; got != 20 {
		t.Errorf("offset = %d, want 20", got)
	}
}

func TestEventsQueryErrorBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"timeout", discover.ErrQueryTimeout, http.StatusBadRequest, "QUERY_TIMEOUT"},
		{"rate limited", discover.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"invalid query", &discover.InvalidSearchQueryError{Message: "Parse error"}, http.StatusBadRequest, "INVALID_SEARCH_QUERY"},
		{"unavailable", discover.ErrEngineUnavailable, http.StatusInternalServerError, "ENGINE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, allEventsFlags())
			env.baseline.err = tt.err

			rec := env.get(t, "/api/0/organizations/acme/events/?field=title", nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var resp models.APIResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body did not decode: %v", err)
			}
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.wantCode)
			}
			if tt.name == "invalid query" && resp.Error.Message != "Parse error" {
				t.Errorf("message = %q, want upstream parse message", resp.Error.Message)
			}
		})
	}
}

func TestEventsAliasTransform(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, allEventsFlags())

	rec := env.get(t, "/api/0/organizations/acme/events/?field=title&noPagination=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !env.baseline.lastRequest(t).TransformAliasToInput {
		t.Error("private events endpoint must request alias transformation")
	}

	rec = env.get(t, "/api/0/organizations/acme/events-v2/?field=title&noPagination=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("v2 status = %d", rec.Code)
	}
	if env.baseline.lastRequest(t).TransformAliasToInput {
		t.Error("v2 endpoint must not request alias transformation")
	}
}

func TestEventsMetricAggregateGate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, allEventsFlags())

	rec := env.get(t, "/api/0/organizations/acme/events/?field=title&noPagination=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !env.baseline.lastRequest(t).AllowMetricAggregates {
		t.Error("metric aggregates allowed by default")
	}

	rec = env.get(t, "/api/0/organizations/acme/events/?field=title&noPagination=1&preventMetricAggregates=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if env.baseline.lastRequest(t).AllowMetricAggregates {
		t.Error("preventMetricAggregates=1 must disable metric aggregates")
	}
}

func TestEventsProjectScope(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, allEventsFlags())

	rec := env.get(t, "/api/0/organizations/acme/events/?field=title&noPagination=1&project=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	req := env.baseline.lastRequest(t)
	if len(req.Params.ProjectIDs) != 1 || req.Params.ProjectIDs[0] != 10 {
		t.Errorf("project scope = %v, want [10]", req.Params.ProjectIDs)
	}

	rec = env.get(t, "/api/0/organizations/acme/events/?field=title&noPagination=1&project=-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := env.baseline.lastRequest(t).Params.ProjectIDs; len(got) != 2 {
		t.Errorf("wildcard project scope = %v, want both projects", got)
	}
}

func TestGeoEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantMsg    string
	}{
		{"missing field", "", http.StatusBadRequest, "No column selected"},
		{"plain column", "field=geo.city", http.StatusBadRequest, "Functions may only be given"},
		{"non-aggregate function", "field=mystery(x)", http.StatusBadRequest, "Functions may only be given"},
		{"aggregate accepted", "field=count()", http.StatusOK, ""},
		{"per_page over cap", "field=count()&per_page=300", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, allEventsFlags())

			rec := env.get(t, "/api/0/organizations/acme/events-geo/?"+tt.query, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantMsg != "" {
				var resp models.APIResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("error body did not decode: %v", err)
				}
				if resp.Error == nil || resp.Error.Message != tt.wantMsg {
					t.Errorf("error = %+v, want message %q", resp.Error, tt.wantMsg)
				}
			}
		})
	}
}

func TestGeoQueryShape(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, allEventsFlags())
	rec := env.get(t, "/api/0/organizations/acme/events-geo/?field=count()&query=event.type:transaction", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}

	req := env.baseline.lastRequest(t)
	if len(req.SelectedColumns) != 2 || req.SelectedColumns[0] != "geo.country_code" || req.SelectedColumns[1] != "count()" {
		t.Errorf("columns = %v", req.SelectedColumns)
	}
	if req.Query != "event.type:transaction has:geo.country_code" {
		t.Errorf("query = %q", req.Query)
	}
	if req.Limit != 251 {
		t.Errorf("limit = %d, want 251", req.Limit)
	}
	if len(req.Orderby) != 1 || req.Orderby[0] != "count()" {
		t.Errorf("orderby = %v, want bare aggregate", req.Orderby)
	}
	if req.Referrer != "api.organization-events-geo" {
		t.Errorf("referrer = %q", req.Referrer)
	}
	if rec.Header().Get("Link") != "" {
		t.Error("geo responses must not carry Link headers")
	}
}

func TestGeoEmptyQuerySuffix(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, allEventsFlags())
	rec := env.get(t, "/api/0/organizations/acme/events-geo/?field=count()", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := env.baseline.lastRequest(t).Query; got != "has:geo.country_code" {
		t.Errorf("query = %q, want bare country-code filter", got)
	}
}
