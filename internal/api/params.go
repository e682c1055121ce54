// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/faultline-hq/faultline/internal/discover"
	"github.com/faultline-hq/faultline/internal/models"
)

// defaultStatsPeriod is the query window applied when the request carries
// neither statsPeriod nor an explicit start/end pair.
const defaultStatsPeriod = 90 * 24 * time.Hour

// errNoProjects means the actor has zero accessible projects in the
// organization. Handlers answer it with an empty 200, never an error.
var errNoProjects = errors.New("no accessible projects")

// invalidParamsError carries a client-safe message for a malformed scope or
// query parameter. Handlers answer it with 400.
type invalidParamsError struct {
	message string
}

func (e *invalidParamsError) Error() string { return e.message }

func invalidParams(format string, args ...interface{}) error {
	return &invalidParamsError{message: fmt.Sprintf(format, args...)}
}

// scopeRequest holds the raw scope parameters for struct validation before
// any parsing happens.
type scopeRequest struct {
	StatsPeriod string `validate:"omitempty,stats_period"`
	Cursor      string `validate:"omitempty,offset_cursor"`
}

// resolveScope derives the query's project/time/environment scope from the
// request. Project access is decided by the store; requesting a project
// outside the accessible set is a parameter error, while having no
// accessible projects at all is the errNoProjects sentinel.
func (h *Handler) resolveScope(r *http.Request, org *models.Organization, actor string) (discover.Params, error) {
	projects, err := h.store.GetProjects(r.Context(), org.ID, actor)
	if err != nil {
		return discover.Params{}, err
	}
	if len(projects) == 0 {
		return discover.Params{}, errNoProjects
	}

	q := r.URL.Query()

	req := scopeRequest{
		StatsPeriod: q.Get("statsPeriod"),
		Cursor:      q.Get("cursor"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		return discover.Params{}, invalidParams("%s", apiErr.Message)
	}

	projectIDs, err := resolveProjectIDs(q["project"], projects)
	if err != nil {
		return discover.Params{}, err
	}

	start, end, err := resolveDateRange(q.Get("start"), q.Get("end"), req.StatsPeriod)
	if err != nil {
		return discover.Params{}, err
	}

	return discover.Params{
		OrganizationID: org.ID,
		ProjectIDs:     projectIDs,
		Start:          start,
		End:            end,
		Environments:   q["environment"],
	}, nil
}

// resolveProjectIDs narrows the accessible project set to the requested one.
// No project parameter, or the wildcard "-1", selects every accessible
// project.
func resolveProjectIDs(requested []string, accessible []models.Project) ([]int64, error) {
	byID := make(map[int64]bool, len(accessible))
	all := make([]int64, 0, len(accessible))
	for _, p := range accessible {
		byID[p.ID] = true
		all = append(all, p.ID)
	}

	if len(requested) == 0 {
		return all, nil
	}

	ids := make([]int64, 0, len(requested))
	for _, raw := range requested {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, invalidParams("Invalid project ids")
		}
		if id == -1 {
			return all, nil
		}
		if !byID[id] {
			return nil, invalidParams("Invalid project ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// resolveDateRange turns start/end or statsPeriod into an absolute window.
// start and end must be supplied together and are mutually exclusive with
// statsPeriod; with neither present the default window applies.
func resolveDateRange(startRaw, endRaw, statsPeriod string) (time.Time, time.Time, error) {
	var zero time.Time

	if (startRaw == "") != (endRaw == "") {
		return zero, zero, invalidParams("start and end must be provided together")
	}

	if startRaw != "" {
		if statsPeriod != "" {
			return zero, zero, invalidParams("statsPeriod cannot be combined with start and end")
		}
		start, err := parseTimestamp(startRaw)
		if err != nil {
			return zero, zero, invalidParams("%q is not a valid date", startRaw)
		}
		end, err := parseTimestamp(endRaw)
		if err != nil {
			return zero, zero, invalidParams("%q is not a valid date", endRaw)
		}
		if !start.Before(end) {
			return zero, zero, invalidParams("start must be before end")
		}
		return start, end, nil
	}

	window := defaultStatsPeriod
	if statsPeriod != "" {
		parsed, err := parseStatsPeriod(statsPeriod)
		if err != nil {
			return zero, zero, err
		}
		window = parsed
	}
	end := time.Now().UTC()
	return end.Add(-window), end, nil
}

// parseTimestamp accepts RFC 3339 timestamps and bare dates.
func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parseStatsPeriod converts a relative window like "14d" or "12h" into a
// duration. The shape is pre-validated by the stats_period validator.
func parseStatsPeriod(raw string) (time.Duration, error) {
	if len(raw) < 2 {
		return 0, invalidParams("%q is not a valid statsPeriod", raw)
	}
	value, err := strconv.Atoi(raw[:len(raw)-1])
	if err != nil || value < 1 {
		return 0, invalidParams("%q is not a valid statsPeriod", raw)
	}

	var unit time.Duration
	switch raw[len(raw)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	default:
		return 0, invalidParams("%q is not a valid statsPeriod", raw)
	}
	return time.Duration(value) * unit, nil
}

// resolvePerPage reads per_page with the endpoint's default, rejecting
// values outside [1, max].
func resolvePerPage(r *http.Request, defaultPerPage, maxPerPage int) (int, error) {
	perPage := getIntParam(r, "per_page", defaultPerPage)
	if perPage < 1 {
		return 0, invalidParams("Invalid per_page value. Must be a positive integer")
	}
	if perPage > maxPerPage {
		return 0, invalidParams("Invalid per_page value. Cannot exceed %d", maxPerPage)
	}
	return perPage, nil
}
