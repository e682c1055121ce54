// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package api

import (
	"errors"
	"net/http"

	"github.com/faultline-hq/faultline/internal/discover"
)

// handleQueryError is the single translation boundary between engine failure
// kinds and client-facing statuses. Timeouts surface as 400 so clients
// narrow the query instead of retrying it verbatim; rate limits as 429;
// everything unclassified as 500. No partial rows accompany any of these.
func handleQueryError(w http.ResponseWriter, err error) {
	if isq, ok := discover.AsInvalidSearchQuery(err); ok {
		respondError(w, http.StatusBadRequest, "INVALID_SEARCH_QUERY", isq.Message, nil)
		return
	}

	switch {
	case errors.Is(err, discover.ErrQueryTimeout):
		respondError(w, http.StatusBadRequest, "QUERY_TIMEOUT",
			"Query timeout. Please try again. If the problem persists try a smaller date range or fewer projects.", nil)
	case errors.Is(err, discover.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, "RATE_LIMITED",
			"Query rate limited. Please try again later.", nil)
	default:
		respondError(w, http.StatusInternalServerError, "ENGINE_ERROR",
			"Internal error. Your query failed to run.", err)
	}
}

// handleScopeError answers scope-resolution failures. errNoProjects is not
// an error to clients: an actor with nothing to query gets an empty result
// set.
func (h *Handler) handleScopeError(w http.ResponseWriter, err error) {
	var invalid *invalidParamsError
	switch {
	case errors.Is(err, errNoProjects):
		respondJSON(w, http.StatusOK, []interface{}{})
	case errors.As(err, &invalid):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", invalid.message, nil)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Failed to resolve request scope.", err)
	}
}
