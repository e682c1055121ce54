// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package discover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/faultline-hq/faultline/internal/logging"
	"github.com/faultline-hq/faultline/internal/metrics"
)

// ClientConfig configures an HTTPEngine transport.
type ClientConfig struct {
	// URL is the engine's query endpoint.
	URL string

	// Timeout bounds a single query round trip.
	Timeout time.Duration

	// RateLimit/RateBurst throttle outbound queries. A zero RateLimit
	// disables throttling.
	RateLimit float64
	RateBurst int

	// BreakerMaxFailures consecutive transport failures open the circuit
	// for BreakerTimeout.
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
}

// HTTPEngine is an Engine backed by an HTTP query service. Each query is a
// single POST; the breaker sheds load from a failing backend and the limiter
// keeps this process inside its query budget.
type HTTPEngine struct {
	dataset Dataset
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	limiter *rate.Limiter
}

// NewHTTPEngine creates an engine client for the given dataset.
func NewHTTPEngine(dataset Dataset, cfg ClientConfig) *HTTPEngine {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout == 0 {
		breakerTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    fmt.Sprintf("engine-%s", dataset),
		Timeout: breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("engine circuit breaker state change")
		},
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &HTTPEngine{
		dataset: dataset,
		url:     cfg.URL,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		limiter: limiter,
	}
}

// Dataset returns the dataset this engine answers for.
func (e *HTTPEngine) Dataset() Dataset { return e.dataset }

// Query executes one events query against the backend.
//
// Error classification: transport failures, 5xx responses and an open
// circuit become ErrEngineUnavailable; deadline expiry and upstream 504
// become ErrQueryTimeout; 429 becomes ErrRateLimited; a 400 with an error
// body becomes InvalidSearchQueryError. Only transport-level failures count
// against the circuit breaker, so a flood of unparsable queries cannot trip
// it.
func (e *HTTPEngine) Query(ctx context.Context, req *QueryRequest) (*QueryResult, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query request: %w", err)
	}

	start := time.Now()
	resp, err := e.breaker.Execute(func() (*http.Response, error) {
		return e.roundTrip(ctx, body)
	})
	if err != nil {
		metrics.RecordEngineError(string(e.dataset), classifyErrorKind(err))
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrEngineUnavailable)
		}
		return nil, err
	}
	defer resp.Body.Close()

	result, err := e.decodeResponse(resp)
	if err != nil {
		metrics.RecordEngineError(string(e.dataset), classifyErrorKind(err))
		return nil, err
	}

	metrics.RecordEngineQuery(string(e.dataset), req.Referrer, time.Since(start))
	return result, nil
}

// roundTrip performs the POST and converts transport-level failures into
// engine error kinds. Runs inside the circuit breaker.
func (e *HTTPEngine) roundTrip(ctx context.Context, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, ErrQueryTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusGatewayTimeout {
			return nil, ErrQueryTimeout
		}
		return nil, fmt.Errorf("%w: engine returned %d", ErrEngineUnavailable, resp.StatusCode)
	}

	return resp, nil
}

// decodeResponse maps non-5xx statuses to results or client-level errors.
// These do not count against the breaker.
func (e *HTTPEngine) decodeResponse(resp *http.Response) (*QueryResult, error) {
	switch resp.StatusCode {
	case http.StatusOK:
		var result QueryResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("%w: malformed engine response: %v", ErrEngineUnavailable, err)
		}
		if result.Data == nil {
			result.Data = []map[string]interface{}{}
		}
		return &result, nil

	case http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, ErrRateLimited

	case http.StatusBadRequest:
		var engineErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&engineErr); err != nil || engineErr.Error == "" {
			engineErr.Error = "could not parse search query"
		}
		return nil, &InvalidSearchQueryError{Message: engineErr.Error}

	default:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: unexpected engine status %d", ErrEngineUnavailable, resp.StatusCode)
	}
}

// classifyErrorKind labels an engine error for metrics.
func classifyErrorKind(err error) string {
	if _, ok := AsInvalidSearchQuery(err); ok {
		return "invalid_query"
	}
	switch {
	case errors.Is(err, ErrQueryTimeout):
		return "timeout"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	default:
		return "unavailable"
	}
}

// isTimeout reports whether err is a network timeout.
func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
