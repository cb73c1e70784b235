// Package external provides the anti-corruption layer between the alert
// engine and third-party vendor APIs (OpenWeather, Pushover). All outbound
// HTTP calls are routed through BaseClient, which applies the circuit
// breaker, header injection, and transport error mapping.
package external

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"rainalert/internal/types"
)

const (
	userAgent = "rainalert/1.0"

	// runIDHeader carries the run ID on outbound requests for log correlation.
	runIDHeader = "X-Run-Id"
)

// ErrorCodes selects which AppError codes a BaseClient reports for transport
// failures. Each vendor client maps HTTP statuses itself.
type ErrorCodes struct {
	Unavailable types.ErrorCode
	RateLimited types.ErrorCode
}

var (
	// ProviderCodes is used by forecast provider clients.
	ProviderCodes = ErrorCodes{
		Unavailable: types.ErrCodeProviderUnavailable,
		RateLimited: types.ErrCodeProviderRateLimited,
	}
	// NotifierCodes is used by notification clients.
	NotifierCodes = ErrorCodes{
		Unavailable: types.ErrCodeNotifierUnavailable,
		RateLimited: types.ErrCodeNotifierUnavailable,
	}
)

// BaseClient wraps an *http.Client and a circuit breaker. Requests are sent
// exactly once: a run is a single best-effort pass and the next scheduled run
// is the retry.
type BaseClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	codes     ErrorCodes
	userAgent string
}

// NewBaseClient creates a BaseClient whose breaker opens after five
// consecutive failures and half-opens after 30 seconds. The breaker only
// matters in warm Lambda containers where the client outlives a run.
func NewBaseClient(httpClient *http.Client, breakerName string, codes ErrorCodes, userAgent string) *BaseClient {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return NewBaseClientWithBreaker(httpClient, cb, codes, userAgent)
}

// NewBaseClientWithBreaker creates a BaseClient with a caller-provided
// circuit breaker.
func NewBaseClientWithBreaker(
	httpClient *http.Client,
	breaker *gobreaker.CircuitBreaker[*http.Response],
	codes ErrorCodes,
	userAgent string,
) *BaseClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &BaseClient{
		client:    httpClient,
		breaker:   breaker,
		codes:     codes,
		userAgent: userAgent,
	}
}

// Do executes the request once through the circuit breaker.
//
// Any HTTP response, including 4xx and 5xx, is returned as-is and the caller
// maps the status; 429 and 5xx still count as breaker failures. Transport
// failures and an open breaker are returned as a *types.AppError. The caller
// closes the response body.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if runID := types.GetRunID(req.Context()); runID != "" {
		req.Header.Set(runIDHeader, runID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		return r, nil
	})
	if resp != nil {
		return resp, nil
	}
	return nil, c.mapError(err)
}

// mapError translates transport-level failures into AppErrors.
func (c *BaseClient) mapError(err error) *types.AppError {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewAppError(
			c.codes.Unavailable,
			"circuit breaker is open; upstream service unavailable",
			err,
		)
	}
	return types.NewAppError(
		c.codes.Unavailable,
		"upstream request failed",
		err,
	)
}

// State reports the breaker state for logging.
func (c *BaseClient) State() gobreaker.State {
	return c.breaker.State()
}
