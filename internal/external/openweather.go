package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"rainalert/internal/types"
)

const (
	openWeatherAPIBase = "https://api.openweathermap.org"
	oneCallPath        = "/data/3.0/onecall"

	// maxErrorBody caps how much of an error response is kept in details.
	maxErrorBody = 512
)

// OneCallResponse is the subset of the One Call 3.0 payload the alert job
// reads. Fields are pointers where absence must be distinguishable from zero.
type OneCallResponse struct {
	Timezone       string            `json:"timezone"`
	TimezoneOffset int               `json:"timezone_offset"`
	Current        *OneCallCurrent   `json:"current"`
	Minutely       []OneCallMinutely `json:"minutely"`
	Hourly         []OneCallHourly   `json:"hourly"`
}

// OneCallCurrent is the "current" block.
type OneCallCurrent struct {
	Dt        int64    `json:"dt"`
	Temp      *float64 `json:"temp"`
	FeelsLike *float64 `json:"feels_like"`
}

// OneCallMinutely is one entry of the minute-level precipitation series.
type OneCallMinutely struct {
	Dt            int64   `json:"dt"`
	Precipitation float64 `json:"precipitation"`
}

// OneCallHourly is one entry of the hourly series.
type OneCallHourly struct {
	Dt      int64            `json:"dt"`
	Temp    float64          `json:"temp"`
	Pop     float64          `json:"pop"`
	Rain    *OneCallRain     `json:"rain,omitempty"`
	Weather []OneCallWeather `json:"weather"`
}

// OneCallRain is the precipitation volume block. OpenWeather only includes it
// when rain is forecast.
type OneCallRain struct {
	OneHour *float64 `json:"1h"`
}

// OneCallWeather is a weather condition entry.
type OneCallWeather struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
}

// OpenWeatherClientConfig holds the configuration for an OpenWeatherClient.
type OpenWeatherClientConfig struct {
	APIKey  types.SecretString
	BaseURL string // defaults to openWeatherAPIBase
	Logger  types.Logger
}

// OpenWeatherClient fetches One Call 3.0 forecasts through BaseClient.
type OpenWeatherClient struct {
	base    *BaseClient
	apiKey  types.SecretString
	baseURL string
	logger  types.Logger
}

// NewOpenWeatherClient creates an OpenWeatherClient. The httpClient timeout
// bounds each fetch.
func NewOpenWeatherClient(httpClient *http.Client, cfg OpenWeatherClientConfig) *OpenWeatherClient {
	return NewOpenWeatherClientWithBase(
		NewBaseClient(httpClient, "openweather", ProviderCodes, userAgent),
		cfg,
	)
}

// NewOpenWeatherClientWithBase creates an OpenWeatherClient with a
// pre-configured BaseClient.
func NewOpenWeatherClientWithBase(base *BaseClient, cfg OpenWeatherClientConfig) *OpenWeatherClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openWeatherAPIBase
	}
	return &OpenWeatherClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  cfg.Logger,
	}
}

// OneCall fetches current conditions plus the minutely and hourly series for
// loc. The daily series is excluded.
//
// Error mapping:
//   - transport failure, open breaker -> provider_unavailable
//   - 429 -> provider_rate_limited
//   - other non-2xx -> provider_bad_status
//   - undecodable body or missing current.feels_like -> provider_malformed_payload
func (c *OpenWeatherClient) OneCall(ctx context.Context, loc types.Location) (*OneCallResponse, error) {
	units := loc.Units
	if units == "" {
		units = types.UnitsMetric
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
	q.Set("exclude", "daily")
	q.Set("units", string(units))
	q.Set("appid", c.apiKey.Unmask())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+oneCallPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "building OpenWeather request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if c.logger != nil {
		c.logger.Info("openweather response", "status", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(resp)
	}

	var payload OneCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, types.NewAppError(types.ErrCodeProviderMalformedPayload, "decoding OpenWeather response", err)
	}
	if payload.Current == nil || payload.Current.FeelsLike == nil {
		return nil, types.NewAppError(types.ErrCodeProviderMalformedPayload, "OpenWeather response has no current.feels_like", nil)
	}

	return &payload, nil
}

func (c *OpenWeatherClient) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	// OpenWeather error bodies look like {"cod":401,"message":"Invalid API key"}.
	var owErr struct {
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &owErr) == nil && owErr.Message != "" {
		msg = owErr.Message
	}

	code := types.ErrCodeProviderBadStatus
	if resp.StatusCode == http.StatusTooManyRequests {
		code = types.ErrCodeProviderRateLimited
	}
	return types.NewAppErrorWithDetails(
		code,
		fmt.Sprintf("OpenWeather returned status %d", resp.StatusCode),
		nil,
		map[string]any{"status": resp.StatusCode, "body": msg},
	)
}
