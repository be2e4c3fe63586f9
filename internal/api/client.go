package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

const (
	// DefaultBaseURL is where the weather service listens in development
	DefaultBaseURL = "http://localhost:5000/api"
	defaultTimeout = 10 * time.Second
	userAgent      = "WeatherTerminal/1.0 (github.com/ngmaloney/weather-terminal)"
)

// WeatherClient fetches observations and forecasts for a location
type WeatherClient interface {
	// CurrentWeather retrieves the current conditions (the primary fetch)
	CurrentWeather(ctx context.Context, loc models.LocationRef, units models.UnitSystem) (*models.WeatherSnapshot, error)

	// Forecast retrieves the short-range forecast (the secondary fetch).
	// An empty slice with a nil error means no forecast is available.
	Forecast(ctx context.Context, loc models.LocationRef, units models.UnitSystem) ([]models.ForecastEntry, error)
}

// LocationClient searches for places by free text
type LocationClient interface {
	SearchLocations(ctx context.Context, query string) ([]models.Candidate, error)
}

// HealthClient checks that the service is reachable
type HealthClient interface {
	Health(ctx context.Context) error
}

// HTTPClient implements every client interface against the weather service
type HTTPClient struct {
	baseURL         string
	httpClient      *http.Client
	userAgent       string
	forecastBreaker *gobreaker.CircuitBreaker
	now             func() time.Time
}

// NewClient creates a client for the service at baseURL. Each request is
// bounded by timeout; zero selects the default.
func NewClient(baseURL string, timeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		forecastBreaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "forecast",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			IsSuccessful: isServiceHealthy,
		}),
		now: time.Now,
	}
}

// isServiceHealthy reports whether err leaves the service looking healthy.
// Only transport failures and 5xx statuses count against the breaker; a
// 404 for an unknown city says nothing about other locations.
func isServiceHealthy(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err == nil
	}
	switch apiErr.Kind {
	case models.ErrUnreachable:
		return false
	case models.ErrBadResponse:
		return apiErr.Status < http.StatusInternalServerError
	}
	return true
}

// errorResponse is the body the service sends alongside non-2xx statuses
type errorResponse struct {
	Error string `json:"error"`
}

// getJSON performs a GET against path and decodes the body into out
func (c *HTTPClient) getJSON(ctx context.Context, op, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return badResponse(op, 0, fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unreachable(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return badResponse(op, resp.StatusCode, errors.New(errResp.Error))
		}
		return badResponse(op, resp.StatusCode, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return badResponse(op, 0, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// Health pings the health endpoint
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.getJSON(ctx, "health check", "/health", nil, nil)
}

func locationParams(loc models.LocationRef, units models.UnitSystem) url.Values {
	params := url.Values{}
	params.Set("city", loc.Name)
	if loc.Region != "" {
		params.Set("country", loc.Region)
	}
	params.Set("units", units.String())
	return params
}
