// Package openweathermap implements the UV provider against the
// OpenWeatherMap OneCall API.
package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/suntrack/suntrack/internal/provider/resilience"
	"github.com/suntrack/suntrack/internal/weather"
)

const (
	// ProviderName identifies this UV provider.
	ProviderName = "openweathermap"

	// DefaultOneCallURL is the OpenWeatherMap OneCall API 3.0 base URL.
	// OneCall carries the uvi field for current and hourly data.
	DefaultOneCallURL = "https://api.openweathermap.org/data/3.0/onecall"
)

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// OneCallURL is the OneCall API URL (optional, defaults to OneCall 3.0).
	OneCallURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client.
type Client struct {
	apiKey     string
	oneCallURL string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	oneCallURL := cfg.OneCallURL
	if oneCallURL == "" {
		oneCallURL = DefaultOneCallURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("openweathermap"))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		oneCallURL: oneCallURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetCurrentUV fetches the current UV index for a location.
func (c *Client) GetCurrentUV(ctx context.Context, lat, lon float64) (*weather.Observation, error) {
	resp, err := c.fetchOneCall(ctx, lat, lon, "minutely,hourly,daily,alerts")
	if err != nil {
		return nil, err
	}

	return c.toObservation(resp), nil
}

// GetForecast fetches the hourly UV forecast for a location.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64) (*weather.Forecast, error) {
	resp, err := c.fetchOneCall(ctx, lat, lon, "minutely,daily,alerts")
	if err != nil {
		return nil, err
	}

	return c.toForecast(resp), nil
}

func (c *Client) fetchOneCall(ctx context.Context, lat, lon float64, exclude string) (*oneCallResponse, error) {
	url := fmt.Sprintf("%s?lat=%.6f&lon=%.6f&appid=%s&exclude=%s",
		c.oneCallURL, lat, lon, c.apiKey, exclude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var owmResp oneCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&owmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &owmResp, nil
}

// toObservation converts a OneCall response to the domain model.
func (c *Client) toObservation(resp *oneCallResponse) *weather.Observation {
	return &weather.Observation{
		Lat:        resp.Lat,
		Lon:        resp.Lon,
		UVIndex:    roundIndex(resp.Current.UVI),
		UVRaw:      resp.Current.UVI,
		CloudCover: resp.Current.Clouds,
		ObservedAt: time.Unix(resp.Current.Dt, 0),
		FetchedAt:  time.Now(),
	}
}

// toForecast converts a OneCall response to the domain model.
func (c *Client) toForecast(resp *oneCallResponse) *weather.Forecast {
	forecast := &weather.Forecast{
		Lat:       resp.Lat,
		Lon:       resp.Lon,
		Hourly:    make([]weather.HourlyForecast, 0, len(resp.Hourly)),
		FetchedAt: time.Now(),
	}

	for _, h := range resp.Hourly {
		forecast.Hourly = append(forecast.Hourly, weather.HourlyForecast{
			Time:       time.Unix(h.Dt, 0),
			UVIndex:    roundIndex(h.UVI),
			UVRaw:      h.UVI,
			CloudCover: h.Clouds,
		})
	}

	return forecast
}

// roundIndex rounds the fractional uvi reading to the nearest integer,
// never below zero.
func roundIndex(uvi float64) int {
	if uvi <= 0 {
		return 0
	}
	return int(math.Round(uvi))
}

// OpenWeatherMap API response structures.

type oneCallResponse struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Current struct {
		Dt     int64   `json:"dt"`
		UVI    float64 `json:"uvi"`
		Clouds float64 `json:"clouds"`
	} `json:"current"`
	Hourly []struct {
		Dt     int64   `json:"dt"`
		UVI    float64 `json:"uvi"`
		Clouds float64 `json:"clouds"`
	} `json:"hourly"`
}
