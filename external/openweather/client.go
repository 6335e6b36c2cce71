// Package openweather reads current conditions from the OpenWeatherMap API.
package openweather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/riskibarqy/mlb-predictions/internal/platform/resilience"
	"github.com/riskibarqy/mlb-predictions/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5"
	sourceName     = "openweathermap"
)

var (
	errWeatherTransient = crerr.New("openweather transient failure")
	ErrMissingAPIKey    = crerr.New("openweather api key is not configured")
)

type ClientConfig struct {
	HTTPClient      *http.Client
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	Logger          *logging.Logger
	CircuitBreaker  resilience.CircuitBreakerConfig
	OnCircuitChange resilience.StateChangeFunc
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		logger:         logger,
		breaker:        resilience.NewNamedCircuitBreaker("openweather", cfg.CircuitBreaker, cfg.OnCircuitChange),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// codeValue accepts both 200 and "404": the API reports success as a number
// and errors as a string.
type codeValue int

func (v *codeValue) UnmarshalJSON(data []byte) error {
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if text == "" || text == "null" {
		*v = 0
		return nil
	}
	parsed, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf("decode cod %q: %w", text, err)
	}
	*v = codeValue(parsed)
	return nil
}

type currentPayload struct {
	Cod     codeValue `json:"cod"`
	Message string    `json:"message"`
	Main    *struct {
		Temp     *float64 `json:"temp"`
		Humidity *int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

// FetchWeather returns current conditions for a "City,ST" location in
// imperial units. Fields the API omits keep their default values.
func (c *Client) FetchWeather(ctx context.Context, city string) (game.Weather, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return game.Weather{}, fmt.Errorf("%w: city is required", usecase.ErrInvalidInput)
	}
	if c.apiKey == "" {
		return game.Weather{}, ErrMissingAPIKey
	}
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			return game.Weather{}, fmt.Errorf("%w: weather api is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", "imperial")
	fullURL := c.baseURL + "/weather?" + query.Encode()

	out, err, _ := c.flight.DoContext(ctx, city, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			c.breaker.Record(crerr.Is(reqErr, errWeatherTransient))
		}
		return raw, reqErr
	})
	if err != nil {
		return game.Weather{}, err
	}
	raw, ok := out.([]byte)
	if !ok {
		return game.Weather{}, fmt.Errorf("unexpected response payload type %T", out)
	}

	var payload currentPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return game.Weather{}, fmt.Errorf("decode weather payload: %w", err)
	}
	if payload.Cod != 200 {
		return game.Weather{}, fmt.Errorf("weather api cod=%d message=%s", payload.Cod, payload.Message)
	}
	return payload.toWeather(), nil
}

func (p currentPayload) toWeather() game.Weather {
	weather := game.DefaultWeather()
	weather.Source = sourceName
	if p.Main != nil {
		if p.Main.Temp != nil {
			weather.Temperature = *p.Main.Temp
		}
		if p.Main.Humidity != nil {
			weather.Humidity = *p.Main.Humidity
		}
	}
	if len(p.Weather) > 0 {
		if p.Weather[0].Main != "" {
			weather.Condition = p.Weather[0].Main
		}
		if p.Weather[0].Description != "" {
			weather.Description = p.Weather[0].Description
		}
	}
	if p.Wind != nil && p.Wind.Speed != nil {
		weather.WindSpeed = *p.Wind.Speed
	}
	// The free tier has no precipitation probability.
	weather.PrecipitationChance = 0
	return weather
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", errWeatherTransient, redactKey(err.Error(), c.apiKey))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errWeatherTransient, err)
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status=%d", errWeatherTransient, resp.StatusCode)
	default:
		// 401 and 404 carry a JSON body with cod and message.
		return raw, nil
	}
}

func redactKey(text, key string) string {
	if key == "" {
		return text
	}
	return strings.ReplaceAll(text, key, "REDACTED")
}
