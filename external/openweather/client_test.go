package openweather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/platform/resilience"
	"github.com/riskibarqy/mlb-predictions/internal/usecase"
)

func TestFetchWeather_MapsImperialPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "New York,NY" || q.Get("units") != "imperial" || q.Get("appid") != "k" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"cod":200,"main":{"temp":64.4,"humidity":71},"weather":[{"main":"Clouds","description":"broken clouds"}],"wind":{"speed":9.2}}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", Timeout: time.Second})
	weather, err := client.FetchWeather(context.Background(), "New York,NY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if weather.Temperature != 64.4 || weather.Humidity != 71 || weather.Condition != "Clouds" || weather.WindSpeed != 9.2 {
		t.Fatalf("unexpected weather: %+v", weather)
	}
	if weather.Description != "broken clouds" || weather.Source != sourceName || weather.PrecipitationChance != 0 {
		t.Fatalf("unexpected weather details: %+v", weather)
	}
}

func TestFetchWeather_MissingFieldsKeepDefaults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"cod":200,"main":{"temp":80}}`))
	}))
	defer srv.Close()

	weather, err := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k"}).FetchWeather(context.Background(), "Phoenix,AZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if weather.Temperature != 80 || weather.Condition != "Clear" || weather.Humidity != 50 || weather.WindSpeed != 5 {
		t.Fatalf("unexpected weather: %+v", weather)
	}
}

func TestFetchWeather_ErrorCodeIsFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k"}).FetchWeather(context.Background(), "Atlantis,XX")
	if err == nil {
		t.Fatalf("expected error for cod 404")
	}
}

func TestFetchWeather_RequiresKeyAndCity(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(ClientConfig{}).FetchWeather(context.Background(), "Boston,MA"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := NewClient(ClientConfig{APIKey: "k"}).FetchWeather(context.Background(), " "); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFetchWeather_CircuitOpensOnServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		APIKey:  "k",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})
	if _, err := client.FetchWeather(context.Background(), "Denver,CO"); err == nil {
		t.Fatalf("expected first call to fail")
	}
	_, err := client.FetchWeather(context.Background(), "Denver,CO")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one upstream hit, got %d", hits.Load())
	}
}
