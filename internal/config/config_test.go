package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points DOTENV_PATH at a missing file so a developer .env never
// leaks into the assertions.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("DOTENV_PATH", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")
	t.Setenv("WEATHER_API_KEY", "")
	t.Setenv("WEATHER_ENABLED", "")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("RENDER_CACHE_DIR", "")
	t.Setenv("CACHE_DIR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":5000" || cfg.ServiceVersion != "1.0.0" {
		t.Fatalf("unexpected app defaults: addr=%q version=%q", cfg.HTTPAddr, cfg.ServiceVersion)
	}
	if cfg.CacheTTL.Predictions != 15*time.Minute || cfg.CacheTTL.BBRef != 3*time.Hour || cfg.CacheTTL.Static != 24*time.Hour {
		t.Fatalf("unexpected cache ttls: %+v", cfg.CacheTTL)
	}
	if cfg.RefreshInterval != 15*time.Minute {
		t.Fatalf("unexpected refresh interval: %s", cfg.RefreshInterval)
	}
	if cfg.CacheDir != filepath.Join(os.TempDir(), cacheDirName) {
		t.Fatalf("unexpected cache dir: %q", cfg.CacheDir)
	}
	if cfg.Location == nil || cfg.Location.String() != "America/New_York" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if cfg.WeatherEnabled {
		t.Fatalf("weather must be off without an api key")
	}
	if !cfg.ESPNEnabled || !cfg.BBRefEnabled || !cfg.StaticTableEnabled || !cfg.ScraperRespectRobots {
		t.Fatalf("expected every source enabled by default: %+v", cfg)
	}
	if cfg.RatingBetThreshold != 60 || cfg.RatingLeanThreshold != 52 {
		t.Fatalf("unexpected rating thresholds: %v/%v", cfg.RatingBetThreshold, cfg.RatingLeanThreshold)
	}
	if !cfg.MLBStatsCircuit.Enabled || cfg.MLBStatsCircuit.FailureThreshold != 5 || cfg.MLBStatsCircuit.OpenTimeout != 30*time.Second {
		t.Fatalf("unexpected mlbstats circuit: %+v", cfg.MLBStatsCircuit)
	}
	if len(cfg.ScraperUserAgents) != 0 {
		t.Fatalf("expected empty user agent override, got %v", cfg.ScraperUserAgents)
	}
}

func TestLoad_RenderCacheDir(t *testing.T) {
	isolate(t)
	t.Setenv("CACHE_DIR", "")
	t.Setenv("RENDER_CACHE_DIR", "/var/data")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CacheDir != "/var/data/mlb_prediction_tool" {
		t.Fatalf("unexpected cache dir: %q", cfg.CacheDir)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bet must exceed lean", env: map[string]string{"RATING_BET_THRESHOLD": "50", "RATING_LEAN_THRESHOLD": "55"}},
		{name: "bad duration", env: map[string]string{"CACHE_TTL_ESPN": "soon"}},
		{name: "non-positive ttl", env: map[string]string{"NOT_FOUND_CACHE_TTL": "0s"}},
		{name: "bad timezone", env: map[string]string{"APP_TIMEZONE": "Mars/Olympus"}},
		{name: "weather needs key", env: map[string]string{"WEATHER_ENABLED": "true"}},
		{name: "bad cron", env: map[string]string{"WARMUP_ENABLED": "true", "WARMUP_CRON": "every minute"}},
		{name: "zero workers", env: map[string]string{"RESOLVER_MAX_WORKERS": "0"}},
		{name: "zero circuit threshold", env: map[string]string{"SCRAPER_CIRCUIT_FAILURE_COUNT": "0"}},
		{name: "uptrace needs dsn", env: map[string]string{"UPTRACE_ENABLED": "true", "UPTRACE_DSN": ""}},
		{name: "bad bool", env: map[string]string{"ESPN_ENABLED": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoad_WeatherEnabledByKey(t *testing.T) {
	isolate(t)
	t.Setenv("WEATHER_API_KEY", "abc123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.WeatherEnabled || cfg.WeatherAPIKey != "abc123" {
		t.Fatalf("expected weather enabled by key")
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SCRAPER_USER_AGENTS=agent-a, agent-b\nAPP_VERSION=2.0.0\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("DOTENV_PATH", path)
	t.Setenv("APP_VERSION", "")
	t.Setenv("SCRAPER_USER_AGENTS", "")
	// godotenv skips keys already present, even when empty.
	os.Unsetenv("APP_VERSION")
	os.Unsetenv("SCRAPER_USER_AGENTS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceVersion != "2.0.0" {
		t.Fatalf("expected version from .env, got %q", cfg.ServiceVersion)
	}
	if len(cfg.ScraperUserAgents) != 2 || cfg.ScraperUserAgents[1] != "agent-b" {
		t.Fatalf("unexpected user agents: %v", cfg.ScraperUserAgents)
	}
}

func TestParseUptraceDSNFromOTLPHeaders(t *testing.T) {
	got := parseUptraceDSNFromOTLPHeaders(`foo=bar, uptrace-dsn="https://token@api.uptrace.dev/1"`)
	if got != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected dsn %q", got)
	}
	if parseUptraceDSNFromOTLPHeaders("") != "" {
		t.Fatalf("expected empty dsn")
	}
}
