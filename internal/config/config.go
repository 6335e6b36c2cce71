package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/riskibarqy/mlb-predictions/internal/platform/resilience"
	"github.com/robfig/cron/v3"
)

const cacheDirName = "mlb_prediction_tool"

// CacheTTLs holds the freshness window of every cache namespace.
type CacheTTLs struct {
	Predictions time.Duration
	Schedule    time.Duration
	MLBStats    time.Duration
	ESPN        time.Duration
	BBRef       time.Duration
	Static      time.Duration
	TeamStats   time.Duration
	Weather     time.Duration
	NotFound    time.Duration
}

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	Timezone           string
	Location           *time.Location
	LogLevel           logging.Level
	CORSAllowedOrigins []string

	CacheDir           string
	CacheMemoryCleanup time.Duration
	CacheTTL           CacheTTLs
	RefreshInterval    time.Duration

	MLBStatsBaseURL    string
	MLBStatsTimeout    time.Duration
	MLBStatsMaxRetries int
	MLBStatsCircuit    resilience.CircuitBreakerConfig

	ESPNEnabled          bool
	ESPNBaseURL          string
	BBRefEnabled         bool
	BBRefBaseURL         string
	BBRefSeason          int
	ScraperTimeout       time.Duration
	ScraperRatePerSec    float64
	ScraperBurst         int
	ScraperMinDelay      time.Duration
	ScraperRespectRobots bool
	ScraperUserAgents    []string
	ScraperCircuit       resilience.CircuitBreakerConfig

	StaticTableEnabled bool

	WeatherEnabled bool
	WeatherBaseURL string
	WeatherAPIKey  string
	WeatherTimeout time.Duration
	WeatherCircuit resilience.CircuitBreakerConfig

	ResolverMaxWorkers int
	FetchTimeout       time.Duration

	RatingBetThreshold  float64
	RatingLeanThreshold float64

	WarmupEnabled bool
	WarmupCron    string

	MetricsEnabled bool

	UptraceEnabled         bool
	UptraceDSN             string
	UptraceLogsEnabled     bool
	PprofEnabled           bool
	PprofAddr              string
	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
}

// Load reads the process environment after applying DOTENV_PATH (default
// ".env") when that file exists. Variables already set win over the file.
func Load() (Config, error) {
	if err := loadDotEnv(getEnv("DOTENV_PATH", ".env")); err != nil {
		return Config{}, err
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        strings.TrimSpace(getEnv("APP_SERVICE_NAME", "mlb-prediction-api")),
		ServiceVersion:     strings.TrimSpace(getEnv("APP_VERSION", "1.0.0")),
		HTTPAddr:           strings.TrimSpace(getEnv("APP_HTTP_ADDR", ":5000")),
		Timezone:           strings.TrimSpace(getEnv("APP_TIMEZONE", "America/New_York")),
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		MLBStatsBaseURL:    strings.TrimSpace(getEnv("MLBSTATS_BASE_URL", "https://statsapi.mlb.com/api/v1")),
		ESPNBaseURL:        strings.TrimSpace(getEnv("ESPN_BASE_URL", "https://www.espn.com/mlb")),
		BBRefBaseURL:       strings.TrimSpace(getEnv("BBREF_BASE_URL", "https://www.baseball-reference.com")),
		ScraperUserAgents:  splitCSV(getEnv("SCRAPER_USER_AGENTS", "")),
		WeatherBaseURL:     strings.TrimSpace(getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")),
		WeatherAPIKey:      strings.TrimSpace(getEnv("WEATHER_API_KEY", "")),
		WarmupCron:         strings.TrimSpace(getEnv("WARMUP_CRON", "*/30 * * * *")),
		UptraceDSN:         strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PprofAddr:          strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		PyroscopeAuthToken: strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
	}
	if cfg.HTTPAddr == "" {
		return Config{}, fmt.Errorf("APP_HTTP_ADDR cannot be empty")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_TIMEZONE: %w", err)
	}

	durations := []struct {
		key      string
		fallback string
		dest     *time.Duration
	}{
		{"APP_READ_TIMEOUT", "15s", &cfg.ReadTimeout},
		{"APP_WRITE_TIMEOUT", "60s", &cfg.WriteTimeout},
		{"CACHE_MEMORY_CLEANUP", "10m", &cfg.CacheMemoryCleanup},
		{"CACHE_TTL_PREDICTIONS", "15m", &cfg.CacheTTL.Predictions},
		{"CACHE_TTL_SCHEDULE", "15m", &cfg.CacheTTL.Schedule},
		{"CACHE_TTL_MLBSTATS", "15m", &cfg.CacheTTL.MLBStats},
		{"CACHE_TTL_ESPN", "1h", &cfg.CacheTTL.ESPN},
		{"CACHE_TTL_BBREF", "3h", &cfg.CacheTTL.BBRef},
		{"CACHE_TTL_STATIC", "24h", &cfg.CacheTTL.Static},
		{"CACHE_TTL_TEAM_STATS", "3h", &cfg.CacheTTL.TeamStats},
		{"CACHE_TTL_WEATHER", "3h", &cfg.CacheTTL.Weather},
		{"NOT_FOUND_CACHE_TTL", "10m", &cfg.CacheTTL.NotFound},
		{"REFRESH_INTERVAL", "15m", &cfg.RefreshInterval},
		{"MLBSTATS_TIMEOUT", "10s", &cfg.MLBStatsTimeout},
		{"SCRAPER_TIMEOUT", "10s", &cfg.ScraperTimeout},
		{"WEATHER_TIMEOUT", "5s", &cfg.WeatherTimeout},
		{"FETCH_TIMEOUT", "15s", &cfg.FetchTimeout},
		{"PYROSCOPE_UPLOAD_RATE", "15s", &cfg.PyroscopeUploadRate},
	}
	for _, item := range durations {
		value, err := getEnvAsPositiveDuration(item.key, item.fallback)
		if err != nil {
			return Config{}, err
		}
		*item.dest = value
	}

	cfg.ScraperMinDelay, err = time.ParseDuration(getEnv("SCRAPER_MIN_DELAY", "0s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPER_MIN_DELAY: %w", err)
	}
	if cfg.ScraperMinDelay < 0 {
		return Config{}, fmt.Errorf("SCRAPER_MIN_DELAY must be >= 0")
	}

	flags := []struct {
		key      string
		fallback string
		dest     *bool
	}{
		{"ESPN_ENABLED", "true", &cfg.ESPNEnabled},
		{"BBREF_ENABLED", "true", &cfg.BBRefEnabled},
		{"SCRAPER_RESPECT_ROBOTS", "true", &cfg.ScraperRespectRobots},
		{"STATIC_TABLE_ENABLED", "true", &cfg.StaticTableEnabled},
		{"WEATHER_ENABLED", strconv.FormatBool(cfg.WeatherAPIKey != ""), &cfg.WeatherEnabled},
		{"WARMUP_ENABLED", "false", &cfg.WarmupEnabled},
		{"METRICS_ENABLED", "true", &cfg.MetricsEnabled},
		{"UPTRACE_ENABLED", "false", &cfg.UptraceEnabled},
		{"UPTRACE_LOGS_ENABLED", "true", &cfg.UptraceLogsEnabled},
		{"PPROF_ENABLED", "false", &cfg.PprofEnabled},
		{"PYROSCOPE_ENABLED", "false", &cfg.PyroscopeEnabled},
	}
	for _, item := range flags {
		value, err := strconv.ParseBool(getEnv(item.key, item.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.dest = value
	}

	if cfg.MLBStatsMaxRetries, err = getEnvAsInt("MLBSTATS_MAX_RETRIES", 0); err != nil {
		return Config{}, fmt.Errorf("parse MLBSTATS_MAX_RETRIES: %w", err)
	}
	if cfg.MLBStatsMaxRetries < 0 {
		return Config{}, fmt.Errorf("MLBSTATS_MAX_RETRIES must be >= 0")
	}
	if cfg.BBRefSeason, err = getEnvAsInt("BBREF_SEASON", 0); err != nil {
		return Config{}, fmt.Errorf("parse BBREF_SEASON: %w", err)
	}
	if cfg.ScraperBurst, err = getEnvAsInt("SCRAPER_BURST", 2); err != nil {
		return Config{}, fmt.Errorf("parse SCRAPER_BURST: %w", err)
	}
	if cfg.ScraperBurst < 1 {
		return Config{}, fmt.Errorf("SCRAPER_BURST must be >= 1")
	}
	if cfg.ResolverMaxWorkers, err = getEnvAsInt("RESOLVER_MAX_WORKERS", 8); err != nil {
		return Config{}, fmt.Errorf("parse RESOLVER_MAX_WORKERS: %w", err)
	}
	if cfg.ResolverMaxWorkers < 1 {
		return Config{}, fmt.Errorf("RESOLVER_MAX_WORKERS must be >= 1")
	}

	if cfg.ScraperRatePerSec, err = getEnvAsFloat("SCRAPER_RATE_PER_SEC", 1); err != nil {
		return Config{}, fmt.Errorf("parse SCRAPER_RATE_PER_SEC: %w", err)
	}
	if cfg.ScraperRatePerSec <= 0 {
		return Config{}, fmt.Errorf("SCRAPER_RATE_PER_SEC must be > 0")
	}
	if cfg.RatingBetThreshold, err = getEnvAsFloat("RATING_BET_THRESHOLD", 60); err != nil {
		return Config{}, fmt.Errorf("parse RATING_BET_THRESHOLD: %w", err)
	}
	if cfg.RatingLeanThreshold, err = getEnvAsFloat("RATING_LEAN_THRESHOLD", 52); err != nil {
		return Config{}, fmt.Errorf("parse RATING_LEAN_THRESHOLD: %w", err)
	}
	if cfg.RatingBetThreshold <= cfg.RatingLeanThreshold {
		return Config{}, fmt.Errorf("RATING_BET_THRESHOLD must be > RATING_LEAN_THRESHOLD")
	}

	if cfg.MLBStatsCircuit, err = loadCircuit("MLBSTATS", 5, "30s"); err != nil {
		return Config{}, err
	}
	if cfg.ScraperCircuit, err = loadCircuit("SCRAPER", 3, "30s"); err != nil {
		return Config{}, err
	}
	if cfg.WeatherCircuit, err = loadCircuit("WEATHER", 3, "60s"); err != nil {
		return Config{}, err
	}

	cfg.CacheDir = strings.TrimSpace(getEnv("CACHE_DIR", defaultCacheDir()))
	if cfg.CacheDir == "" {
		return Config{}, fmt.Errorf("CACHE_DIR cannot be empty")
	}

	if cfg.WeatherEnabled && cfg.WeatherAPIKey == "" {
		return Config{}, fmt.Errorf("WEATHER_API_KEY is required when WEATHER_ENABLED=true")
	}
	if cfg.WarmupEnabled {
		if _, err := cron.ParseStandard(cfg.WarmupCron); err != nil {
			return Config{}, fmt.Errorf("parse WARMUP_CRON: %w", err)
		}
	}

	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// defaultCacheDir honours the Render persistent disk when mounted.
func defaultCacheDir() string {
	if base := strings.TrimSpace(os.Getenv("RENDER_CACHE_DIR")); base != "" {
		return filepath.Join(base, cacheDirName)
	}
	return filepath.Join(os.TempDir(), cacheDirName)
}

func loadCircuit(prefix string, failureCount int, openTimeout string) (resilience.CircuitBreakerConfig, error) {
	enabledKey := prefix + "_CIRCUIT_ENABLED"
	enabled, err := strconv.ParseBool(getEnv(enabledKey, "true"))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", enabledKey, err)
	}

	countKey := prefix + "_CIRCUIT_FAILURE_COUNT"
	count, err := getEnvAsInt(countKey, failureCount)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", countKey, err)
	}
	if count < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s must be >= 1", countKey)
	}

	timeout, err := getEnvAsPositiveDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", openTimeout)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, err
	}

	halfOpenKey := prefix + "_CIRCUIT_HALF_OPEN_MAX_REQ"
	halfOpen, err := getEnvAsInt(halfOpenKey, 1)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", halfOpenKey, err)
	}
	if halfOpen < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s must be >= 1", halfOpenKey)
	}

	return resilience.CircuitBreakerConfig{
		Enabled:          enabled,
		FailureThreshold: count,
		OpenTimeout:      timeout,
		HalfOpenMaxReq:   halfOpen,
	}, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(value, 64)
}

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return value, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	for _, item := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(item), "=")
		if !found {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(value), "\"'")
		}
	}
	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
