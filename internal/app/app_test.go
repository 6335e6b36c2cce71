package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/mlb-predictions/internal/config"
	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

// testConfig points the official API at upstream and turns the scrapers off.
func testConfig(t *testing.T, upstream string) config.Config {
	t.Helper()

	return config.Config{
		AppEnv:             config.EnvDev,
		ServiceName:        "mlb-prediction-api",
		ServiceVersion:     "9.9.9",
		HTTPAddr:           ":0",
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		Location:           time.UTC,
		CORSAllowedOrigins: []string{"*"},
		CacheDir:           t.TempDir(),
		CacheMemoryCleanup: time.Minute,
		CacheTTL: config.CacheTTLs{
			Predictions: time.Minute,
			Schedule:    time.Minute,
			MLBStats:    time.Minute,
			ESPN:        time.Minute,
			BBRef:       time.Minute,
			Static:      time.Minute,
			TeamStats:   time.Minute,
			Weather:     time.Minute,
			NotFound:    time.Minute,
		},
		RefreshInterval:     time.Hour,
		MLBStatsBaseURL:     upstream,
		MLBStatsTimeout:     time.Second,
		StaticTableEnabled:  true,
		ResolverMaxWorkers:  2,
		FetchTimeout:        2 * time.Second,
		RatingBetThreshold:  60,
		RatingLeanThreshold: 52,
		MetricsEnabled:      true,
	}
}

func newDownUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_ChainOrder(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, newDownUpstream(t).URL)
	cfg.ESPNEnabled = true
	cfg.BBRefEnabled = true

	a, err := New(cfg, logging.NewNop())
	require.NoError(t, err)
	require.Equal(t, []pitcher.Source{
		pitcher.SourceOfficialAPI,
		pitcher.SourceESPN,
		pitcher.SourceBaseballReference,
		pitcher.SourceHardcodedTable,
	}, a.Reconciler.Sources())
}

func TestNew_RejectsBadScraperURL(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, newDownUpstream(t).URL)
	cfg.ESPNEnabled = true
	cfg.ESPNBaseURL = "::not a url"

	_, err := New(cfg, logging.NewNop())
	require.Error(t, err)
}

func TestHTTPServer_FallsBackToSampleSlate(t *testing.T) {
	t.Parallel()

	a, err := New(testConfig(t, newDownUpstream(t).URL), logging.NewNop())
	require.NoError(t, err)

	srv, err := a.NewHTTPServer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/predictions?date=2025-04-16", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		UnderOneRun []map[string]any `json:"under_1_run_first_inning"`
		Metadata    struct {
			GameCount      int    `json:"game_count"`
			ScheduleSource string `json:"schedule_source"`
		} `json:"metadata"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.UnderOneRun, 6)
	require.Equal(t, 6, body.Metadata.GameCount)
	require.Equal(t, "sample", body.Metadata.ScheduleSource)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"version":"9.9.9"`)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "mlb_cache_operations_total")
}

func TestHTTPServer_RequiresAddr(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, newDownUpstream(t).URL)
	cfg.HTTPAddr = ""

	a, err := New(cfg, logging.NewNop())
	require.NoError(t, err)

	_, err = a.NewHTTPServer()
	require.Error(t, err)
}
