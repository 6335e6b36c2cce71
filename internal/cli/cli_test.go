package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/app"
	"github.com/riskibarqy/mlb-predictions/internal/config"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

// offlineLoader builds an app whose official API is down, so every answer
// comes from the sample slate and the hardcoded table.
func offlineLoader(t *testing.T) (AppLoader, string) {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(upstream.Close)

	ttl := time.Minute
	cacheDir := t.TempDir()
	cfg := config.Config{
		ServiceVersion:     "1.0.0",
		Location:           time.UTC,
		CacheDir:           cacheDir,
		CacheMemoryCleanup: time.Minute,
		CacheTTL: config.CacheTTLs{
			Predictions: ttl, Schedule: ttl, MLBStats: ttl, ESPN: ttl, BBRef: ttl,
			Static: ttl, TeamStats: ttl, Weather: ttl, NotFound: ttl,
		},
		RefreshInterval:     time.Hour,
		MLBStatsBaseURL:     upstream.URL,
		MLBStatsTimeout:     time.Second,
		StaticTableEnabled:  true,
		ResolverMaxWorkers:  2,
		FetchTimeout:        2 * time.Second,
		RatingBetThreshold:  60,
		RatingLeanThreshold: 52,
	}

	a, err := app.New(cfg, logging.NewNop())
	require.NoError(t, err)
	return func() (*app.App, error) { return a, nil }, cacheDir
}

func run(t *testing.T, load AppLoader, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd(load, "1.2.3")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := run(t, func() (*app.App, error) {
		t.Fatalf("version must not build the app")
		return nil, nil
	}, "version")
	require.NoError(t, err)
	require.Equal(t, "mlbctl 1.2.3\n", out)
}

func TestPitcherCommand(t *testing.T) {
	t.Parallel()

	load, _ := offlineLoader(t)
	out, err := run(t, load, "pitcher", "New York Yankees", "Gerrit Cole")
	require.NoError(t, err)
	require.Contains(t, out, "Gerrit Cole")
	require.Contains(t, out, "2.63")
	require.Contains(t, out, "hardcoded-table")
	require.Contains(t, out, "official-api=miss")

	_, err = run(t, load, "pitcher", "Gerrit Cole")
	require.Error(t, err)
}

func TestGamesCommand(t *testing.T) {
	t.Parallel()

	load, _ := offlineLoader(t)
	out, err := run(t, load, "games", "--date", "2025-04-16")
	require.NoError(t, err)
	require.Contains(t, out, "718001")
	require.Contains(t, out, "6 games on 2025-04-16 (schedule: sample)")
}

func TestPredictCommand(t *testing.T) {
	t.Parallel()

	load, _ := offlineLoader(t)

	out, err := run(t, load, "predict", "--date", "2025-04-16")
	require.NoError(t, err)
	require.Contains(t, out, "under_1_run_first_inning")
	require.Contains(t, out, "over_3.5_runs_first_3_innings")

	out, err = run(t, load, "predict", "--date", "2025-04-16", "--type", "over_2.5_runs_first_3", "--json")
	require.NoError(t, err)
	require.Contains(t, out, `"predictions"`)

	_, err = run(t, load, "predict", "--type", "over_9_runs")
	require.Error(t, err)

	_, err = run(t, load, "predict", "--date", "16/04/2025")
	require.Error(t, err)
}

func TestCacheClear(t *testing.T) {
	t.Parallel()

	load, cacheDir := offlineLoader(t)
	_, err := run(t, load, "games", "--date", "2025-04-16")
	require.NoError(t, err)

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	out, err := run(t, load, "cache", "clear")
	require.NoError(t, err)
	require.Contains(t, out, "cleared cache under "+cacheDir)

	_, err = os.Stat(filepath.Join(cacheDir, "games"))
	require.True(t, os.IsNotExist(err), "games namespace should be gone")
}
