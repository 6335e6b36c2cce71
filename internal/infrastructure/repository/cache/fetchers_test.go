package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
	basecache "github.com/riskibarqy/mlb-predictions/internal/platform/cache"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	calls  atomic.Int32
	lookup func(ctx context.Context, team, name string) (pitcher.Fact, error)
}

func (p *stubProvider) Source() pitcher.Source {
	return pitcher.SourceESPN
}

func (p *stubProvider) LookupPitcher(ctx context.Context, team, name string) (pitcher.Fact, error) {
	p.calls.Add(1)
	return p.lookup(ctx, team, name)
}

func newTestStore(t *testing.T) *basecache.Store {
	t.Helper()
	return basecache.NewStore(basecache.Config{Dir: t.TempDir(), Logger: logging.NewNop()})
}

func newTestFetcher(t *testing.T, provider *stubProvider, timeout time.Duration) *PitcherFetcher {
	t.Helper()
	store := newTestStore(t)
	return NewPitcherFetcher(provider, store.Bucket("espn", time.Hour), store.Bucket("espn_not_found", time.Minute), timeout, logging.NewNop())
}

func TestPitcherFetcher_CachesHits(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{lookup: func(_ context.Context, team, name string) (pitcher.Fact, error) {
		return pitcher.Fact{Name: name, Team: team, ERA: 2.63, Method: pitcher.MethodRosterLookup}, nil
	}}
	fetcher := newTestFetcher(t, provider, time.Second)
	query := pitcher.Query{Team: "New York Yankees", Name: "Gerrit Cole"}

	fact, ok := fetcher.FetchPitcherFact(context.Background(), query)
	require.True(t, ok)
	require.Equal(t, 2.63, fact.ERA)
	require.Equal(t, pitcher.SourceESPN, fact.Source)
	require.False(t, fact.Cached)

	cached, ok := fetcher.FetchPitcherFact(context.Background(), query)
	require.True(t, ok)
	require.True(t, cached.Cached)
	require.Equal(t, 2.63, cached.ERA)
	require.Equal(t, int32(1), provider.calls.Load())

	query.ForceRefresh = true
	_, ok = fetcher.FetchPitcherFact(context.Background(), query)
	require.True(t, ok)
	require.Equal(t, int32(2), provider.calls.Load())
}

func TestPitcherFetcher_NegativeCache(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{lookup: func(context.Context, string, string) (pitcher.Fact, error) {
		return pitcher.Fact{}, fmt.Errorf("%w: not on roster", pitcher.ErrNotFound)
	}}
	fetcher := newTestFetcher(t, provider, time.Second)
	query := pitcher.Query{Team: "Boston Red Sox", Name: "Unknown Arm"}

	for i := 0; i < 3; i++ {
		_, ok := fetcher.FetchPitcherFact(context.Background(), query)
		require.False(t, ok)
	}
	require.Equal(t, int32(1), provider.calls.Load())

	query.ForceRefresh = true
	_, ok := fetcher.FetchPitcherFact(context.Background(), query)
	require.False(t, ok)
	require.Equal(t, int32(2), provider.calls.Load())
}

func TestPitcherFetcher_TransportErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{lookup: func(context.Context, string, string) (pitcher.Fact, error) {
		return pitcher.Fact{}, errors.New("connection reset")
	}}
	fetcher := newTestFetcher(t, provider, time.Second)
	query := pitcher.Query{Team: "Chicago Cubs", Name: "Justin Steele"}

	_, ok := fetcher.FetchPitcherFact(context.Background(), query)
	require.False(t, ok)
	_, ok = fetcher.FetchPitcherFact(context.Background(), query)
	require.False(t, ok)
	require.Equal(t, int32(2), provider.calls.Load())
}

func TestPitcherFetcher_AbsorbsPanicsAndTimeouts(t *testing.T) {
	t.Parallel()

	panicking := &stubProvider{lookup: func(context.Context, string, string) (pitcher.Fact, error) {
		panic("boom")
	}}
	_, ok := newTestFetcher(t, panicking, time.Second).FetchPitcherFact(context.Background(), pitcher.Query{Team: "A", Name: "B C"})
	require.False(t, ok)

	slow := &stubProvider{lookup: func(ctx context.Context, _, _ string) (pitcher.Fact, error) {
		<-ctx.Done()
		return pitcher.Fact{}, ctx.Err()
	}}
	start := time.Now()
	_, ok = newTestFetcher(t, slow, 20*time.Millisecond).FetchPitcherFact(context.Background(), pitcher.Query{Team: "A", Name: "B C"})
	require.False(t, ok)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestPitcherFetcher_RejectsUnusableAnswers(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{lookup: func(context.Context, string, string) (pitcher.Fact, error) {
		return pitcher.Fact{ERA: -1}, nil
	}}
	fetcher := newTestFetcher(t, provider, time.Second)

	_, ok := fetcher.FetchPitcherFact(context.Background(), pitcher.Query{Team: "A", Name: "B C"})
	require.False(t, ok)
	_, ok = fetcher.FetchPitcherFact(context.Background(), pitcher.Query{Team: "A", Name: "TBD"})
	require.False(t, ok)
	require.Equal(t, int32(1), provider.calls.Load())
}

type stubTeamStats struct {
	calls atomic.Int32
	err   error
}

func (s *stubTeamStats) FetchTeamStats(_ context.Context, _ string, _ int) (game.TeamStats, error) {
	s.calls.Add(1)
	if s.err != nil {
		return game.TeamStats{}, s.err
	}
	return game.TeamStats{TeamERA: 3.5, TeamWHIP: 1.2, BullpenERA: 4.0, Source: "official-api"}, nil
}

func TestTeamStatsLoader(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	provider := &stubTeamStats{}
	loader := NewTeamStatsLoader(provider, store.Bucket("team_stats", time.Hour), logging.NewNop())

	stats := loader.LoadTeamStats(context.Background(), "Houston Astros", 2025, false)
	require.Equal(t, 3.5, stats.TeamERA)
	stats = loader.LoadTeamStats(context.Background(), "Houston Astros", 2025, false)
	require.Equal(t, 3.5, stats.TeamERA)
	require.Equal(t, int32(1), provider.calls.Load())

	failing := NewTeamStatsLoader(&stubTeamStats{err: game.ErrTeamNotFound}, store.Bucket("team_stats_fail", time.Hour), logging.NewNop())
	require.Equal(t, game.DefaultTeamStats(), failing.LoadTeamStats(context.Background(), "Nowhere", 2025, false))
}

type stubWeather struct {
	calls atomic.Int32
	err   error
}

func (s *stubWeather) FetchWeather(_ context.Context, city string) (game.Weather, error) {
	s.calls.Add(1)
	if s.err != nil {
		return game.Weather{}, s.err
	}
	return game.Weather{Temperature: 55, Condition: "Rain", Source: "openweathermap"}, nil
}

func TestWeatherLoader(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	provider := &stubWeather{}
	loader := NewWeatherLoader(provider, store.Bucket("weather", time.Hour), logging.NewNop())

	require.Equal(t, "Rain", loader.LoadWeather(context.Background(), "Boston,MA", false).Condition)
	require.Equal(t, "Rain", loader.LoadWeather(context.Background(), "Boston,MA", false).Condition)
	require.Equal(t, int32(1), provider.calls.Load())
	loader.LoadWeather(context.Background(), "Boston,MA", true)
	require.Equal(t, int32(2), provider.calls.Load())

	disabled := NewWeatherLoader(nil, store.Bucket("weather", time.Hour), logging.NewNop())
	require.Equal(t, game.DefaultWeather(), disabled.LoadWeather(context.Background(), "Boston,MA", false))

	failing := NewWeatherLoader(&stubWeather{err: errors.New("down")}, store.Bucket("weather_fail", time.Hour), logging.NewNop())
	require.Equal(t, game.DefaultWeather(), failing.LoadWeather(context.Background(), "Denver,CO", false))
}
