package cache

import (
	"context"
	"strconv"
	"strings"

	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
	basecache "github.com/riskibarqy/mlb-predictions/internal/platform/cache"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
)

type TeamStatsLoader struct {
	next   game.TeamStatsProvider
	cache  *basecache.Bucket
	logger *logging.Logger
}

func NewTeamStatsLoader(next game.TeamStatsProvider, cache *basecache.Bucket, logger *logging.Logger) *TeamStatsLoader {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamStatsLoader{next: next, cache: cache, logger: logger}
}

// LoadTeamStats returns the cached line or fetches it. Any failure yields
// the league-average default, which is not cached.
func (l *TeamStatsLoader) LoadTeamStats(ctx context.Context, team string, season int, force bool) game.TeamStats {
	team = strings.TrimSpace(team)
	if l.next == nil || team == "" {
		return game.DefaultTeamStats()
	}

	var stats game.TeamStats
	_, err := l.cache.GetOrLoad(ctx, team+"_"+strconv.Itoa(season), force, &stats, func(ctx context.Context) (any, error) {
		return l.next.FetchTeamStats(ctx, team, season)
	})
	if err != nil {
		l.logger.WarnContext(ctx, "team stats unavailable, using defaults", "team", team, "season", season, "error", err)
		return game.DefaultTeamStats()
	}
	return stats
}

type WeatherLoader struct {
	next   game.WeatherProvider
	cache  *basecache.Bucket
	logger *logging.Logger
}

// NewWeatherLoader wraps next. A nil provider turns the loader into a
// constant source of DefaultWeather.
func NewWeatherLoader(next game.WeatherProvider, cache *basecache.Bucket, logger *logging.Logger) *WeatherLoader {
	if logger == nil {
		logger = logging.Default()
	}
	return &WeatherLoader{next: next, cache: cache, logger: logger}
}

func (l *WeatherLoader) LoadWeather(ctx context.Context, city string, force bool) game.Weather {
	city = strings.TrimSpace(city)
	if l.next == nil || city == "" {
		return game.DefaultWeather()
	}

	var weather game.Weather
	_, err := l.cache.GetOrLoad(ctx, city, force, &weather, func(ctx context.Context) (any, error) {
		return l.next.FetchWeather(ctx, city)
	})
	if err != nil {
		l.logger.WarnContext(ctx, "weather unavailable, using defaults", "city", city, "error", err)
		return game.DefaultWeather()
	}
	return weather
}
