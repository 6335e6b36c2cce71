package game

import (
	"context"
	"time"
)

// ScheduleProvider returns the raw game list for one day.
type ScheduleProvider interface {
	FetchSchedule(ctx context.Context, date time.Time) ([]ScheduledGame, error)
}

// TeamStatsProvider returns a team's season pitching line.
type TeamStatsProvider interface {
	FetchTeamStats(ctx context.Context, team string, season int) (TeamStats, error)
}

// WeatherProvider returns the current weather for a "City,ST" location.
type WeatherProvider interface {
	FetchWeather(ctx context.Context, city string) (Weather, error)
}

// TeamStatsLoader is the total form of TeamStatsProvider: failures yield
// DefaultTeamStats.
type TeamStatsLoader interface {
	LoadTeamStats(ctx context.Context, team string, season int, force bool) TeamStats
}

// WeatherLoader is the total form of WeatherProvider: failures yield
// DefaultWeather.
type WeatherLoader interface {
	LoadWeather(ctx context.Context, city string, force bool) Weather
}
