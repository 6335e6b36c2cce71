package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
	basecache "github.com/riskibarqy/mlb-predictions/internal/platform/cache"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/riskibarqy/mlb-predictions/internal/platform/metrics"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"
)

const defaultResolverWorkers = 8

type ScheduleServiceConfig struct {
	// Primary is the official schedule. Fallback serves the sample slate
	// when Primary fails or has no games.
	Primary    game.ScheduleProvider
	Fallback   game.ScheduleProvider
	Pitchers   PitcherResolver
	TeamStats  game.TeamStatsLoader
	Weather    game.WeatherLoader
	Cache      *basecache.Bucket
	MaxWorkers int
	Location   *time.Location
	Logger     *logging.Logger
	Now        func() time.Time
}

type ScheduleService struct {
	primary    game.ScheduleProvider
	fallback   game.ScheduleProvider
	pitchers   PitcherResolver
	teamStats  game.TeamStatsLoader
	weather    game.WeatherLoader
	cache      *basecache.Bucket
	maxWorkers int
	location   *time.Location
	logger     *logging.Logger
	now        func() time.Time
}

func NewScheduleService(cfg ScheduleServiceConfig) *ScheduleService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = defaultResolverWorkers
	}
	return &ScheduleService{
		primary:    cfg.Primary,
		fallback:   cfg.Fallback,
		pitchers:   cfg.Pitchers,
		teamStats:  cfg.TeamStats,
		weather:    cfg.Weather,
		cache:      cfg.Cache,
		maxWorkers: workers,
		location:   location,
		logger:     logger,
		now:        now,
	}
}

// Today returns the current date in the service time zone.
func (s *ScheduleService) Today() time.Time {
	now := s.now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
}

// ParseDate parses YYYY-MM-DD in the service time zone. Empty means today.
func (s *ScheduleService) ParseDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return s.Today(), nil
	}
	day, err := game.ParseDate(raw, s.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return day, nil
}

// GetGamesForDate returns the resolved schedule for the date. Within the
// cache TTL the stored schedule is returned unchanged; forceRefresh rebuilds
// it and passes the flag to every pitcher, stats and weather fetch.
func (s *ScheduleService) GetGamesForDate(ctx context.Context, date string, forceRefresh bool) (game.Schedule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GetGamesForDate")
	defer span.End()

	day, err := s.ParseDate(date)
	if err != nil {
		return game.Schedule{}, err
	}
	key := game.FormatDate(day)
	span.SetAttributes(attribute.String("schedule.date", key), attribute.Bool("schedule.force", forceRefresh))

	var schedule game.Schedule
	if s.cache == nil {
		schedule, err = s.build(ctx, day, forceRefresh)
		return schedule, err
	}
	if _, err := s.cache.GetOrLoad(ctx, key, forceRefresh, &schedule, func(ctx context.Context) (any, error) {
		return s.build(ctx, day, forceRefresh)
	}); err != nil {
		return game.Schedule{}, err
	}
	return schedule, nil
}

func (s *ScheduleService) build(ctx context.Context, day time.Time, force bool) (game.Schedule, error) {
	rows, source, err := s.fetchRows(ctx, day)
	if err != nil {
		return game.Schedule{}, err
	}
	metrics.ObserveSchedule(string(source))

	games := make([]game.Game, len(rows))
	for i, row := range rows {
		games[i] = game.Game{
			ID:        row.ID,
			Date:      game.FormatDate(day),
			DayOfWeek: day.Weekday().String(),
			Status:    row.Status,
			Venue:     row.Venue,
			GameTime:  row.GameTime,
			Home:      game.TeamSide{Name: row.HomeTeam},
			Away:      game.TeamSide{Name: row.AwayTeam},
		}
	}

	if err := s.resolvePitchers(ctx, rows, games, force); err != nil {
		return game.Schedule{}, err
	}
	s.enrich(ctx, day, games, force)
	// A cancelled chain leaves default facts behind; they must not be stored.
	if err := ctx.Err(); err != nil {
		return game.Schedule{}, err
	}

	return game.Schedule{
		Date:       game.FormatDate(day),
		Games:      games,
		Source:     source,
		ResolvedAt: s.now().UTC(),
	}, nil
}

func (s *ScheduleService) fetchRows(ctx context.Context, day time.Time) ([]game.ScheduledGame, game.ScheduleSource, error) {
	var primaryErr error
	if s.primary != nil {
		rows, err := s.primary.FetchSchedule(ctx, day)
		if err == nil && len(rows) > 0 {
			return rows, game.ScheduleSourceOfficialAPI, nil
		}
		primaryErr = err
		if err != nil {
			s.logger.WarnContext(ctx, "official schedule failed, using sample games", "date", game.FormatDate(day), "error", err)
		} else {
			s.logger.InfoContext(ctx, "official schedule is empty, using sample games", "date", game.FormatDate(day))
		}
	}
	if s.fallback == nil {
		return nil, "", errors.Join(game.ErrScheduleUnavailable, primaryErr)
	}
	rows, err := s.fallback.FetchSchedule(ctx, day)
	if err != nil {
		return nil, "", errors.Join(game.ErrScheduleUnavailable, primaryErr, err)
	}
	return rows, game.ScheduleSourceSample, nil
}

// resolvePitchers fans the announced starters out over a bounded pool.
func (s *ScheduleService) resolvePitchers(ctx context.Context, rows []game.ScheduledGame, games []game.Game, force bool) error {
	if s.pitchers == nil {
		return nil
	}

	pool, err := ants.NewPool(s.maxWorkers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	submit := func(side *game.TeamSide, pitcherName string) error {
		if !pitcher.IsAnnounced(pitcherName) {
			side.ProbablePitcher = nil
			return nil
		}
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			fact := s.pitchers.ResolvePitcherERA(ctx, side.Name, pitcherName, force)
			side.ProbablePitcher = &game.ProbablePitcher{Name: pitcherName, Fact: fact}
		}); err != nil {
			workers.Done()
			return fmt.Errorf("submit pitcher resolution: %w", err)
		}
		return nil
	}

	for i := range rows {
		if err := submit(&games[i].Home, rows[i].HomePitcherName); err != nil {
			workers.Wait()
			return err
		}
		if err := submit(&games[i].Away, rows[i].AwayPitcherName); err != nil {
			workers.Wait()
			return err
		}
	}
	workers.Wait()
	return nil
}

// enrich attaches team pitching lines and home-city weather. The loaders are
// total, so a recovered panic is the only failure and it leaves defaults.
func (s *ScheduleService) enrich(ctx context.Context, day time.Time, games []game.Game, force bool) {
	if s.teamStats == nil && s.weather == nil {
		return
	}

	season := day.Year()
	var wg conc.WaitGroup
	for i := range games {
		g := &games[i]
		if s.teamStats != nil {
			wg.Go(func() {
				stats := s.teamStats.LoadTeamStats(ctx, g.Home.Name, season, force)
				g.Home.Stats = &stats
			})
			wg.Go(func() {
				stats := s.teamStats.LoadTeamStats(ctx, g.Away.Name, season, force)
				g.Away.Stats = &stats
			})
		}
		if s.weather != nil {
			wg.Go(func() {
				weather := game.DefaultWeather()
				if team, ok := game.LookupTeam(g.Home.Name); ok {
					weather = s.weather.LoadWeather(ctx, team.City, force)
				}
				g.Weather = &weather
			})
		}
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		s.logger.ErrorContext(ctx, "schedule enrichment panicked", "panic", recovered.String())
	}
}
