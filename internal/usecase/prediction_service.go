package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
	"github.com/riskibarqy/mlb-predictions/internal/domain/prediction"
	basecache "github.com/riskibarqy/mlb-predictions/internal/platform/cache"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DataSourceLabel  = "MLB Stats API (Official)"
	statusTimeLayout = "2006-01-02 15:04:05"
	dateDisplay      = "Monday, January 02, 2006"
	datePickerRange  = 7
)

// ScheduleReader is the part of ScheduleService the prediction layer uses.
type ScheduleReader interface {
	GetGamesForDate(ctx context.Context, date string, forceRefresh bool) (game.Schedule, error)
	ParseDate(raw string) (time.Time, error)
	Today() time.Time
}

// CacheClearer drops every cached namespace.
type CacheClearer interface {
	ClearAll(ctx context.Context)
}

type PredictionServiceConfig struct {
	Schedule        ScheduleReader
	Cache           *basecache.Bucket
	Clearer         CacheClearer
	State           *RefreshState
	RefreshInterval time.Duration
	Bands           prediction.RatingBands
	Version         string
	Location        *time.Location
	Logger          *logging.Logger
	Now             func() time.Time
}

type PredictionService struct {
	schedule        ScheduleReader
	cache           *basecache.Bucket
	clearer         CacheClearer
	state           *RefreshState
	refreshInterval time.Duration
	bands           prediction.RatingBands
	version         string
	location        *time.Location
	logger          *logging.Logger
	now             func() time.Time

	refreshMu sync.Mutex
}

func NewPredictionService(cfg PredictionServiceConfig) *PredictionService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	state := cfg.State
	if state == nil {
		state = NewRefreshState(now())
	}
	bands := cfg.Bands
	if bands.Validate() != nil {
		bands = prediction.DefaultRatingBands()
	}
	version := cfg.Version
	if version == "" {
		version = "1.0.0"
	}
	return &PredictionService{
		schedule:        cfg.Schedule,
		cache:           cfg.Cache,
		clearer:         cfg.Clearer,
		state:           state,
		refreshInterval: cfg.RefreshInterval,
		bands:           bands,
		version:         version,
		location:        location,
		logger:          logger,
		now:             now,
	}
}

// GetAllPredictions scores every game of the date for every proposition.
// A forced call clears all caches first.
func (s *PredictionService) GetAllPredictions(ctx context.Context, date string, forceRefresh bool) (prediction.Set, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetAllPredictions")
	defer span.End()

	day, err := s.schedule.ParseDate(date)
	if err != nil {
		return prediction.Set{}, err
	}
	dateKey := game.FormatDate(day)
	span.SetAttributes(attribute.String("predictions.date", dateKey))

	s.Refresh(ctx, forceRefresh)

	var set prediction.Set
	load := func(ctx context.Context) (any, error) {
		return s.buildSet(ctx, dateKey, forceRefresh)
	}
	if s.cache == nil {
		return s.buildSet(ctx, dateKey, forceRefresh)
	}
	if _, err := s.cache.GetOrLoad(ctx, "all_"+dateKey, forceRefresh, &set, load); err != nil {
		return prediction.Set{}, err
	}
	return set, nil
}

func (s *PredictionService) buildSet(ctx context.Context, date string, force bool) (prediction.Set, error) {
	schedule, err := s.schedule.GetGamesForDate(ctx, date, force)
	if err != nil {
		return prediction.Set{}, fmt.Errorf("get games for %s: %w", date, err)
	}
	if err := ctx.Err(); err != nil {
		return prediction.Set{}, err
	}
	return prediction.Set{
		Predictions: prediction.ScoreAll(schedule.Games, s.bands),
		Metadata:    s.metadata(schedule),
	}, nil
}

func (s *PredictionService) metadata(schedule game.Schedule) prediction.Metadata {
	return prediction.Metadata{
		Date:           schedule.Date,
		Timestamp:      s.now().UTC(),
		GameCount:      len(schedule.Games),
		DataSource:     DataSourceLabel,
		ScheduleSource: schedule.Source,
	}
}

// GetPredictionsByType returns one proposition's ranked list. The type may
// be a canonical key or a URL alias.
func (s *PredictionService) GetPredictionsByType(ctx context.Context, date, predictionType string, forceRefresh bool) ([]prediction.Prediction, prediction.Metadata, error) {
	prop, err := prediction.ParseProposition(predictionType)
	if err != nil {
		return nil, prediction.Metadata{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	set, err := s.GetAllPredictions(ctx, date, forceRefresh)
	if err != nil {
		return nil, prediction.Metadata{}, err
	}
	items := set.Predictions[prop]
	if items == nil {
		items = []prediction.Prediction{}
	}
	return items, set.Metadata, nil
}

// GetPredictionForGame finds the game in today's, yesterday's or tomorrow's
// schedule and scores it.
func (s *PredictionService) GetPredictionForGame(ctx context.Context, gameID int64) (prediction.GamePredictions, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetPredictionForGame")
	defer span.End()

	if gameID <= 0 {
		return prediction.GamePredictions{}, fmt.Errorf("%w: game id must be positive", ErrInvalidInput)
	}
	span.SetAttributes(attribute.String("game.id", strconv.FormatInt(gameID, 10)))

	today := s.schedule.Today()
	var lookupErrs []error
	for _, offset := range []int{0, -1, 1} {
		date := game.FormatDate(today.AddDate(0, 0, offset))
		schedule, err := s.schedule.GetGamesForDate(ctx, date, false)
		if err != nil {
			lookupErrs = append(lookupErrs, err)
			continue
		}
		g, ok := schedule.FindGame(gameID)
		if !ok {
			continue
		}
		out := prediction.GamePredictions{
			Game:        g,
			Predictions: make(map[prediction.Proposition]prediction.Prediction, len(prediction.AllPropositions)),
			Metadata:    s.metadata(schedule),
		}
		for _, prop := range prediction.AllPropositions {
			out.Predictions[prop] = prediction.Score(g, prop, s.bands)
		}
		return out, nil
	}
	if len(lookupErrs) == 3 {
		return prediction.GamePredictions{}, errors.Join(lookupErrs...)
	}
	return prediction.GamePredictions{}, fmt.Errorf("%w: game=%d", ErrNotFound, gameID)
}

// Refresh clears every cache when forced or when the refresh interval has
// elapsed. It reports whether caches were cleared.
func (s *PredictionService) Refresh(ctx context.Context, force bool) bool {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	now := s.now()
	if !force && !s.state.Due(now, s.refreshInterval) {
		return false
	}
	if s.clearer != nil {
		s.clearer.ClearAll(ctx)
	}
	s.state.Mark(now)
	s.logger.InfoContext(ctx, "prediction caches cleared", "forced", force)
	return true
}

type Status struct {
	Status          string
	CurrentTime     string
	LastRefreshTime string
	Version         string
}

func (s *PredictionService) Status() Status {
	last := "Never"
	if at, ok := s.state.LastRefresh(); ok {
		last = at.In(s.location).Format(statusTimeLayout)
	}
	return Status{
		Status:          "online",
		CurrentTime:     s.now().In(s.location).Format(statusTimeLayout),
		LastRefreshTime: last,
		Version:         s.version,
	}
}

type DateOption struct {
	Date    string
	Display string
	IsToday bool
}

// AvailableDates lists today and the seven days either side of it.
func (s *PredictionService) AvailableDates() []DateOption {
	today := s.schedule.Today()
	out := make([]DateOption, 0, datePickerRange*2+1)
	for offset := -datePickerRange; offset <= datePickerRange; offset++ {
		day := today.AddDate(0, 0, offset)
		out = append(out, DateOption{
			Date:    game.FormatDate(day),
			Display: day.Format(dateDisplay),
			IsToday: offset == 0,
		})
	}
	return out
}

// Warmup computes today's predictions so the first request is served from
// cache.
func (s *PredictionService) Warmup(ctx context.Context) error {
	set, err := s.GetAllPredictions(ctx, "", false)
	if err != nil {
		return fmt.Errorf("warm up predictions: %w", err)
	}
	s.logger.InfoContext(ctx, "predictions warmed up", "date", set.Metadata.Date, "games", set.Metadata.GameCount)
	return nil
}
