package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/mlb-predictions/external/bbref"
	"github.com/riskibarqy/mlb-predictions/external/espn"
	"github.com/riskibarqy/mlb-predictions/external/mlbstats"
	"github.com/riskibarqy/mlb-predictions/external/openweather"
	"github.com/riskibarqy/mlb-predictions/internal/config"
	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
	"github.com/riskibarqy/mlb-predictions/internal/domain/prediction"
	repocache "github.com/riskibarqy/mlb-predictions/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/mlb-predictions/internal/infrastructure/static"
	"github.com/riskibarqy/mlb-predictions/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/mlb-predictions/internal/platform/cache"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/riskibarqy/mlb-predictions/internal/platform/metrics"
	"github.com/riskibarqy/mlb-predictions/internal/platform/resilience"
	"github.com/riskibarqy/mlb-predictions/internal/platform/webfetch"
	"github.com/riskibarqy/mlb-predictions/internal/usecase"
)

// Cache namespaces. Negative lookups live next to each pitcher namespace
// under a "_not_found" suffix.
const (
	NamespaceMLBStats    = "mlb_stats"
	NamespaceESPN        = "espn"
	NamespaceBBRef       = "bbref"
	NamespaceStatic      = "static"
	NamespaceTeamStats   = "team_stats"
	NamespaceWeather     = "weather"
	NamespaceGames       = "games"
	NamespacePredictions = "predictions"

	notFoundSuffix = "_not_found"
)

// App holds the assembled services. Both the HTTP server and the operator
// CLI are built from it.
type App struct {
	Config      config.Config
	Logger      *logging.Logger
	Store       *basecache.Store
	Reconciler  *usecase.Reconciler
	Schedule    *usecase.ScheduleService
	Predictions *usecase.PredictionService
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store := basecache.NewStore(basecache.Config{
		Dir:           cfg.CacheDir,
		MemoryCleanup: cfg.CacheMemoryCleanup,
		Logger:        logger.Named("cache"),
		Observer:      metrics.CacheObserver{},
	})
	onCircuitChange := circuitObserver(logger)

	official := mlbstats.NewClient(mlbstats.ClientConfig{
		BaseURL:         cfg.MLBStatsBaseURL,
		Timeout:         cfg.MLBStatsTimeout,
		MaxRetries:      cfg.MLBStatsMaxRetries,
		Logger:          logger.Named("mlbstats"),
		CircuitBreaker:  cfg.MLBStatsCircuit,
		OnCircuitChange: onCircuitChange,
		Location:        cfg.Location,
	})

	fetchers, err := buildPitcherFetchers(cfg, logger, store, official, onCircuitChange)
	if err != nil {
		return nil, err
	}
	reconciler := usecase.NewReconciler(fetchers, logger.Named("reconciler"))

	var weather game.WeatherLoader
	if cfg.WeatherEnabled {
		weatherClient := openweather.NewClient(openweather.ClientConfig{
			BaseURL:         cfg.WeatherBaseURL,
			APIKey:          cfg.WeatherAPIKey,
			Timeout:         cfg.WeatherTimeout,
			Logger:          logger.Named("openweather"),
			CircuitBreaker:  cfg.WeatherCircuit,
			OnCircuitChange: onCircuitChange,
		})
		weather = repocache.NewWeatherLoader(weatherClient, store.Bucket(NamespaceWeather, cfg.CacheTTL.Weather), logger)
	}

	schedule := usecase.NewScheduleService(usecase.ScheduleServiceConfig{
		Primary:    official,
		Fallback:   static.SampleSchedule{},
		Pitchers:   reconciler,
		TeamStats:  repocache.NewTeamStatsLoader(official, store.Bucket(NamespaceTeamStats, cfg.CacheTTL.TeamStats), logger),
		Weather:    weather,
		Cache:      store.Bucket(NamespaceGames, cfg.CacheTTL.Schedule),
		MaxWorkers: cfg.ResolverMaxWorkers,
		Location:   cfg.Location,
		Logger:     logger.Named("schedule"),
	})

	predictions := usecase.NewPredictionService(usecase.PredictionServiceConfig{
		Schedule:        schedule,
		Cache:           store.Bucket(NamespacePredictions, cfg.CacheTTL.Predictions),
		Clearer:         store,
		RefreshInterval: cfg.RefreshInterval,
		Bands:           prediction.RatingBands{Bet: cfg.RatingBetThreshold, Lean: cfg.RatingLeanThreshold},
		Version:         cfg.ServiceVersion,
		Location:        cfg.Location,
		Logger:          logger.Named("predictions"),
	})

	logger.Info("app assembled",
		"cache_dir", store.Dir(),
		"sources", reconciler.Sources(),
		"weather_enabled", cfg.WeatherEnabled,
	)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Reconciler:  reconciler,
		Schedule:    schedule,
		Predictions: predictions,
	}, nil
}

// NewHTTPServer wires the router over the prediction service.
func (a *App) NewHTTPServer() (*http.Server, error) {
	routerCfg := httpapi.RouterConfig{CORSAllowedOrigins: a.Config.CORSAllowedOrigins}
	if a.Config.MetricsEnabled {
		routerCfg.MetricsHandler = metrics.Handler()
	}

	handler := httpapi.NewHandler(a.Predictions, a.Logger)
	router := httpapi.NewRouter(handler, a.Logger, routerCfg)

	server := &http.Server{
		Addr:         a.Config.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.Config.ReadTimeout,
		WriteTimeout: a.Config.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

// buildPitcherFetchers returns the reconciler chain in priority order:
// official API, ESPN, Baseball-Reference, then the hardcoded table.
func buildPitcherFetchers(
	cfg config.Config,
	logger *logging.Logger,
	store *basecache.Store,
	official *mlbstats.Client,
	onCircuitChange resilience.StateChangeFunc,
) ([]pitcher.Fetcher, error) {
	wrap := func(provider pitcher.Provider, namespace string, ttl time.Duration) pitcher.Fetcher {
		return repocache.NewPitcherFetcher(provider,
			store.Bucket(namespace, ttl),
			store.Bucket(namespace+notFoundSuffix, cfg.CacheTTL.NotFound),
			cfg.FetchTimeout,
			logger.Named(namespace),
		)
	}

	fetchers := []pitcher.Fetcher{wrap(official, NamespaceMLBStats, cfg.CacheTTL.MLBStats)}

	if cfg.ESPNEnabled {
		scraper, err := espn.NewScraper(espn.Config{
			BaseURL: cfg.ESPNBaseURL,
			Fetcher: newPageClient(cfg, logger, "espn", onCircuitChange),
			Logger:  logger.Named("espn"),
		})
		if err != nil {
			return nil, fmt.Errorf("build espn scraper: %w", err)
		}
		fetchers = append(fetchers, wrap(scraper, NamespaceESPN, cfg.CacheTTL.ESPN))
	}

	if cfg.BBRefEnabled {
		scraper, err := bbref.NewScraper(bbref.Config{
			BaseURL: cfg.BBRefBaseURL,
			Season:  cfg.BBRefSeason,
			Fetcher: newPageClient(cfg, logger, "bbref", onCircuitChange),
			Logger:  logger.Named("bbref"),
		})
		if err != nil {
			return nil, fmt.Errorf("build bbref scraper: %w", err)
		}
		fetchers = append(fetchers, wrap(scraper, NamespaceBBRef, cfg.CacheTTL.BBRef))
	}

	if cfg.StaticTableEnabled {
		fetchers = append(fetchers, wrap(static.NewPitcherTable(nil, nil), NamespaceStatic, cfg.CacheTTL.Static))
	}

	return fetchers, nil
}

// newPageClient gives each scraper its own limiter and breaker.
func newPageClient(cfg config.Config, logger *logging.Logger, source string, onCircuitChange resilience.StateChangeFunc) *webfetch.Client {
	return webfetch.New(webfetch.Config{
		Source:          source,
		Timeout:         cfg.ScraperTimeout,
		UserAgents:      cfg.ScraperUserAgents,
		RespectRobots:   cfg.ScraperRespectRobots,
		RatePerSecond:   cfg.ScraperRatePerSec,
		Burst:           cfg.ScraperBurst,
		MinDelay:        cfg.ScraperMinDelay,
		CircuitBreaker:  cfg.ScraperCircuit,
		OnCircuitChange: onCircuitChange,
		Logger:          logger,
	})
}

func circuitObserver(logger *logging.Logger) resilience.StateChangeFunc {
	return func(name string, from, to resilience.CircuitState) {
		metrics.ObserveCircuit(name, from, to)
		logger.Warn("circuit breaker state changed", "name", name, "from", string(from), "to", string(to))
	}
}
