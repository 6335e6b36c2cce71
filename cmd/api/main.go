package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/riskibarqy/mlb-predictions/internal/app"
	"github.com/riskibarqy/mlb-predictions/internal/config"
	"github.com/riskibarqy/mlb-predictions/internal/infrastructure/scheduler"
	"github.com/riskibarqy/mlb-predictions/internal/observability"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	srv, err := application.NewHTTPServer()
	if err != nil {
		logger.Error("build http server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if debugSrv := observability.NewPprofServer(cfg); debugSrv != nil {
		group.Go(func() error {
			logger.Info("pprof server starting", "addr", debugSrv.Addr)
			if err := debugSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return debugSrv.Shutdown(shutdownCtx)
		})
	}

	if cfg.WarmupEnabled {
		job, err := scheduler.NewWarmupJob(scheduler.WarmupConfig{
			Spec:     cfg.WarmupCron,
			Warmer:   application.Predictions,
			Location: cfg.Location,
			Logger:   logger.Named("warmup"),
		})
		if err != nil {
			logger.Error("build warmup job", "error", err)
			os.Exit(1)
		}
		group.Go(func() error {
			_ = job.RunOnce(groupCtx)
			return job.Run(groupCtx)
		})
	}

	runErr := group.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("uptrace shutdown failed", "error", err)
	}
	if err := stopProfiler(); err != nil {
		logger.Error("pyroscope stop failed", "error", err)
	}

	if runErr != nil {
		logger.Error("server stopped with error", "error", runErr)
		os.Exit(1)
	}
	logger.Info("http server stopped")
}
