package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/riskibarqy/mlb-predictions/internal/platform/metrics"
	"github.com/robfig/cron/v3"
)

const defaultRunTimeout = 5 * time.Minute

// Warmer precomputes data ahead of the first request.
type Warmer interface {
	Warmup(ctx context.Context) error
}

type WarmupConfig struct {
	Spec       string
	Warmer     Warmer
	Location   *time.Location
	RunTimeout time.Duration
	Logger     *logging.Logger
}

// WarmupJob runs Warmer on a cron schedule. Overlapping runs are skipped.
type WarmupJob struct {
	spec    string
	warmer  Warmer
	timeout time.Duration
	logger  *logging.Logger
	cron    *cron.Cron
	runs    atomic.Int64
}

func NewWarmupJob(cfg WarmupConfig) (*WarmupJob, error) {
	if cfg.Warmer == nil {
		return nil, fmt.Errorf("warmup job requires a warmer")
	}
	spec := strings.TrimSpace(cfg.Spec)
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse warmup schedule %q: %w", spec, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	timeout := cfg.RunTimeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}

	adapter := cronLogger{logger: logger}
	return &WarmupJob{
		spec:    spec,
		warmer:  cfg.Warmer,
		timeout: timeout,
		logger:  logger,
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
	}, nil
}

// Runs reports how many warm-ups have finished, successful or not.
func (j *WarmupJob) Runs() int64 {
	return j.runs.Load()
}

// Run blocks until ctx is done, then waits for an in-flight warm-up.
func (j *WarmupJob) Run(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.spec, func() {
		_ = j.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule warmup: %w", err)
	}

	j.cron.Start()
	j.logger.InfoContext(ctx, "warmup scheduled", "spec", j.spec)

	<-ctx.Done()
	<-j.cron.Stop().Done()
	j.logger.Info("warmup scheduler stopped")
	return nil
}

// RunOnce performs a single bounded warm-up and records its outcome.
func (j *WarmupJob) RunOnce(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	err := j.warmer.Warmup(runCtx)
	j.runs.Add(1)
	metrics.ObserveWarmup(err)
	if err != nil {
		j.logger.ErrorContext(ctx, "warmup failed", "elapsed_ms", time.Since(start).Milliseconds(), "error", err)
		return err
	}

	j.logger.InfoContext(ctx, "warmup finished", "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron "+msg, append(keysAndValues, "error", err)...)
}
