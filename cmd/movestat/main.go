package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/movestat/internal/adapters/export"
	"github.com/okian/movestat/internal/adapters/http/api"
	"github.com/okian/movestat/internal/adapters/repository"
	"github.com/okian/movestat/internal/adapters/source"
	service "github.com/okian/movestat/internal/app"
	"github.com/okian/movestat/internal/config"
	"github.com/okian/movestat/internal/domain/kinematics"
	"github.com/okian/movestat/pkg/logger"
	"github.com/okian/movestat/pkg/metrics"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(2)
	}

	if err := logger.InitWith(os.Stderr, cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(2)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	initMetrics(cfg)

	code := 0
	if err := run(ctx, cfg); err != nil {
		log.Error(ctx, "run failed", logger.Error(err))
		code = 1
	}
	if err := logger.Sync(); err != nil {
		os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
	}
	stop()
	os.Exit(code)
}

// initMetrics rebuilds the metrics registry from the metrics_* settings.
func initMetrics(cfg *config.Config) {
	metrics.Init(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithConstLabels(cfg.MetricsLabels),
	)
}

// run processes the configured matches, exports and persists the results,
// and serves the read API when an address is configured.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "close store", logger.Error(err))
		}
	}()

	pipeline, err := service.NewPipeline(
		service.WithWindow(cfg.Window),
		service.WithFrameDuration(cfg.FrameDuration),
		service.WithContinuitySlack(cfg.ContinuitySlack),
		service.WithTimeMode(kinematics.TimeMode(cfg.TimeMode)),
		service.WithTolerance(cfg.Tolerance),
	)
	if err != nil {
		return err
	}

	loader := source.NewLoader(cfg.DataDir)
	svc, err := service.New(loader,
		service.WithPipeline(pipeline),
		service.WithStore(store),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithFailFast(cfg.FailFast),
	)
	if err != nil {
		return err
	}

	ids := cfg.MatchIDs
	if len(ids) == 0 {
		if ids, err = loader.IDs(ctx); err != nil {
			return err
		}
	}

	report, runErr := svc.Run(ctx, ids)
	for _, f := range report.Failures {
		log.Warn(ctx, "match skipped", logger.Int64("match_id", f.MatchID), logger.Error(f.Err))
	}
	log.Info(ctx, "results ready",
		logger.String("run_id", report.RunID),
		logger.Int("matches", len(report.Results)),
		logger.Int("failed", len(report.Failures)),
		logger.Int("players", len(report.Averages)),
		logger.Duration("elapsed", report.Elapsed))
	if runErr != nil {
		return runErr
	}

	if cfg.Output != "" {
		if err := export.WriteFile(cfg.Output, export.Bundle{Records: report.Records(), Averages: report.Averages}); err != nil {
			return err
		}
		log.Info(ctx, "results exported", logger.String("output", cfg.Output))
	}

	if cfg.Addr == "" {
		return nil
	}
	err = api.NewServer(store).ListenAndServe(ctx, cfg.Addr)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// openStore returns a sqlite store when db_path is set and an in-memory
// store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.DBPath == "" {
		return repository.NewMemoryStore(), nil
	}
	return repository.NewSQLiteStore(ctx, cfg.DBPath)
}
