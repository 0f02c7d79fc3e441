package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsCurator/internal/config"
	"NewsCurator/internal/infrastructure/analysis"
	"NewsCurator/internal/infrastructure/crawler"
	"NewsCurator/internal/infrastructure/llm"
	"NewsCurator/internal/infrastructure/naver"
	"NewsCurator/internal/infrastructure/scheduler"
	"NewsCurator/internal/infrastructure/storage"
	"NewsCurator/internal/infrastructure/telegram"
	"NewsCurator/internal/keyword"
	"NewsCurator/internal/logging"
	"NewsCurator/internal/ratelimit"
	"NewsCurator/internal/search"
	"NewsCurator/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	closeDB   func() error
}

// New builds a fully wired application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	repository := storage.NewPostgresRepository(db)

	limiter := ratelimit.New(cfg.Naver.RequestsPerSecond, 1)
	registry := search.NewRegistry()
	registry.Register(naver.NewClient(cfg.Naver, cfg.Dedup, limiter, nil,
		baseLogger.With("component", "search.naver")))

	provider, err := registry.Resolve(cfg.Naver.Provider)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tracker := keyword.NewHistoryTracker(repository, time.Now)
	generator := keyword.NewGenerator(
		llm.NewKeywordSource(cfg.KeywordGen),
		tracker,
		cfg.Keywords,
		baseLogger.With("component", "keywords"),
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Keywords: generator,
		Search:   provider,
		Enricher: crawler.NewEnricher(nil, baseLogger.With("component", "crawler")),
		Scorer:   analysis.NewClient(cfg.Analysis.Endpoint, cfg.Analysis.APIKey),
		News:     repository,
		Notifier: telegram.NewNotifier(cfg.Notifications.Telegram),
		Logger:   baseLogger.With("component", "pipeline"),
		Config:   cfg.Pipeline,
	})

	daily := scheduler.NewDailyScheduler(cfg.Scheduler)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipeline:  pipeline,
		scheduler: usecase.NewScheduler(daily, pipeline),
		closeDB:   db.Close,
	}, nil
}

// RunOnce performs a single pipeline execution for the current day.
func (a *Application) RunOnce(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.pipeline.ProcessDay(ctx, now)
}

// Start launches the daily trigger and blocks until ctx is cancelled.
func (a *Application) Start(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started",
		"runAt", a.cfg.Scheduler.RunAt,
		"timezone", a.cfg.Scheduler.Timezone)

	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.closeDB == nil {
		return nil
	}
	return a.closeDB()
}
