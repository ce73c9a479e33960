package app

import (
	"context"
	"log/slog"
	"os"

	"newsbrief/internal/config"
	"newsbrief/internal/infrastructure/azureopenai"
	"newsbrief/internal/infrastructure/feed"
	"newsbrief/internal/infrastructure/resend"
	"newsbrief/internal/infrastructure/tavily"
	"newsbrief/internal/logging"
	"newsbrief/internal/ports"
	"newsbrief/internal/usecase"
)

// Application wires configuration to adapters and the pipeline.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	var feedSource ports.FeedSource
	if len(cfg.Feeds.URLs) > 0 {
		feedSource = feed.NewSource(cfg.Feeds.Timeout(), baseLogger.With("component", "feed"))
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Searcher:  tavily.NewClient(cfg.Search),
		Feeds:     feedSource,
		Completer: azureopenai.NewClient(cfg.Completion),
		Mailer:    resend.NewClient(cfg.Email),
		Preview:   os.Stdout,
		Logger:    baseLogger.With("component", "pipeline"),
		Config:    cfg,
	})

	return &Application{cfg: cfg, pipeline: pipeline}
}

// Run executes one newsletter run. With dryRun set the issue is
// previewed on stdout instead of being emailed.
func (a *Application) Run(ctx context.Context, dryRun bool) error {
	return a.pipeline.Run(ctx, dryRun)
}
