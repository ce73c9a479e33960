package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"newsbrief/internal/config"
	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
	"newsbrief/pkg/retry"
)

// Stage sentinels let callers identify which pipeline stage failed.
var (
	ErrCollect = errors.New("collection failed")
	ErrProcess = errors.New("processing failed")
	ErrDeliver = errors.New("delivery failed")
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Searcher  ports.Searcher
	Feeds     ports.FeedSource
	Completer ports.Completer
	Mailer    ports.Mailer
	Clock     func() time.Time
	Preview   io.Writer
	Logger    *slog.Logger
	Config    config.Config
}

// Pipeline implements the newsletter workflow: collect candidates,
// score and summarize them, deliver the digest.
type Pipeline struct {
	searcher  ports.Searcher
	feeds     ports.FeedSource
	completer ports.Completer
	mailer    ports.Mailer
	clock     func() time.Time
	preview   io.Writer
	logger    *slog.Logger
	cfg       config.Config
	callRetry retry.Policy
	sendRetry retry.Policy
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	preview := deps.Preview
	if preview == nil {
		preview = os.Stdout
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		searcher:  deps.Searcher,
		feeds:     deps.Feeds,
		completer: deps.Completer,
		mailer:    deps.Mailer,
		clock:     clock,
		preview:   preview,
		logger:    logger,
		cfg:       deps.Config,
		callRetry: retry.Policy{
			Attempts:  deps.Config.Retry.Attempts,
			BaseDelay: deps.Config.Retry.BaseDelay(),
		},
		sendRetry: retry.Policy{
			Attempts:  deps.Config.Retry.EmailAttempts,
			BaseDelay: deps.Config.Retry.BaseDelay(),
		},
	}
}

// Run executes one full newsletter run. With dryRun set the rendered
// issue is written to the preview writer and no email goes out.
func (p *Pipeline) Run(ctx context.Context, dryRun bool) error {
	started := p.clock()
	log := p.logger.With("run_id", uuid.NewString())
	log.Info("newsletter run started", "dry_run", dryRun)

	candidates, err := p.collect(ctx, log)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCollect, err)
	}
	log.Info("collection finished", "candidates", len(candidates))

	articles, editorial, err := p.process(ctx, log, candidates)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProcess, err)
	}
	log.Info("processing finished", "articles", len(articles))

	digest := domain.NewsletterDigest{
		Name:      p.cfg.Newsletter.Name,
		Date:      started,
		Audience:  p.cfg.Newsletter.Audience,
		Interests: p.cfg.Newsletter.Interests,
		Articles:  articles,
		Editorial: editorial,
	}

	result, err := p.deliver(ctx, log, digest, dryRun)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliver, err)
	}

	log.Info("newsletter run finished",
		"dry_run", result.DryRun,
		"recipients", result.Recipients,
		"message_id", result.MessageID,
		"duration", p.clock().Sub(started).String())
	return nil
}
