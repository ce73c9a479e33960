package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

// Source implements ports.FeedSource over RSS/Atom feeds. Individual
// feed failures are soft: they are logged and skipped, never fatal.
type Source struct {
	parser  *gofeed.Parser
	timeout time.Duration
	logger  *slog.Logger
}

var _ ports.FeedSource = (*Source)(nil)

// NewSource builds a feed source with a per-feed fetch timeout.
func NewSource(timeout time.Duration, logger *slog.Logger) *Source {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		parser:  gofeed.NewParser(),
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch pulls every feed in order and flattens the items into
// candidates tagged with the feed origin.
func (s *Source) Fetch(ctx context.Context, feedURLs []string) ([]domain.ArticleCandidate, error) {
	var candidates []domain.ArticleCandidate
	for _, feedURL := range feedURLs {
		items, err := s.fetchOne(ctx, feedURL)
		if err != nil {
			if ctx.Err() != nil {
				return candidates, ctx.Err()
			}
			s.logger.Warn("feed fetch failed", "feed", feedURL, "error", err)
			continue
		}
		candidates = append(candidates, items...)
	}
	return candidates, nil
}

func (s *Source) fetchOne(ctx context.Context, feedURL string) ([]domain.ArticleCandidate, error) {
	feedCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	parsed, err := s.parser.ParseURLWithContext(feedURL, feedCtx)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.ArticleCandidate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		content := item.Content
		if content == "" {
			content = item.Description
		}
		candidates = append(candidates, domain.ArticleCandidate{
			URL:          item.Link,
			Title:        item.Title,
			RawContent:   content,
			SourceDomain: domain.Host(item.Link),
			PublishedAt:  item.Published,
			Origin:       domain.OriginFeed,
		})
	}
	return candidates, nil
}
