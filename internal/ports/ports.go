package ports

import (
	"context"

	"newsbrief/internal/domain"
)

// Searcher runs one query against the news search provider.
type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest) ([]domain.RawResult, error)
}

// FeedSource pulls supplemental candidates from syndication feeds.
type FeedSource interface {
	Fetch(ctx context.Context, feedURLs []string) ([]domain.ArticleCandidate, error)
}

// Completer sends a prompt to the language model and returns the raw
// completion text, expected to be a single JSON document.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Mailer delivers one finished newsletter and returns the provider's
// message id.
type Mailer interface {
	Send(ctx context.Context, email domain.Email) (string, error)
}
