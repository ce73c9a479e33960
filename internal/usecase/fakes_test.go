package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"newsbrief/internal/config"
	"newsbrief/internal/domain"
)

// fixedClock keeps rendered output reproducible across test runs.
var fixedClock = func() time.Time {
	return time.Date(2026, time.August, 30, 8, 0, 0, 0, time.UTC)
}

// fakeSearcher serves canned results, routing on the include-domain
// filter. The collector calls it from two goroutines.
type fakeSearcher struct {
	mu         sync.Mutex
	trusted    []domain.RawResult
	broad      []domain.RawResult
	trustedErr error
	broadErr   error
	calls      int
}

func (f *fakeSearcher) Search(ctx context.Context, req domain.SearchRequest) ([]domain.RawResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if len(req.IncludeDomains) > 0 {
		return f.trusted, f.trustedErr
	}
	return f.broad, f.broadErr
}

type fakeFeed struct {
	items []domain.ArticleCandidate
	err   error
	calls int
}

func (f *fakeFeed) Fetch(ctx context.Context, feedURLs []string) ([]domain.ArticleCandidate, error) {
	f.calls++
	return f.items, f.err
}

type fakeCompleter struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.response, f.err
}

type fakeMailer struct {
	id    string
	err   error
	calls int
	last  domain.Email
}

func (f *fakeMailer) Send(ctx context.Context, email domain.Email) (string, error) {
	f.calls++
	f.last = email
	return f.id, f.err
}

func testConfig() config.Config {
	return config.Config{
		Search: config.SearchConfig{MaxResults: 10},
		Completion: config.CompletionConfig{
			ContentLimit: 4000,
		},
		Email: config.EmailConfig{
			From:       "news@example.com",
			Recipients: []string{"a@example.com", "b@example.com"},
		},
		Newsletter: config.NewsletterConfig{
			Name:           "AI Daily Brief",
			Interests:      "LLMs, AI agents",
			Audience:       "tech professionals",
			TrustedDomains: []string{"openai.com", "anthropic.com"},
			MaxArticles:    5,
		},
		Retry: config.RetryConfig{Attempts: 1, EmailAttempts: 1, BaseDelayMS: 1},
	}
}

type testDeps struct {
	searcher  *fakeSearcher
	feeds     *fakeFeed
	completer *fakeCompleter
	mailer    *fakeMailer
}

func newTestPipeline(deps testDeps, cfg config.Config, preview io.Writer) *Pipeline {
	pd := PipelineDeps{
		Completer: deps.completer,
		Mailer:    deps.mailer,
		Clock:     fixedClock,
		Preview:   preview,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:    cfg,
	}
	if deps.searcher != nil {
		pd.Searcher = deps.searcher
	}
	if deps.feeds != nil {
		pd.Feeds = deps.feeds
	}
	return NewPipeline(pd)
}
