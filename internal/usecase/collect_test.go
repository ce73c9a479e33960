package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"newsbrief/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCollectPrefersTrustedOnSharedURL(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{
		trusted: []domain.RawResult{
			{Title: "Official announcement", URL: "https://openai.com/news/a", RawContent: "primary source"},
		},
		broad: []domain.RawResult{
			{Title: "Coverage of announcement", URL: "https://openai.com/news/a", RawContent: "secondhand"},
			{Title: "Other story", URL: "https://example.com/b", RawContent: "body"},
		},
	}
	p := newTestPipeline(testDeps{searcher: searcher}, testConfig(), io.Discard)

	merged, err := p.collect(context.Background(), discardLogger())
	if err != nil {
		t.Fatalf("collect returned error: %v", err)
	}

	if len(merged) != 2 {
		t.Fatalf("expected 2 unique candidates, got %d", len(merged))
	}
	seen := make(map[string]int)
	for _, cand := range merged {
		seen[cand.URL]++
	}
	for url, count := range seen {
		if count != 1 {
			t.Errorf("url %s appears %d times in merged set", url, count)
		}
	}

	got := merged[0]
	if got.Origin != domain.OriginTrusted {
		t.Errorf("shared url must keep the trusted origin, got %s", got.Origin)
	}
	if got.Title != "Official announcement" || got.RawContent != "primary source" {
		t.Errorf("shared url must keep the trusted fields, got %+v", got)
	}
}

func TestCollectCoercesRawContentToString(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{
		broad: []domain.RawResult{
			{Title: "null content", URL: "https://x.test/1", RawContent: nil, Content: "fallback text"},
			{Title: "numeric content", URL: "https://x.test/2", RawContent: float64(42.5)},
			{Title: "missing content", URL: "https://x.test/3"},
			{Title: "string content", URL: "https://x.test/4", RawContent: "already text"},
		},
	}
	p := newTestPipeline(testDeps{searcher: searcher}, testConfig(), io.Discard)

	merged, err := p.collect(context.Background(), discardLogger())
	if err != nil {
		t.Fatalf("collect returned error: %v", err)
	}
	if len(merged) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(merged))
	}

	if merged[0].RawContent != "fallback text" {
		t.Errorf("null raw content must fall back to the content field, got %q", merged[0].RawContent)
	}
	if merged[1].RawContent != "42.5" {
		t.Errorf("numeric raw content must stringify, got %q", merged[1].RawContent)
	}
	if merged[2].RawContent != "" {
		t.Errorf("missing raw content must coerce to empty string, got %q", merged[2].RawContent)
	}
	if merged[3].RawContent != "already text" {
		t.Errorf("string raw content must pass through, got %q", merged[3].RawContent)
	}
}

func TestCollectContinuesWhenTrustedSearchIsEmpty(t *testing.T) {
	t.Parallel()

	broad := make([]domain.RawResult, 5)
	for i := range broad {
		broad[i] = domain.RawResult{
			Title:      "story",
			URL:        "https://example.com/" + string(rune('a'+i)),
			RawContent: "body",
		}
	}
	searcher := &fakeSearcher{broad: broad}
	p := newTestPipeline(testDeps{searcher: searcher}, testConfig(), io.Discard)

	merged, err := p.collect(context.Background(), discardLogger())
	if err != nil {
		t.Fatalf("empty trusted search must not be fatal: %v", err)
	}
	if len(merged) != 5 {
		t.Fatalf("expected the 5 broad results, got %d", len(merged))
	}
	if searcher.calls != 2 {
		t.Fatalf("both searches must run, got %d calls", searcher.calls)
	}
}

func TestCollectFailsWhenBothSearchesAreEmpty(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(testDeps{searcher: &fakeSearcher{}}, testConfig(), io.Discard)

	if _, err := p.collect(context.Background(), discardLogger()); err == nil {
		t.Fatal("expected fatal error when both searches return nothing")
	}
}

func TestCollectFeedCandidatesRankLast(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{
		broad: []domain.RawResult{
			{Title: "Broad version", URL: "https://example.com/shared", RawContent: "broad body"},
		},
	}
	feeds := &fakeFeed{
		items: []domain.ArticleCandidate{
			{URL: "https://example.com/shared", Title: "Feed version", RawContent: "feed body", Origin: domain.OriginFeed},
			{URL: "https://lab.test/fresh", Title: "Feed only", RawContent: "feed body", Origin: domain.OriginFeed},
		},
	}

	cfg := testConfig()
	cfg.Feeds.URLs = []string{"https://lab.test/rss"}
	p := newTestPipeline(testDeps{searcher: searcher, feeds: feeds}, cfg, io.Discard)

	merged, err := p.collect(context.Background(), discardLogger())
	if err != nil {
		t.Fatalf("collect returned error: %v", err)
	}

	if feeds.calls != 1 {
		t.Fatalf("feed source must be consulted once, got %d", feeds.calls)
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(merged))
	}
	if merged[0].Title != "Broad version" {
		t.Errorf("feed candidate must never displace a search candidate, got %+v", merged[0])
	}
	if merged[1].Origin != domain.OriginFeed {
		t.Errorf("feed-only candidate must survive with feed origin, got %+v", merged[1])
	}
}

func TestCollectFeedSourceDisabledWithoutURLs(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{
		broad: []domain.RawResult{{Title: "s", URL: "https://example.com/s", RawContent: "b"}},
	}
	feeds := &fakeFeed{}
	p := newTestPipeline(testDeps{searcher: searcher, feeds: feeds}, testConfig(), io.Discard)

	if _, err := p.collect(context.Background(), discardLogger()); err != nil {
		t.Fatalf("collect returned error: %v", err)
	}
	if feeds.calls != 0 {
		t.Fatalf("feed source must stay idle with no configured feeds, got %d calls", feeds.calls)
	}
}

func TestCollectSkipsResultsWithoutURL(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{
		broad: []domain.RawResult{
			{Title: "no url", RawContent: "body"},
			{Title: "ok", URL: "https://example.com/ok", RawContent: "body"},
		},
	}
	p := newTestPipeline(testDeps{searcher: searcher}, testConfig(), io.Discard)

	merged, err := p.collect(context.Background(), discardLogger())
	if err != nil {
		t.Fatalf("collect returned error: %v", err)
	}
	if len(merged) != 1 || merged[0].URL != "https://example.com/ok" {
		t.Fatalf("url-less results must be dropped, got %+v", merged)
	}
}

func TestMergeCandidatesKeepsFirstWithinOrigin(t *testing.T) {
	t.Parallel()

	merged := mergeCandidates([]domain.ArticleCandidate{
		{URL: "https://x.test/a", Title: "first", Origin: domain.OriginBroad},
		{URL: "https://x.test/a", Title: "second", Origin: domain.OriginBroad},
	})
	if len(merged) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(merged))
	}
	if merged[0].Title != "first" {
		t.Fatalf("first occurrence must win within one origin, got %q", merged[0].Title)
	}
}
