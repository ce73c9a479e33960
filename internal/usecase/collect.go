package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"newsbrief/internal/domain"
)

// collect runs the trusted-domain and broad searches concurrently,
// pulls optional feed candidates, and merges everything into a
// URL-unique candidate set.
func (p *Pipeline) collect(ctx context.Context, log *slog.Logger) (domain.CandidateSet, error) {
	query := fmt.Sprintf("latest news on %s", p.cfg.Newsletter.Interests)

	var (
		trusted, broad       []domain.ArticleCandidate
		trustedErr, broadErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		trusted, trustedErr = p.search(gctx, domain.SearchRequest{
			Query:          query,
			IncludeDomains: p.cfg.Newsletter.TrustedDomains,
			MaxResults:     p.cfg.Search.MaxResults,
		}, domain.OriginTrusted)
		return nil
	})
	g.Go(func() error {
		broad, broadErr = p.search(gctx, domain.SearchRequest{
			Query:      query,
			Topic:      "news",
			Days:       1,
			MaxResults: p.cfg.Search.MaxResults,
		}, domain.OriginBroad)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// One empty or failed search degrades the run, it does not end it.
	if trustedErr != nil {
		log.Warn("trusted search failed", "error", trustedErr)
	} else if len(trusted) == 0 {
		log.Warn("trusted search returned no results")
	}
	if broadErr != nil {
		log.Warn("broad search failed", "error", broadErr)
	} else if len(broad) == 0 {
		log.Warn("broad search returned no results")
	}

	if len(trusted) == 0 && len(broad) == 0 {
		if trustedErr != nil || broadErr != nil {
			return nil, fmt.Errorf("both searches failed: trusted: %v; broad: %v", trustedErr, broadErr)
		}
		return nil, fmt.Errorf("both searches returned no results")
	}

	var feed []domain.ArticleCandidate
	if p.feeds != nil && len(p.cfg.Feeds.URLs) > 0 {
		var err error
		feed, err = p.feeds.Fetch(ctx, p.cfg.Feeds.URLs)
		if err != nil {
			log.Warn("feed fetch failed", "error", err)
		}
	}

	merged := mergeCandidates(trusted, broad, feed)
	log.Debug("candidates merged",
		"trusted", len(trusted), "broad", len(broad), "feed", len(feed), "merged", len(merged))
	return merged, nil
}

// search issues one provider query under the retry policy and
// normalizes the hits.
func (p *Pipeline) search(ctx context.Context, req domain.SearchRequest, origin domain.SearchOrigin) ([]domain.ArticleCandidate, error) {
	var results []domain.RawResult
	err := p.callRetry.Do(ctx, func(ctx context.Context) error {
		var callErr error
		results, callErr = p.searcher.Search(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.ArticleCandidate, 0, len(results))
	for _, res := range results {
		if res.URL == "" {
			continue
		}
		candidates = append(candidates, normalizeResult(res, origin))
	}
	return candidates, nil
}

// normalizeResult turns a wire-level hit into a candidate with a
// guaranteed-string content field.
func normalizeResult(res domain.RawResult, origin domain.SearchOrigin) domain.ArticleCandidate {
	content := coerceString(res.RawContent)
	if content == "" {
		content = res.Content
	}
	return domain.ArticleCandidate{
		URL:          res.URL,
		Title:        res.Title,
		RawContent:   content,
		SourceDomain: domain.Host(res.URL),
		PublishedAt:  res.PublishedDate,
		Origin:       origin,
	}
}

// coerceString flattens whatever the provider put in the raw content
// slot into a string. Null and missing values become empty.
func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// mergeCandidates concatenates the groups and deduplicates by URL.
// When the same URL arrives from several origins the higher-precedence
// candidate replaces the lower one in place, keeping the position of
// the first occurrence.
func mergeCandidates(groups ...[]domain.ArticleCandidate) domain.CandidateSet {
	index := make(map[string]int)
	var merged domain.CandidateSet
	for _, group := range groups {
		for _, cand := range group {
			if cand.URL == "" {
				continue
			}
			if at, seen := index[cand.URL]; seen {
				if cand.Origin.Precedence() < merged[at].Origin.Precedence() {
					merged[at] = cand
				}
				continue
			}
			index[cand.URL] = len(merged)
			merged = append(merged, cand)
		}
	}
	return merged
}
