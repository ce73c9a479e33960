package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"newsbrief/internal/domain"
	"newsbrief/pkg/htmltext"
)

// Fallback editorial copy for when the model omits or malforms a field.
const (
	defaultOpeningHook    = "Here is your daily AI briefing."
	defaultToolOfTheDay   = "Explore new AI tools to boost your productivity."
	defaultClosingThought = "The field of AI continues to evolve at a breathtaking pace. Stay curious!"
)

const maxTakeaways = 5

// process sends the candidate set to the language model in one prompt
// and parses the response into a ranked, bounded article list plus the
// editorial framing copy.
func (p *Pipeline) process(ctx context.Context, log *slog.Logger, candidates domain.CandidateSet) ([]domain.RankedArticle, domain.Editorial, error) {
	prompt := buildPrompt(candidates, p.cfg.Newsletter.Interests, p.cfg.Newsletter.Audience,
		p.clock(), p.cfg.Completion.ContentLimit)

	var completion string
	err := p.callRetry.Do(ctx, func(ctx context.Context) error {
		var callErr error
		completion, callErr = p.completer.Complete(ctx, prompt)
		return callErr
	})
	if err != nil {
		return nil, domain.Editorial{}, fmt.Errorf("completion call: %w", err)
	}

	articles, editorial, err := parseCompletion(log, completion, candidates)
	if err != nil {
		return nil, domain.Editorial{}, err
	}

	// Stable sort keeps collection order on score ties.
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Score > articles[j].Score
	})
	if limit := p.cfg.Newsletter.MaxArticles; limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	return articles, editorial, nil
}

// buildPrompt embeds every candidate (index, title, flattened content,
// url) plus the interests and audience into a single instruction that
// asks for one JSON object back.
func buildPrompt(candidates domain.CandidateSet, interests, audience string, day time.Time, contentLimit int) string {
	entries := make([]string, 0, len(candidates))
	for i, cand := range candidates {
		content := htmltext.Truncate(htmltext.Flatten(cand.RawContent), contentLimit)
		entries = append(entries, fmt.Sprintf("ID: %d\nTitle: %s\nURL: %s\nContent: %s",
			i, cand.Title, cand.URL, content))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI newsletter curator and editor for an audience of %s.\n", audience)
	fmt.Fprintf(&b, "Score the following articles by relevance to these interests: %s.\n", interests)
	b.WriteString("Consider newsworthiness (breakthroughs > updates), practical value, and source credibility.\n")
	b.WriteString("Be selective: only truly noteworthy news should score above 7.\n\n")
	fmt.Fprintf(&b, "Articles to review:\n%s\n\n", strings.Join(entries, "\n\n"))
	fmt.Fprintf(&b, "Write an engaging newsletter issue for %s.\n", day.Format("January 2, 2006"))
	b.WriteString(`Return ONE JSON object with these exact keys:
- "opening_hook": compelling 1-2 sentence intro about today's AI landscape.
- "articles": array with one object per noteworthy article, each having
  "id" (integer from the list above), "score" (float 0-10),
  "headline" (rewritten, engaging), "summary" (2-3 sentences on what happened and why it matters),
  "takeaways" (up to 5 short strings), and "reason" (1 sentence on why it was selected).
- "tool_of_the_day": one practical AI tool or resource recommendation.
- "closing_thought": a forward-looking insight or question to ponder.
Keep the tone professional yet conversational. Focus on practical implications.`)
	return b.String()
}

type completionEnvelope struct {
	OpeningHook    string            `json:"opening_hook"`
	Articles       []json.RawMessage `json:"articles"`
	ToolOfTheDay   string            `json:"tool_of_the_day"`
	ClosingThought string            `json:"closing_thought"`
}

type completionArticle struct {
	ID        *int     `json:"id"`
	Score     *float64 `json:"score"`
	Headline  string   `json:"headline"`
	Summary   string   `json:"summary"`
	Takeaways []string `json:"takeaways"`
	Reason    string   `json:"reason"`
}

type parsedArticle struct {
	index   int
	article domain.RankedArticle
}

// parseCompletion decodes the model output defensively: the top-level
// envelope must decode or the run fails, but each article entry parses
// or is skipped on its own. Survivors come back in collection order,
// so the caller's stable score sort breaks ties by collection order
// regardless of how the model ordered its response.
func parseCompletion(log *slog.Logger, completion string, candidates domain.CandidateSet) ([]domain.RankedArticle, domain.Editorial, error) {
	var envelope completionEnvelope
	if err := json.Unmarshal([]byte(completion), &envelope); err != nil {
		return nil, domain.Editorial{}, fmt.Errorf("decode completion: %w", err)
	}

	seen := make(map[int]bool)
	parsed := make([]parsedArticle, 0, len(envelope.Articles))
	for i, raw := range envelope.Articles {
		var entry completionArticle
		if err := json.Unmarshal(raw, &entry); err != nil {
			log.Warn("dropping malformed article entry", "index", i, "error", err)
			continue
		}
		if entry.ID == nil || *entry.ID < 0 || *entry.ID >= len(candidates) {
			log.Warn("dropping article entry with bad id", "index", i)
			continue
		}
		if seen[*entry.ID] {
			log.Warn("dropping duplicate article entry", "index", i, "id", *entry.ID)
			continue
		}
		if entry.Score == nil {
			log.Warn("dropping unscored article entry", "index", i, "id", *entry.ID)
			continue
		}

		cand := candidates[*entry.ID]
		headline := strings.TrimSpace(entry.Headline)
		summary := strings.TrimSpace(entry.Summary)
		if headline == "" && summary == "" {
			log.Warn("dropping empty article entry", "index", i, "id", *entry.ID)
			continue
		}
		if headline == "" {
			headline = cand.Title
		}

		takeaways := entry.Takeaways
		if len(takeaways) > maxTakeaways {
			takeaways = takeaways[:maxTakeaways]
		}

		seen[*entry.ID] = true
		parsed = append(parsed, parsedArticle{
			index: *entry.ID,
			article: domain.RankedArticle{
				Headline:     headline,
				Summary:      summary,
				KeyTakeaways: takeaways,
				Score:        *entry.Score,
				URL:          cand.URL,
				Reason:       entry.Reason,
			},
		})
	}

	if len(parsed) == 0 {
		return nil, domain.Editorial{}, fmt.Errorf("completion produced no usable articles")
	}

	sort.Slice(parsed, func(i, j int) bool {
		return parsed[i].index < parsed[j].index
	})
	articles := make([]domain.RankedArticle, len(parsed))
	for i, pa := range parsed {
		articles[i] = pa.article
	}

	return articles, editorialFrom(envelope), nil
}

func editorialFrom(envelope completionEnvelope) domain.Editorial {
	editorial := domain.Editorial{
		OpeningHook:    strings.TrimSpace(envelope.OpeningHook),
		ToolOfTheDay:   strings.TrimSpace(envelope.ToolOfTheDay),
		ClosingThought: strings.TrimSpace(envelope.ClosingThought),
	}
	if editorial.OpeningHook == "" {
		editorial.OpeningHook = defaultOpeningHook
	}
	if editorial.ToolOfTheDay == "" {
		editorial.ToolOfTheDay = defaultToolOfTheDay
	}
	if editorial.ClosingThought == "" {
		editorial.ClosingThought = defaultClosingThought
	}
	return editorial
}
