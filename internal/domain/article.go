package domain

import (
	"net/url"
	"strings"
	"time"
)

// SearchOrigin labels which collection strategy produced a candidate.
type SearchOrigin string

const (
	OriginTrusted SearchOrigin = "trusted"
	OriginBroad   SearchOrigin = "broad"
	OriginFeed    SearchOrigin = "feed"
)

// Precedence orders origins for merging. Lower wins when the same URL
// shows up from more than one strategy.
func (o SearchOrigin) Precedence() int {
	switch o {
	case OriginTrusted:
		return 0
	case OriginBroad:
		return 1
	case OriginFeed:
		return 2
	default:
		return 3
	}
}

// SearchRequest describes one query against the news search provider.
type SearchRequest struct {
	Query          string
	Topic          string
	Days           int
	IncludeDomains []string
	MaxResults     int
}

// RawResult is a single hit as the search provider returns it. RawContent
// stays untyped because the provider sends null, strings or numbers in
// that slot depending on the page.
type RawResult struct {
	Title         string
	URL           string
	Content       string
	RawContent    any
	Score         float64
	PublishedDate string
}

// ArticleCandidate is a normalized article considered for the newsletter.
type ArticleCandidate struct {
	URL          string
	Title        string
	RawContent   string
	SourceDomain string
	PublishedAt  string
	Origin       SearchOrigin
}

// CandidateSet is an ordered collection of candidates unique by URL.
type CandidateSet []ArticleCandidate

// RankedArticle is a candidate the model scored and summarized.
type RankedArticle struct {
	Headline     string
	Summary      string
	KeyTakeaways []string
	Score        float64
	URL          string
	Reason       string
}

// Editorial carries the framing copy around the story list.
type Editorial struct {
	OpeningHook    string
	ToolOfTheDay   string
	ClosingThought string
}

// NewsletterDigest is the fully assembled issue, ready to render.
type NewsletterDigest struct {
	Name      string
	Date      time.Time
	Audience  string
	Interests string
	Articles  []RankedArticle
	Editorial Editorial
}

// Email is one outbound message for the full recipient list.
type Email struct {
	From           string
	To             []string
	Subject        string
	HTML           string
	Text           string
	IdempotencyKey string
}

// DeliveryResult reports what the delivery stage did with the digest.
type DeliveryResult struct {
	DryRun     bool
	MessageID  string
	Recipients int
}

// Host extracts the bare hostname from a raw URL, without a leading
// "www." and lowercased. Unparsable URLs yield an empty string.
func Host(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
