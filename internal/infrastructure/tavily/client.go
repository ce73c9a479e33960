package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsbrief/internal/config"
	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

// Client implements ports.Searcher against the Tavily search API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Searcher = (*Client)(nil)

// NewClient builds a search client from configuration.
func NewClient(cfg config.SearchConfig) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type searchRequest struct {
	APIKey            string   `json:"api_key"`
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	Topic             string   `json:"topic,omitempty"`
	Days              int      `json:"days,omitempty"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	IncludeRawContent bool     `json:"include_raw_content"`
	MaxResults        int      `json:"max_results"`
}

type searchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	RawContent    any     `json:"raw_content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// Search posts one query and returns the provider's hits in order.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest) ([]domain.RawResult, error) {
	if c.apiKey == "" || c.baseURL == "" {
		return nil, fmt.Errorf("tavily client misconfigured")
	}

	body, err := json.Marshal(searchRequest{
		APIKey:            c.apiKey,
		Query:             req.Query,
		SearchDepth:       "advanced",
		Topic:             req.Topic,
		Days:              req.Days,
		IncludeDomains:    req.IncludeDomains,
		IncludeRawContent: true,
		MaxResults:        req.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("tavily error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]domain.RawResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, domain.RawResult{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			RawContent:    r.RawContent,
			Score:         r.Score,
			PublishedDate: r.PublishedDate,
		})
	}
	return results, nil
}
