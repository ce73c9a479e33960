package resend

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

// Client implements ports.Mailer against the Resend email API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Mailer = (*Client)(nil)

// NewClient builds a mail client from configuration.
func NewClient(cfg config.EmailConfig) *Client {
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

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send posts one email for the full recipient list and returns the
// provider's message id.
func (c *Client) Send(ctx context.Context, email domain.Email) (string, error) {
	if c.apiKey == "" || c.baseURL == "" {
		return "", fmt.Errorf("resend client misconfigured")
	}
	if email.From == "" || len(email.To) == 0 {
		return "", fmt.Errorf("email has no sender or recipients")
	}

	body, err := json.Marshal(sendRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.Text,
	})
	if err != nil {
		return "", fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if email.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", email.IdempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("resend error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode send response: %w", err)
	}

	return decoded.ID, nil
}
