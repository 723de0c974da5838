package mailer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config holds configuration for the transactional email client.
type Config struct {
	APIKey  string
	BaseURL string
	From    string
}

// Message is a single transactional email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Client sends transactional email through a Resend-compatible API.
type Client struct {
	client  *resty.Client
	baseURL string
	from    string
}

// NewClient creates a new mailer client.
// Parameters:
//   - cfg: email configuration including API key and sender address.
// Returns:
//   - *Client: initialized client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(15 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}

	return &Client{
		client:  client,
		baseURL: baseURL,
		from:    cfg.From,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send delivers one email. There are no retries; a provider failure is
// returned to the caller.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - msg: message to deliver.
// Returns:
//   - error: non-nil if the provider rejects or the request fails.
func (c *Client) Send(ctx context.Context, msg Message) error {
	var body sendResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(sendRequest{
			From:    c.from,
			To:      []string{msg.To},
			Subject: msg.Subject,
			HTML:    msg.HTML,
		}).
		SetResult(&body).
		Post(c.baseURL + "/emails")
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("failed to send email: status %d", resp.StatusCode())
	}

	return nil
}
