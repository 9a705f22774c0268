// Package slack posts Block Kit messages to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/eic-hr/eic/internal/resilience"
)

// TextObject is a Block Kit text element.
type TextObject struct {
	Type  string `json:"type"` // "plain_text" or "mrkdwn"
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// Block is a Block Kit layout block.
type Block struct {
	Type     string       `json:"type"` // "header", "section", "divider", "context"
	Text     *TextObject  `json:"text,omitempty"`
	Elements []TextObject `json:"elements,omitempty"`
}

// Message is a webhook payload.
type Message struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks,omitempty"`
}

// Header returns a plain-text header block.
func Header(text string) Block {
	return Block{Type: "header", Text: &TextObject{Type: "plain_text", Text: text, Emoji: true}}
}

// Section returns a mrkdwn section block.
func Section(markdown string) Block {
	return Block{Type: "section", Text: &TextObject{Type: "mrkdwn", Text: markdown}}
}

// Divider returns a divider block.
func Divider() Block {
	return Block{Type: "divider"}
}

// Context returns a mrkdwn context block.
func Context(markdown string) Block {
	return Block{Type: "context", Elements: []TextObject{{Type: "mrkdwn", Text: markdown}}}
}

// Client posts messages to one webhook URL.
type Client interface {
	Post(ctx context.Context, msg Message) error
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRetryPolicy overrides the retry policy (for testing).
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *httpClient) { c.retry = p }
}

type httpClient struct {
	webhookURL string
	http       *http.Client
	retry      resilience.Policy
}

// NewClient creates a webhook client.
func NewClient(webhookURL string, opts ...Option) Client {
	c := &httpClient{
		webhookURL: webhookURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: resilience.Linear(2, 2*time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Post(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return eris.Wrap(err, "slack: marshal message")
	}

	return resilience.Do(ctx, "slack.post", c.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
		if err != nil {
			return eris.Wrap(err, "slack: create request")
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return eris.Wrap(err, "slack: request failed")
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			err := eris.Errorf("slack: status %d: %s", resp.StatusCode, string(body))
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return resilience.Transient(err, resp.StatusCode)
			}
			return err
		}
		return nil
	})
}
