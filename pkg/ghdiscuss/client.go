// Package ghdiscuss provides a GitHub Discussions client over the
// GraphQL API, covering the operations the publisher needs: repository
// lookup, recent discussions, discussion creation, and comment CRUD.
package ghdiscuss

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

const defaultEndpoint = "https://api.github.com/graphql"

// Discussion identifies a discussion thread on the board.
type Discussion struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// Comment is one discussion comment.
type Comment struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

// Client defines the Discussions operations used by the publisher.
type Client interface {
	RepositoryID(ctx context.Context, owner, name string) (string, error)
	RecentDiscussions(ctx context.Context, owner, name string, first int) ([]Discussion, error)
	CreateDiscussion(ctx context.Context, repoID, categoryID, title, body string) (*Discussion, error)
	ListComments(ctx context.Context, discussionID string, first int) ([]Comment, error)
	AddComment(ctx context.Context, discussionID, body string) (string, error)
	UpdateComment(ctx context.Context, commentID, body string) error
}

// Option configures the client.
type Option func(*httpClient)

// WithEndpoint sets a custom GraphQL endpoint (for testing).
func WithEndpoint(url string) Option {
	return func(c *httpClient) { c.endpoint = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRetryPolicy overrides the per-call retry policy (for testing).
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *httpClient) { c.retry = p }
}

type httpClient struct {
	token    string
	endpoint string
	http     *http.Client
	retry    resilience.Policy
}

// NewClient creates a Discussions client authenticated with token.
func NewClient(token string, opts ...Option) Client {
	retry := resilience.Exponential(3, 2*time.Second)
	// GitHub rate-limits aggressively on synchronized retries.
	retry.JitterFraction = 0.25

	c := &httpClient{
		token:    token,
		endpoint: defaultEndpoint,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: retry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// do executes one GraphQL request under the retry policy and decodes
// the data payload into out.
func (c *httpClient) do(ctx context.Context, op, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return eris.Wrap(err, "ghdiscuss: marshal request")
	}

	data, err := resilience.DoVal(ctx, op, c.retry, func(ctx context.Context) (json.RawMessage, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, eris.Wrap(err, "ghdiscuss: create request")
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/vnd.github+json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "ghdiscuss: request failed")
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "ghdiscuss: read response")
		}

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("ghdiscuss: status %d: %s", resp.StatusCode, string(body))
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.Transient(err, resp.StatusCode)
			}
			return nil, err
		}

		var gql graphqlResponse
		if err := json.Unmarshal(body, &gql); err != nil {
			return nil, eris.Wrap(err, "ghdiscuss: unmarshal response")
		}
		if len(gql.Errors) > 0 {
			return nil, eris.Errorf("ghdiscuss: graphql error: %s", gql.Errors[0].Message)
		}
		return gql.Data, nil
	})
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return eris.Wrap(err, "ghdiscuss: decode data")
		}
	}
	return nil
}
