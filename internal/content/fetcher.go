// Package content fetches article HTML and extracts the main text.
// Absence of content is an expected outcome: the analysis stage falls
// back to title-only enrichment.
package content

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/eic-hr/eic/internal/resilience"
)

const userAgent = "Mozilla/5.0 (compatible; EIC-Bot/1.0; +https://github.com/eic-hr/eic)"

// Fetcher retrieves and extracts article text with bounded retries and
// a shared outbound rate limit.
type Fetcher struct {
	http     *http.Client
	limiter  *rate.Limiter
	minChars int
	maxChars int
	retry    resilience.Policy
}

// Option configures the Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) { f.http = hc }
}

// WithRetryPolicy overrides the fetch retry policy (for testing).
func WithRetryPolicy(p resilience.Policy) Option {
	return func(f *Fetcher) { f.retry = p }
}

// NewFetcher returns a Fetcher. Content shorter than minChars is treated
// as absent; longer than maxChars is truncated. requestsPerSec throttles
// all outbound fetches together.
func NewFetcher(timeout time.Duration, minChars, maxChars int, requestsPerSec float64, opts ...Option) *Fetcher {
	if requestsPerSec <= 0 {
		requestsPerSec = 2.0
	}
	f := &Fetcher{
		http: &http.Client{
			Timeout: timeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		minChars: minChars,
		maxChars: maxChars,
		// Two attempts with a fixed delay; content loss is recoverable
		// downstream, so there is no point in a long retry tail.
		retry: resilience.Linear(2, 2*time.Second),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the URL and returns the extracted main text. An error
// means the content is absent for this run; callers proceed title-only.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	html, err := resilience.DoVal(ctx, "content.fetch", f.retry, func(ctx context.Context) (string, error) {
		return f.fetchHTML(ctx, rawURL)
	})
	if err != nil {
		return "", err
	}

	text, err := f.extract(html, rawURL)
	if err != nil {
		return "", err
	}

	// Bounds count characters, not bytes; Japanese text must never be
	// cut mid-rune.
	runes := []rune(text)
	if len(runes) < f.minChars {
		return "", eris.Errorf("content: extracted %d chars, below minimum %d", len(runes), f.minChars)
	}
	if len(runes) > f.maxChars {
		text = string(runes[:f.maxChars])
	}

	zap.L().Debug("content extracted", zap.String("url", rawURL), zap.Int("chars", utf8.RuneCountInString(text)))
	return text, nil
}

func (f *Fetcher) fetchHTML(ctx context.Context, rawURL string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "content: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "content: create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")

	resp, err := f.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "content: request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("content: status %d for %s", resp.StatusCode, rawURL)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.Transient(err, resp.StatusCode)
		}
		return "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return "", eris.Wrap(err, "content: read body")
	}
	return string(body), nil
}

func (f *Fetcher) extract(html, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "content: parse url %s", rawURL)
	}

	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return "", eris.Wrap(err, "content: extract article")
	}

	// Collapse whitespace so stored lengths are comparable across sites.
	return strings.Join(strings.Fields(article.TextContent), " "), nil
}
