// Package analysis enriches candidates via the Anthropic API and
// validates the structured output against a strict schema before
// anything downstream sees it.
package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eic-hr/eic/internal/model"
	"github.com/eic-hr/eic/internal/resilience"
	"github.com/eic-hr/eic/pkg/anthropic"
)

// Summary length band enforced on model output, in runes. The prompt
// targets 200-400; the band leaves slack before a reroll is forced.
const (
	minSummaryRunes = 100
	maxSummaryRunes = 600
)

// keyPointPlaceholder pads short key-point lists to exactly three.
const keyPointPlaceholder = "(要点なし)"

// Analyzer turns candidates into validated enrichments.
type Analyzer struct {
	client    anthropic.Client
	catalog   *ThemeCatalog
	model     string
	maxTokens int64
	system    string
	retry     resilience.Policy
}

// NewAnalyzer builds an Analyzer. The system prompt is rendered once
// from the theme catalog.
func NewAnalyzer(client anthropic.Client, catalog *ThemeCatalog, modelID string, maxTokens int64) *Analyzer {
	p := resilience.Exponential(3, time.Second)
	// A malformed or schema-violating response is fixed by rerolling,
	// so every analysis error is retryable.
	p.Retryable = resilience.RetryAll
	return &Analyzer{
		client:    client,
		catalog:   catalog,
		model:     modelID,
		maxTokens: maxTokens,
		system:    SystemPrompt(catalog),
		retry:     p,
	}
}

// WithRetryPolicy overrides the retry policy (for testing).
func (a *Analyzer) WithRetryPolicy(p resilience.Policy) *Analyzer {
	p.Retryable = resilience.RetryAll
	a.retry = p
	return a
}

// Analyze enriches one candidate, retrying with backoff on any failure.
// Exhausted retries surface as an error; the caller drops the candidate
// for this run without aborting the batch.
func (a *Analyzer) Analyze(ctx context.Context, cand model.Candidate, content string) (*model.Enrichment, error) {
	temp := 0.3
	req := anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      a.system,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: UserPrompt(cand, content)},
		},
	}

	return resilience.DoVal(ctx, "analysis.analyze", a.retry, func(ctx context.Context) (*model.Enrichment, error) {
		resp, err := a.client.CreateMessage(ctx, req)
		if err != nil {
			return nil, err
		}

		enr, err := a.parse(resp.Text)
		if err != nil {
			zap.L().Warn("analysis output rejected",
				zap.String("url", cand.URL),
				zap.Error(err),
			)
			return nil, err
		}
		return enr, nil
	})
}

// parse decodes and validates a model response against the schema.
func (a *Analyzer) parse(text string) (*model.Enrichment, error) {
	var enr model.Enrichment
	if err := json.Unmarshal([]byte(stripFences(text)), &enr); err != nil {
		return nil, eris.Wrap(err, "analysis: decode response")
	}

	if enr.Title == "" {
		return nil, eris.New("analysis: empty title")
	}

	if n := utf8.RuneCountInString(enr.Summary); n < minSummaryRunes || n > maxSummaryRunes {
		return nil, eris.Errorf("analysis: summary length %d outside [%d, %d]", n, minSummaryRunes, maxSummaryRunes)
	}

	// Exactly three key points; pad or truncate rather than reroll.
	for len(enr.KeyPoints) < 3 {
		enr.KeyPoints = append(enr.KeyPoints, keyPointPlaceholder)
	}
	enr.KeyPoints = enr.KeyPoints[:3]

	for _, th := range enr.Themes {
		if !a.catalog.Allowed(th) {
			return nil, eris.Errorf("analysis: theme %q not in catalog", th)
		}
	}

	if enr.ScoreDelta > MaxScoreDelta {
		enr.ScoreDelta = MaxScoreDelta
	}
	if enr.ScoreDelta < -MaxScoreDelta {
		enr.ScoreDelta = -MaxScoreDelta
	}

	switch enr.Language {
	case "ja", "en", "unknown":
	default:
		enr.Language = "unknown"
	}

	return &enr, nil
}

// stripFences tolerates a response wrapped in a markdown code fence.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
