package analysis

import (
	"fmt"
	"strings"

	"github.com/eic-hr/eic/internal/model"
)

const systemPromptHeader = `You are an expert analyst covering the HR (human resources) domain.
Analyze the given article and respond with a single JSON object, no prose, no code fences.

Required fields:
- "title": cleaned article title
- "summary": Japanese summary, 200-400 characters
- "key_points": exactly 3 short takeaways, Japanese, one sentence each
- "themes": theme keys, only from the list below (empty array if none apply)
- "tags": 3-8 free-form tags describing the content
- "language": "ja", "en", or "unknown" — primary language of the article
- "published_at": ISO 8601 date if the body states one unambiguously, otherwise null
- "reliability_score_delta": integer in [-10, 10]; positive for solid research or primary data, negative for thin, promotional, or unsourced content
- "reliability_reason": one sentence justifying the delta

If the body is missing or very short, summarize from the title and append "※本文未取得のため推測" to the summary.

Allowed theme keys:
`

// SystemPrompt builds the system instruction with the closed theme list.
func SystemPrompt(catalog *ThemeCatalog) string {
	var sb strings.Builder
	sb.WriteString(systemPromptHeader)
	for _, th := range catalog.Themes {
		kw := th.Keywords
		if len(kw) > 5 {
			kw = kw[:5]
		}
		fmt.Fprintf(&sb, "- %s: %s (e.g. %s)\n", th.Key, th.Name, strings.Join(kw, ", "))
	}
	return sb.String()
}

// UserPrompt builds the per-article message. An empty content string is
// stated explicitly so the model falls back to the title.
func UserPrompt(cand model.Candidate, content string) string {
	if content == "" {
		content = "(本文取得失敗)"
	}
	return fmt.Sprintf(`## Article metadata
Source: %s
Publisher: %s
Source type: %s
Language hint: %s
Feed title: %s

## Article body
%s
`, cand.SourceName, cand.Publisher, cand.SourceType, cand.Language, cand.Title, content)
}
