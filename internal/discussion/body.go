package discussion

import (
	"fmt"
	"strings"

	"github.com/eic-hr/eic/internal/clock"
	"github.com/eic-hr/eic/internal/model"
)

// truncateRunes shortens s to at most n runes; summaries are Japanese,
// so a byte slice could split a character.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// reliabilityEmoji maps a score to its traffic-light indicator.
func reliabilityEmoji(score int) string {
	switch {
	case score >= 70:
		return "🟢"
	case score >= 50:
		return "🟡"
	default:
		return "🔴"
	}
}

// ThreadBody renders the opening post: collection summary, error
// excerpt, and a pointer to the monthly data file.
func ThreadBody(date string, summary *model.RunSummary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# EIC Daily Insights - %s\n\n", date)
	sb.WriteString("HR関連の外部情報を自動収集しました。\n\n")
	sb.WriteString("## 収集サマリ\n\n")
	fmt.Fprintf(&sb, "- **High Trust**: %d件\n", summary.HighItems)
	fmt.Fprintf(&sb, "- **Trend**: %d件\n", summary.TrendItems)
	fmt.Fprintf(&sb, "- **重複スキップ**: %d件\n", summary.Duplicates)

	if len(summary.Errors) > 0 {
		sb.WriteString("\n## エラー\n\n")
		errs := summary.Errors
		if len(errs) > 10 {
			errs = errs[:10]
		}
		for _, e := range errs {
			fmt.Fprintf(&sb, "- %s\n", e)
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString("**HIGH TRUST**: 省庁・研究機関・大手メディアからの記事\n\n")
	sb.WriteString("**TREND**: Zenn/Qiita等トレンド系メディアからの記事\n\n")
	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "📁 データ: `data/items/%s.jsonl`\n", clock.Month(date))

	return sb.String()
}

// CommentBody renders one category list comment. The marker token is
// the first line so reconciliation can rediscover the comment later.
func CommentBody(cat Category, date string, items []model.Record) string {
	var sb strings.Builder
	sb.WriteString(CommentMarker(cat, date))
	sb.WriteString("\n\n")

	var header, emoji string
	if cat == CategoryHigh {
		header = "## High Trust Sources"
		emoji = "🏛️"
	} else {
		header = "## Trend Sources"
		emoji = "📈"
	}
	sb.WriteString(header)
	sb.WriteString("\n\n")

	if len(items) == 0 {
		sb.WriteString("_収集アイテムなし_")
		return sb.String()
	}

	for i, item := range items {
		fmt.Fprintf(&sb, "### %d. [%s](%s)\n\n", i+1, item.Title, item.URL)
		fmt.Fprintf(&sb, "**%s %s** | `%s` | %s %d\n\n",
			emoji, item.SourceName, item.SourceType,
			reliabilityEmoji(item.ReliabilityScore), item.ReliabilityScore)

		if len(item.Themes) > 0 {
			fmt.Fprintf(&sb, "**テーマ**: %s\n\n", strings.Join(item.Themes, ", "))
		}

		if item.Summary != "" {
			sb.WriteString(truncateRunes(item.Summary, 500))
			sb.WriteString("\n\n")
		}

		if len(item.KeyPoints) > 0 {
			sb.WriteString("**要点:**\n")
			points := item.KeyPoints
			if len(points) > 3 {
				points = points[:3]
			}
			for _, kp := range points {
				fmt.Fprintf(&sb, "- %s\n", kp)
			}
			sb.WriteString("\n")
		}

		sb.WriteString("---\n\n")
	}

	return sb.String()
}
