package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eic-hr/eic/internal/model"
	"github.com/eic-hr/eic/pkg/slack"
)

// Notifier builds and posts the daily Slack summary.
type Notifier struct {
	client  slack.Client
	repoURL string
}

// New creates a Notifier. repoURL is the fallback link shown when the
// run produced no discussion URL.
func New(client slack.Client, repoURL string) *Notifier {
	return &Notifier{client: client, repoURL: repoURL}
}

// Notify posts the summary for one run. highlights must already be in
// presentation order (see SelectHighlights).
func (n *Notifier) Notify(ctx context.Context, summary *model.RunSummary, highlights []model.Record) error {
	var msg slack.Message
	if summary.HighItems+summary.TrendItems == 0 {
		msg = buildNoUpdatesMessage(summary)
	} else {
		msg = buildDailyMessage(summary, highlights, n.repoURL)
	}

	if err := n.client.Post(ctx, msg); err != nil {
		return eris.Wrap(err, "notify: post daily summary")
	}
	zap.L().Info("slack notification sent",
		zap.String("date", summary.Date),
		zap.Int("highlights", len(highlights)))
	return nil
}

func buildNoUpdatesMessage(summary *model.RunSummary) slack.Message {
	text := fmt.Sprintf("EIC Daily Insights - %s: 新着アイテムなし", summary.Date)
	return slack.Message{
		Text: text,
		Blocks: []slack.Block{
			slack.Header(fmt.Sprintf("📰 EIC Daily Insights - %s", summary.Date)),
			slack.Section("本日の新着アイテムはありませんでした。"),
			slack.Context("Powered by EIC (External Insight Collector)"),
		},
	}
}

func buildDailyMessage(summary *model.RunSummary, highlights []model.Record, repoURL string) slack.Message {
	blocks := []slack.Block{
		slack.Header(fmt.Sprintf("📰 EIC Daily Insights - %s", summary.Date)),
		slack.Section(fmt.Sprintf(
			"*新着:* %d件（HIGH %d / TREND %d）\n*収集:* %d件 / 重複スキップ %d件",
			summary.HighItems+summary.TrendItems,
			summary.HighItems, summary.TrendItems,
			summary.Collected, summary.Duplicates)),
	}

	if len(highlights) > 0 {
		blocks = append(blocks, slack.Divider())
		var b strings.Builder
		b.WriteString("*注目アイテム*\n")
		for i, rec := range highlights {
			fmt.Fprintf(&b, "%d. %s <%s|%s>（%s / 信頼度%d）\n",
				i+1, scoreEmoji(rec.ReliabilityScore), rec.URL,
				escapeMarkdown(rec.Title), rec.SourceName, rec.ReliabilityScore)
		}
		blocks = append(blocks, slack.Section(strings.TrimRight(b.String(), "\n")))
	}

	blocks = append(blocks, slack.Divider())
	if summary.Published && summary.DiscussionURL != "" {
		blocks = append(blocks, slack.Section(fmt.Sprintf("詳細: <%s|本日のディスカッション>", summary.DiscussionURL)))
	} else {
		blocks = append(blocks,
			slack.Section(fmt.Sprintf("⚠️ ディスカッション投稿に失敗しました。データは保存済みです。\n詳細: <%s|リポジトリ>", repoURL)))
	}
	blocks = append(blocks, slack.Context("Powered by EIC (External Insight Collector)"))

	return slack.Message{
		Text: fmt.Sprintf("EIC Daily Insights - %s: 新着%d件",
			summary.Date, summary.HighItems+summary.TrendItems),
		Blocks: blocks,
	}
}

func scoreEmoji(score int) string {
	switch {
	case score >= 70:
		return "🟢"
	case score >= 50:
		return "🟡"
	default:
		return "🔴"
	}
}

// escapeMarkdown neutralizes characters Slack treats as control
// sequences inside link labels.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "|", "¦")
	return r.Replace(s)
}
