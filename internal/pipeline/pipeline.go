// Package pipeline orchestrates one daily collection run: collect,
// dedup, fetch, analyze, store, publish, notify. Item failures are
// isolated; sink failures degrade the run instead of aborting it.
package pipeline

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eic-hr/eic/internal/analysis"
	"github.com/eic-hr/eic/internal/clock"
	"github.com/eic-hr/eic/internal/config"
	"github.com/eic-hr/eic/internal/dedup"
	"github.com/eic-hr/eic/internal/model"
	"github.com/eic-hr/eic/internal/notify"
	"github.com/eic-hr/eic/internal/store"
)

// Collector gathers candidate items from one source group's feeds.
type Collector interface {
	Collect(ctx context.Context, sources []model.Source, group model.SourceGroup) []model.Candidate
}

// Fetcher retrieves and extracts an article's main text.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Analyzer produces a validated enrichment for one candidate.
type Analyzer interface {
	Analyze(ctx context.Context, cand model.Candidate, content string) (*model.Enrichment, error)
}

// Publisher reconciles the dated discussion thread and its comments.
type Publisher interface {
	Publish(ctx context.Context, date string, summary *model.RunSummary, high, trend []model.Record) (string, error)
}

// Notifier sends the run summary to chat.
type Notifier interface {
	Notify(ctx context.Context, summary *model.RunSummary, highlights []model.Record) error
}

// Pipeline wires the stages of a daily run together.
type Pipeline struct {
	cfg       *config.Config
	clk       *clock.Clock
	index     *dedup.Index
	store     *store.Store
	collector Collector
	fetcher   Fetcher
	analyzer  Analyzer
	publisher Publisher
	notifier  Notifier

	highSources  []model.Source
	trendSources []model.Source
}

// New assembles a Pipeline from its stages.
func New(
	cfg *config.Config,
	clk *clock.Clock,
	index *dedup.Index,
	st *store.Store,
	collector Collector,
	fetcher Fetcher,
	analyzer Analyzer,
	publisher Publisher,
	notifier Notifier,
	highSources, trendSources []model.Source,
) *Pipeline {
	return &Pipeline{
		cfg:          cfg,
		clk:          clk,
		index:        index,
		store:        st,
		collector:    collector,
		fetcher:      fetcher,
		analyzer:     analyzer,
		publisher:    publisher,
		notifier:     notifier,
		highSources:  highSources,
		trendSources: trendSources,
	}
}

// Run executes one daily run for the given date. It always returns a
// summary; the error is non-nil only for failures that prevented the
// run from proceeding at all.
func (p *Pipeline) Run(ctx context.Context, date string) (*model.RunSummary, error) {
	summary := &model.RunSummary{Date: date}
	log := zap.L().With(zap.String("date", date))

	log.Info("run started",
		zap.Int("high_sources", len(p.highSources)),
		zap.Int("trend_sources", len(p.trendSources)))

	highCands := p.collector.Collect(ctx, p.highSources, model.GroupHigh)
	trendCands := p.collector.Collect(ctx, p.trendSources, model.GroupTrend)
	summary.Collected = len(highCands) + len(trendCands)

	seenThisRun := make(map[string]bool)
	p.processGroup(ctx, highCands, p.cfg.Collect.MaxHighItems, seenThisRun, summary, log)
	p.processGroup(ctx, trendCands, p.cfg.Collect.MaxTrendItems, seenThisRun, summary, log)

	high, trend, err := p.store.ItemsForDate(date)
	if err != nil {
		summary.RecordError(fmt.Sprintf("store: read back %s: %v", date, err))
		log.Error("store read-back failed", zap.Error(err))
	}
	summary.HighItems = len(high)
	summary.TrendItems = len(trend)

	// An empty day gets no discussion thread, only the no-updates
	// notification.
	if len(high)+len(trend) > 0 {
		if url, err := p.publisher.Publish(ctx, date, summary, high, trend); err != nil {
			summary.RecordError(fmt.Sprintf("discussion: publish: %v", err))
			log.Error("discussion publication failed", zap.Error(err))
		} else {
			summary.Published = true
			summary.DiscussionURL = url
		}
	} else {
		log.Info("no items for date, skipping discussion publication")
	}

	highlights := notify.SelectHighlights(high, trend, notify.HighlightCount)
	if err := p.notifier.Notify(ctx, summary, highlights); err != nil {
		summary.RecordError(fmt.Sprintf("slack: notify: %v", err))
		log.Error("slack notification failed", zap.Error(err))
	} else {
		summary.Notified = true
	}

	if err := p.index.Save(); err != nil {
		summary.RecordError(fmt.Sprintf("dedup: save index: %v", err))
		log.Error("index save failed", zap.Error(err))
	}

	log.Info("run finished",
		zap.Int("collected", summary.Collected),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("stored", summary.Stored),
		zap.Bool("published", summary.Published),
		zap.Bool("notified", summary.Notified),
		zap.Int("errors", len(summary.Errors)))

	return summary, nil
}

// processGroup runs dedup, fetch, analyze, and store for one group's
// candidates, up to the group's cap of new items. A failing item never
// stops the others.
func (p *Pipeline) processGroup(ctx context.Context, cands []model.Candidate, maxNew int, seenThisRun map[string]bool, summary *model.RunSummary, log *zap.Logger) {
	stored := 0
	for _, cand := range cands {
		if stored >= maxNew {
			break
		}

		fp := dedup.Fingerprint(cand.URL)
		if seenThisRun[fp] || p.index.Seen(fp) {
			summary.Duplicates++
			continue
		}
		seenThisRun[fp] = true

		rec, err := p.processItem(ctx, cand, fp, summary)
		if err != nil {
			summary.RecordError(fmt.Sprintf("%s: %v", cand.URL, err))
			log.Warn("item dropped",
				zap.String("url", cand.URL),
				zap.String("source", cand.SourceKey),
				zap.Error(err))
			continue
		}

		if err := p.store.Append(*rec); err != nil {
			summary.RecordError(fmt.Sprintf("store: append %s: %v", cand.URL, err))
			log.Error("append failed", zap.String("url", cand.URL), zap.Error(err))
			continue
		}
		p.index.Record(fp, cand.SourceKey, rec.Title, p.clk.Now())
		summary.Stored++
		stored++
	}
}

// processItem fetches and analyzes one candidate. Fetch failure
// degrades to title-only analysis; analysis failure drops the item.
func (p *Pipeline) processItem(ctx context.Context, cand model.Candidate, fp string, summary *model.RunSummary) (*model.Record, error) {
	content, err := p.fetcher.Fetch(ctx, cand.URL)
	retrievedAt := p.clk.Now()
	if err != nil {
		summary.FetchFailed++
		zap.L().Warn("content fetch failed, analyzing title only",
			zap.String("url", cand.URL), zap.Error(err))
		content = ""
	} else {
		summary.FetchedOK++
	}

	enr, err := p.analyzer.Analyze(ctx, cand, content)
	if err != nil {
		summary.AnalysisFailed++
		return nil, eris.Wrap(err, "analysis")
	}
	summary.AnalyzedOK++

	return p.buildRecord(cand, fp, content, enr, retrievedAt), nil
}

func (p *Pipeline) buildRecord(cand model.Candidate, fp, content string, enr *model.Enrichment, retrievedAt time.Time) *model.Record {
	base := analysis.BaseScore(cand.SourceType)

	feedPubDate := ""
	if cand.Published != nil {
		feedPubDate = cand.Published.Format(time.RFC3339)
	}

	return &model.Record{
		ItemID:        fp,
		URL:           cand.URL,
		URLNormalized: dedup.Normalize(cand.URL),

		SourceGroup: cand.Group,
		SourceKey:   cand.SourceKey,
		SourceName:  cand.SourceName,
		SourceType:  cand.SourceType,
		Publisher:   cand.Publisher,

		FeedTitle:   cand.Title,
		FeedPubDate: feedPubDate,

		Title:       enr.Title,
		Summary:     enr.Summary,
		KeyPoints:   enr.KeyPoints,
		Themes:      enr.Themes,
		Tags:        enr.Tags,
		Language:    enr.Language,
		PublishedAt: enr.PublishedAt,

		ReliabilityScore:  analysis.FinalScore(cand.SourceType, enr.ScoreDelta),
		ReliabilityBase:   base,
		ReliabilityDelta:  enr.ScoreDelta,
		ReliabilityReason: enr.ScoreReason,

		ContentLength: utf8.RuneCountInString(content),
		ObservedAt:    p.clk.Now().Format(time.RFC3339),
		RetrievedAt:   retrievedAt.Format(time.RFC3339),
		IngestVersion: model.IngestVersion,
	}
}
