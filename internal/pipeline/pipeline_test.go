package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eic-hr/eic/internal/clock"
	"github.com/eic-hr/eic/internal/config"
	"github.com/eic-hr/eic/internal/dedup"
	"github.com/eic-hr/eic/internal/model"
	"github.com/eic-hr/eic/internal/store"
)

type fakeCollector struct {
	byGroup map[model.SourceGroup][]model.Candidate
}

func (f *fakeCollector) Collect(_ context.Context, _ []model.Source, group model.SourceGroup) []model.Candidate {
	return f.byGroup[group]
}

type fakeFetcher struct {
	failURLs map[string]bool
	calls    int
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (string, error) {
	f.calls++
	if f.failURLs[rawURL] {
		return "", eris.New("content: fetch failed")
	}
	return "本文テキスト " + rawURL, nil
}

type fakeAnalyzer struct {
	failURLs map[string]bool
	calls    int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, cand model.Candidate, _ string) (*model.Enrichment, error) {
	f.calls++
	if f.failURLs[cand.URL] {
		return nil, eris.New("analysis: invalid response")
	}
	return &model.Enrichment{
		Title:      cand.Title,
		Summary:    "要約: " + cand.Title,
		KeyPoints:  []string{"一", "二", "三"},
		Themes:     []string{"hr_policy"},
		Language:   "ja",
		ScoreDelta: 5,
	}, nil
}

type fakePublisher struct {
	url   string
	err   error
	calls int
	high  []model.Record
	trend []model.Record
}

func (f *fakePublisher) Publish(_ context.Context, _ string, _ *model.RunSummary, high, trend []model.Record) (string, error) {
	f.calls++
	f.high = high
	f.trend = trend
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeNotifier struct {
	err        error
	calls      int
	highlights []model.Record
	summary    *model.RunSummary
}

func (f *fakeNotifier) Notify(_ context.Context, summary *model.RunSummary, highlights []model.Record) error {
	f.calls++
	f.summary = summary
	f.highlights = highlights
	return f.err
}

type fixture struct {
	dir       string
	cfg       *config.Config
	clk       *clock.Clock
	collector *fakeCollector
	fetcher   *fakeFetcher
	analyzer  *fakeAnalyzer
	publisher *fakePublisher
	notifier  *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	return &fixture{
		dir: dir,
		cfg: &config.Config{
			Data: config.DataConfig{
				ItemsDir:  filepath.Join(dir, "items"),
				IndexFile: filepath.Join(dir, "index.json"),
			},
			Collect: config.CollectConfig{MaxHighItems: 20, MaxTrendItems: 20},
		},
		clk:       clock.NewFixed(time.UTC, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)),
		collector: &fakeCollector{byGroup: map[model.SourceGroup][]model.Candidate{}},
		fetcher:   &fakeFetcher{failURLs: map[string]bool{}},
		analyzer:  &fakeAnalyzer{failURLs: map[string]bool{}},
		publisher: &fakePublisher{url: "https://github.com/acme/insights/discussions/1"},
		notifier:  &fakeNotifier{},
	}
}

func (f *fixture) pipeline(t *testing.T) *Pipeline {
	t.Helper()
	idx, err := dedup.LoadIndex(f.cfg.Data.IndexFile)
	require.NoError(t, err)
	return New(f.cfg, f.clk, idx, store.New(f.cfg.Data.ItemsDir),
		f.collector, f.fetcher, f.analyzer, f.publisher, f.notifier, nil, nil)
}

func cand(url, title string, group model.SourceGroup) model.Candidate {
	return model.Candidate{
		URL: url, Title: title, Group: group,
		SourceKey: "src", SourceName: "ソース", SourceType: model.TypeMinistry,
	}
}

func TestRun_StoresPublishesNotifies(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.collector.byGroup[model.GroupHigh] = []model.Candidate{
		cand("https://example.go.jp/a", "記事A", model.GroupHigh),
		cand("https://example.go.jp/b", "記事B", model.GroupHigh),
	}
	f.collector.byGroup[model.GroupTrend] = []model.Candidate{
		cand("https://blog.example.com/c", "記事C", model.GroupTrend),
	}

	summary, err := f.pipeline(t).Run(context.Background(), "2025-07-01")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Collected)
	assert.Equal(t, 0, summary.Duplicates)
	assert.Equal(t, 3, summary.FetchedOK)
	assert.Equal(t, 3, summary.AnalyzedOK)
	assert.Equal(t, 3, summary.Stored)
	assert.Equal(t, 2, summary.HighItems)
	assert.Equal(t, 1, summary.TrendItems)
	assert.True(t, summary.Published)
	assert.Equal(t, "https://github.com/acme/insights/discussions/1", summary.DiscussionURL)
	assert.True(t, summary.Notified)
	assert.Empty(t, summary.Errors)

	assert.Equal(t, 1, f.publisher.calls)
	assert.Len(t, f.publisher.high, 2)
	assert.Len(t, f.publisher.trend, 1)
	assert.Equal(t, 1, f.notifier.calls)
	assert.Len(t, f.notifier.highlights, 3)

	recs, err := store.New(f.cfg.Data.ItemsDir).LoadMonth("2025-07")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, model.IngestVersion, recs[0].IngestVersion)
	assert.Equal(t, 85, recs[0].ReliabilityScore)
	assert.NotZero(t, recs[0].ContentLength)
}

func TestRun_RerunStoresNothingNew(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.collector.byGroup[model.GroupHigh] = []model.Candidate{
		cand("https://example.go.jp/a", "記事A", model.GroupHigh),
		cand("https://example.go.jp/b", "記事B", model.GroupHigh),
	}

	first, err := f.pipeline(t).Run(context.Background(), "2025-07-01")
	require.NoError(t, err)
	require.Equal(t, 2, first.Stored)

	second, err := f.pipeline(t).Run(context.Background(), "2025-07-01")
	require.NoError(t, err)

	assert.Equal(t, 2, second.Duplicates)
	assert.Equal(t, 0, second.Stored)
	assert.Equal(t, 2, second.HighItems)
	assert.True(t, second.Published)

	recs, err := store.New(f.cfg.Data.ItemsDir).LoadMonth("2025-07")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestRun_DedupAcrossSourcesByNormalizedURL(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.collector.byGroup[model.GroupHigh] = []model.Candidate{
		cand("https://example.go.jp/a?utm_source=rss", "記事A", model.GroupHigh),
	}
	f.collector.byGroup[model.GroupTrend] = []model.Candidate{
		cand("https://example.go.jp/a/", "記事A再掲", model.GroupTrend),
	}

	summary, err := f.pipeline(t).Run(context.Background(), "2025-07-01")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Stored)
	assert.Equal(t, 1, summary.Duplicates)
}

func TestRun_FetchFailureDegradesToTitleOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.collector.byGroup[model.GroupHigh] = []model.Candidate{
		cand("https://example.go.jp/a", "記事A", model.GroupHigh),
	}
	f.fetcher.failURLs["https://example.go.jp/a"] = true

	summary, err := f.pipeline(t).Run(context.Background(), "2025-07-01")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.FetchFailed)
	assert.Equal(t, 1, summary.Stored)

	recs, err := store.New(f.cfg.Data.ItemsDir).LoadMonth("2025-07")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Zero(t, recs[0].ContentLength)
}

func TestRun_AnalysisFailureDropsOnlyThatItem(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.collector.byGroup[model.GroupHigh] = []model.Candidate{
		cand("https://example.go.jp/a", "記事A", model.GroupHigh),
		cand("https://example.go.jp/b", "記事B", model.GroupHigh),
	}
	f.analyzer.failURLs["https://example.go.jp/a"] = true

	summary, err := f.pipeline(t).Run(context.Background(), "2025-07-01")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.AnalysisFailed)
	assert.Equal(t, 1, summary.Stored)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "https://example.go.jp/a")

	// dropped item is not in the index, so a later run can retry it
	idx, err := dedup.LoadIndex(f.cfg.Data.IndexFile)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestRun_PublishFailureStillNotifies(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.collector.byGroup[model.GroupHigh] = []model.Candidate{
		cand("https://example.go.jp/a", "記事A", model.GroupHigh),
	}
	f.publisher.err = eris.New("ghdiscuss: status 500")

	summary, err := f.pipeline(t).Run(context.Background(), "2025-07-01")
	require.NoError(t, err)

	assert.False(t, summary.Published)
	assert.Empty(t, summary.DiscussionURL)
	assert.True(t, summary.Notified)
	assert.Equal(t, 1, f.notifier.calls)
	require.NotEmpty(t, summary.Errors)
	assert.Contains(t, summary.Errors[0], "publish")

	recs, err := store.New(f.cfg.Data.ItemsDir).LoadMonth("2025-07")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRun_NotifyFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.collector.byGroup[model.GroupHigh] = []model.Candidate{
		cand("https://example.go.jp/a", "記事A", model.GroupHigh),
	}
	f.notifier.err = eris.New("slack: status 502")

	summary, err := f.pipeline(t).Run(context.Background(), "2025-07-01")
	require.NoError(t, err)

	assert.False(t, summary.Notified)
	assert.True(t, summary.Published)
}

func TestRun_GroupCapLimitsNewItems(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.cfg.Collect.MaxHighItems = 2
	var cands []model.Candidate
	for i := 0; i < 5; i++ {
		cands = append(cands, cand(fmt.Sprintf("https://example.go.jp/%d", i), fmt.Sprintf("記事%d", i), model.GroupHigh))
	}
	f.collector.byGroup[model.GroupHigh] = cands

	summary, err := f.pipeline(t).Run(context.Background(), "2025-07-01")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Stored)
	// items past the cap are not fetched at all
	assert.Equal(t, 2, f.fetcher.calls)
}

func TestRun_EmptyDaySkipsDiscussion(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	summary, err := f.pipeline(t).Run(context.Background(), "2025-07-01")
	require.NoError(t, err)

	assert.Zero(t, summary.Collected)
	assert.Zero(t, summary.Stored)
	assert.Equal(t, 0, f.publisher.calls)
	assert.False(t, summary.Published)
	assert.Empty(t, summary.DiscussionURL)
	assert.Empty(t, summary.Errors)
	assert.True(t, summary.Notified)
	assert.Empty(t, f.notifier.highlights)
}
