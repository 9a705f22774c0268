package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eic-hr/eic/internal/analysis"
	"github.com/eic-hr/eic/internal/clock"
	"github.com/eic-hr/eic/internal/content"
	"github.com/eic-hr/eic/internal/dedup"
	"github.com/eic-hr/eic/internal/discussion"
	"github.com/eic-hr/eic/internal/feed"
	"github.com/eic-hr/eic/internal/notify"
	"github.com/eic-hr/eic/internal/pipeline"
	"github.com/eic-hr/eic/internal/store"
	anthropicpkg "github.com/eic-hr/eic/pkg/anthropic"
	"github.com/eic-hr/eic/pkg/ghdiscuss"
	"github.com/eic-hr/eic/pkg/slack"
)

var runDate string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one daily collection run",
	Long:  "Collects feeds, dedups, fetches and analyzes new items, appends them to the monthly store, and reconciles the day's discussion thread and Slack summary. Safe to rerun for the same date.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		clk, err := clock.New(cfg.Timezone)
		if err != nil {
			return err
		}

		date := clk.Today()
		if runDate != "" {
			date, err = clk.ParseDate(runDate)
			if err != nil {
				return err
			}
		}

		highSources, err := feed.LoadSources(cfg.Sources.HighFile)
		if err != nil {
			return eris.Wrap(err, "load high sources")
		}
		trendSources, err := feed.LoadSources(cfg.Sources.TrendFile)
		if err != nil {
			return eris.Wrap(err, "load trend sources")
		}
		themes, err := analysis.LoadThemes(cfg.Sources.ThemesFile)
		if err != nil {
			return eris.Wrap(err, "load themes")
		}
		categoryID, err := discussion.LoadCategoryID(cfg.GitHub.CategoryFile)
		if err != nil {
			return eris.Wrap(err, "load discussion category")
		}

		index, err := dedup.LoadIndex(cfg.Data.IndexFile)
		if err != nil {
			return eris.Wrap(err, "load dedup index")
		}

		collector := feed.NewCollector(
			cfg.Collect.MaxPerSource,
			time.Duration(cfg.Collect.FeedTimeoutSec)*time.Second,
			cfg.Collect.Concurrency,
		)
		fetcher := content.NewFetcher(
			time.Duration(cfg.Content.TimeoutSecs)*time.Second,
			cfg.Content.MinChars,
			cfg.Content.MaxChars,
			cfg.Content.RequestsPerSec,
		)
		analyzer := analysis.NewAnalyzer(
			anthropicpkg.NewClient(cfg.Anthropic.Key),
			themes,
			cfg.Anthropic.Model,
			int64(cfg.Anthropic.MaxTokens),
		)
		publisher := discussion.NewPublisher(
			ghdiscuss.NewClient(cfg.GitHub.Token),
			cfg.GitHub.Owner, cfg.GitHub.Repo, categoryID,
		)
		notifier := notify.New(slack.NewClient(cfg.Slack.WebhookURL), cfg.RepoURL())

		p := pipeline.New(cfg, clk, index, store.New(cfg.Data.ItemsDir),
			collector, fetcher, analyzer, publisher, notifier,
			highSources, trendSources)

		summary, err := p.Run(ctx, date)
		if err != nil {
			return eris.Wrap(err, "run")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return eris.Wrap(err, "encode summary")
		}

		// Item and sink failures are reported in the summary, not the
		// exit code; only setup failures abort the run.
		if len(summary.Errors) > 0 {
			zap.L().Warn("run completed with errors", zap.Int("count", len(summary.Errors)))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runDate, "date", "", "run date override (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(runCmd)
}
