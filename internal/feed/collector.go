package feed

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eic-hr/eic/internal/model"
)

const userAgent = "Mozilla/5.0 (compatible; EIC-Bot/1.0; +https://github.com/eic-hr/eic)"

// Collector fetches feeds and turns their entries into candidates.
type Collector struct {
	maxPerSource int
	timeout      time.Duration
	concurrency  int
}

// NewCollector returns a Collector with per-source entry cap, per-feed
// timeout, and bounded fan-out.
func NewCollector(maxPerSource int, timeout time.Duration, concurrency int) *Collector {
	if maxPerSource <= 0 {
		maxPerSource = 30
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Collector{maxPerSource: maxPerSource, timeout: timeout, concurrency: concurrency}
}

// Collect gathers candidates from every source in the group. A failing
// feed is logged and skipped; one dead source never aborts collection.
// The result is sorted newest-first by feed publication time, entries
// without one last.
func (c *Collector) Collect(ctx context.Context, sources []model.Source, group model.SourceGroup) []model.Candidate {
	var (
		mu  sync.Mutex
		all []model.Candidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, src := range sources {
		src := src
		g.Go(func() error {
			cands, err := c.collectOne(gctx, src, group)
			if err != nil {
				zap.L().Warn("feed collection failed",
					zap.String("source", src.Key),
					zap.String("url", src.URL),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			all = append(all, cands...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(all, func(i, j int) bool {
		pi, pj := all[i].Published, all[j].Published
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return pi.After(*pj)
		}
	})

	zap.L().Info("candidates collected",
		zap.String("group", string(group)),
		zap.Int("sources", len(sources)),
		zap.Int("candidates", len(all)),
	)
	return all
}

func (c *Collector) collectOne(ctx context.Context, src model.Source, group model.SourceGroup) ([]model.Candidate, error) {
	fctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.UserAgent = userAgent

	parsed, err := parser.ParseURLWithContext(src.URL, fctx)
	if err != nil {
		return nil, err
	}

	items := parsed.Items
	if len(items) > c.maxPerSource {
		items = items[:c.maxPerSource]
	}

	var cands []model.Candidate
	for _, item := range items {
		if item.Link == "" {
			continue
		}
		title := item.Title
		if title == "" {
			title = "(No Title)"
		}

		var published *time.Time
		if item.PublishedParsed != nil {
			published = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = item.UpdatedParsed
		}

		cands = append(cands, model.Candidate{
			URL:        item.Link,
			Title:      title,
			Published:  published,
			Group:      group,
			SourceKey:  src.Key,
			SourceName: src.Name,
			SourceType: src.SourceType,
			Publisher:  src.Publisher,
			Language:   src.Language,
		})
	}

	zap.L().Debug("source collected",
		zap.String("source", src.Key),
		zap.Int("candidates", len(cands)),
	)
	return cands, nil
}
