package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eic-hr/eic/internal/model"
)

func rssFeed(items string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test Feed</title>%s</channel></rss>`, items)
}

func rssItem(title, link, pubDate string) string {
	s := fmt.Sprintf("<item><title>%s</title><link>%s</link>", title, link)
	if pubDate != "" {
		s += fmt.Sprintf("<pubDate>%s</pubDate>", pubDate)
	}
	return s + "</item>"
}

func TestCollect_ParsesEntries(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFeed(
			rssItem("First", "https://example.com/first", "Sat, 29 Aug 2026 10:00:00 +0900")+
				rssItem("Second", "https://example.com/second", "Sat, 29 Aug 2026 12:00:00 +0900"),
		))
	}))
	defer srv.Close()

	src := model.Source{Key: "t", Name: "Test", URL: srv.URL, SourceType: model.TypeNews, Language: "ja"}
	cands := NewCollector(30, 5*time.Second, 2).Collect(context.Background(), []model.Source{src}, model.GroupHigh)

	require.Len(t, cands, 2)
	// Sorted newest-first.
	assert.Equal(t, "Second", cands[0].Title)
	assert.Equal(t, "First", cands[1].Title)
	assert.Equal(t, model.GroupHigh, cands[0].Group)
	assert.Equal(t, "t", cands[0].SourceKey)
	assert.NotNil(t, cands[0].Published)
}

func TestCollect_CapsEntriesPerSource(t *testing.T) {
	t.Parallel()

	var items string
	for i := 0; i < 10; i++ {
		items += rssItem(fmt.Sprintf("Item %d", i), fmt.Sprintf("https://example.com/%d", i), "")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed(items))
	}))
	defer srv.Close()

	src := model.Source{Key: "t", Name: "Test", URL: srv.URL}
	cands := NewCollector(3, 5*time.Second, 1).Collect(context.Background(), []model.Source{src}, model.GroupTrend)

	assert.Len(t, cands, 3)
}

func TestCollect_DeadSourceIsSkipped(t *testing.T) {
	t.Parallel()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed(rssItem("Only", "https://example.com/only", "")))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	sources := []model.Source{
		{Key: "bad", Name: "Bad", URL: bad.URL},
		{Key: "good", Name: "Good", URL: good.URL},
	}
	cands := NewCollector(30, 5*time.Second, 2).Collect(context.Background(), sources, model.GroupHigh)

	require.Len(t, cands, 1)
	assert.Equal(t, "Only", cands[0].Title)
}

func TestCollect_SkipsEntriesWithoutLink(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed("<item><title>No Link</title></item>"+
			rssItem("Has Link", "https://example.com/x", "")))
	}))
	defer srv.Close()

	src := model.Source{Key: "t", Name: "Test", URL: srv.URL}
	cands := NewCollector(30, 5*time.Second, 1).Collect(context.Background(), []model.Source{src}, model.GroupHigh)

	require.Len(t, cands, 1)
	assert.Equal(t, "Has Link", cands[0].Title)
}

func TestLoadSources(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sources_high.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - key: mhlw
    name: 厚生労働省
    url: https://www.mhlw.go.jp/rss/press.rdf
    source_type: ministry
    publisher: MHLW
    language: ja
  - key: misc
    name: Misc
    url: https://example.com/feed.xml
`), 0o644))

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, model.TypeMinistry, sources[0].SourceType)
	// Defaults applied.
	assert.Equal(t, model.TypeOther, sources[1].SourceType)
	assert.Equal(t, "unknown", sources[1].Language)
}

func TestLoadSources_MissingURL(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  - key: x\n    name: X\n"), 0o644))

	_, err := LoadSources(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no url")
}
