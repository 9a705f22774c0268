package dedup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Entry records the first successful full processing of a fingerprint.
// Created exactly once; never mutated afterward.
type Entry struct {
	FirstSeen string `json:"first_seen"`
	Source    string `json:"source"`
	Title     string `json:"title"`
}

// Index is the durable fingerprint set gating reprocessing. It is
// loaded once at run start, mutated in memory during the run, and saved
// back once at the end. Not safe for concurrent mutation; the pipeline
// completes dedup before any parallel dispatch.
type Index struct {
	path    string
	entries map[string]Entry
}

// LoadIndex reads the index file, starting empty when the file does not
// exist yet or cannot be parsed.
func LoadIndex(path string) (*Index, error) {
	idx := &Index{path: path, entries: map[string]Entry{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, eris.Wrapf(err, "dedup: read index %s", path)
	}

	if err := json.Unmarshal(data, &idx.entries); err != nil {
		zap.L().Warn("index unreadable, starting fresh",
			zap.String("path", path),
			zap.Error(err),
		)
		idx.entries = map[string]Entry{}
	}

	return idx, nil
}

// Seen reports whether the fingerprint has been fully processed before.
// Entry existence is the sole gate for "already processed".
func (i *Index) Seen(fingerprint string) bool {
	_, ok := i.entries[fingerprint]
	return ok
}

// Record marks a fingerprint as fully processed. Called only after the
// item's record has been stored, never speculatively. A second Record
// for the same fingerprint keeps the original entry.
func (i *Index) Record(fingerprint, source, title string, at time.Time) {
	if _, ok := i.entries[fingerprint]; ok {
		return
	}
	if r := []rune(title); len(r) > 100 {
		title = string(r[:100])
	}
	i.entries[fingerprint] = Entry{
		FirstSeen: at.Format(time.RFC3339),
		Source:    source,
		Title:     title,
	}
}

// Len returns the number of index entries.
func (i *Index) Len() int { return len(i.entries) }

// Save writes the index back to durable storage, once per run. The
// write goes through a temp file and rename so a crash mid-save never
// leaves a truncated index behind.
func (i *Index) Save() error {
	if err := os.MkdirAll(filepath.Dir(i.path), 0o755); err != nil {
		return eris.Wrapf(err, "dedup: create index dir")
	}

	data, err := json.MarshalIndent(i.entries, "", "  ")
	if err != nil {
		return eris.Wrap(err, "dedup: marshal index")
	}

	tmp := i.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "dedup: write index %s", tmp)
	}
	if err := os.Rename(tmp, i.path); err != nil {
		return eris.Wrapf(err, "dedup: rename index into place")
	}

	zap.L().Info("index saved", zap.String("path", i.path), zap.Int("entries", len(i.entries)))
	return nil
}
