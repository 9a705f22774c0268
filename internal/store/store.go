// Package store persists finished article records as append-only,
// month-partitioned JSONL files. Records are immutable once appended;
// the dedup index guarantees a fingerprint never reaches Append twice.
package store

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eic-hr/eic/internal/clock"
	"github.com/eic-hr/eic/internal/model"
)

// Store writes and reads monthly record files under a data directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir (e.g. data/items). The directory is
// created on first append.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the JSONL file for a month partition key (YYYY-MM).
func (s *Store) Path(month string) string {
	return filepath.Join(s.dir, month+".jsonl")
}

// Append writes one complete record as a single JSONL line and flushes
// it durably before returning. It never rewrites prior entries.
func (s *Store) Append(rec model.Record) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return eris.Wrap(err, "store: create data dir")
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "store: marshal record")
	}

	month := clock.Month(rec.ObservedAt)
	f, err := os.OpenFile(s.Path(month), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "store: open %s", s.Path(month))
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return eris.Wrap(err, "store: append record")
	}
	if err := f.Sync(); err != nil {
		return eris.Wrap(err, "store: sync")
	}

	return nil
}

// LoadMonth reads every record in a month partition. Malformed lines
// are skipped with a warning rather than failing the read.
func (s *Store) LoadMonth(month string) ([]model.Record, error) {
	f, err := os.Open(s.Path(month))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "store: open %s", s.Path(month))
	}
	defer f.Close()

	var records []model.Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec model.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			zap.L().Warn("skipping malformed record line",
				zap.String("file", s.Path(month)),
				zap.Int("line", lineNum),
				zap.Error(err),
			)
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "store: scan %s", s.Path(month))
	}

	return records, nil
}

// ItemsForDate returns the records observed on a date (YYYY-MM-DD),
// split into high-trust and trend groups. Publication reads the whole
// day back from the store so a rerun republishes everything collected
// for the date, not just this run's items.
func (s *Store) ItemsForDate(date string) (high, trend []model.Record, err error) {
	records, err := s.LoadMonth(clock.Month(date))
	if err != nil {
		return nil, nil, err
	}

	for _, rec := range records {
		if !strings.HasPrefix(rec.ObservedAt, date) {
			continue
		}
		if rec.SourceGroup == model.GroupHigh {
			high = append(high, rec)
		} else {
			trend = append(trend, rec)
		}
	}
	return high, trend, nil
}
