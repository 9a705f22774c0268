package model

import "time"

// Candidate is a raw feed entry awaiting dedup and enrichment. It exists
// only within a run; everything durable is derived from it.
type Candidate struct {
	URL       string
	Title     string
	Published *time.Time

	Group      SourceGroup
	SourceKey  string
	SourceName string
	SourceType SourceType
	Publisher  string
	Language   string
}
