// Package discussion publishes the daily digest to a GitHub
// Discussions board idempotently. Thread and comment identity are
// derived from re-queryable state (exact title match, embedded marker
// token), never from locally cached IDs, so reconciliation survives
// process restarts.
package discussion

import "fmt"

// Category names a comment group within the daily thread.
type Category string

const (
	CategoryHigh  Category = "HIGH"
	CategoryTrend Category = "TREND"
)

// ThreadTitle returns the thread title for a date. Byte-for-byte stable
// across runs and versions: changing this format orphans every
// previously created thread.
func ThreadTitle(date string) string {
	return fmt.Sprintf("[EIC][Daily] %s (JST)", date)
}

// CommentMarker returns the machine-searchable token identifying the
// (category, date) comment. Byte-for-byte stable, same as ThreadTitle.
func CommentMarker(cat Category, date string) string {
	return fmt.Sprintf("<!-- EIC:LIST:%s:%s -->", cat, date)
}
