// Package notify selects the day's highlights and sends the Slack
// notification.
package notify

import (
	"sort"

	"github.com/eic-hr/eic/internal/model"
)

// HighlightCount is how many records the notification features.
const HighlightCount = 5

// SelectHighlights picks the top records deterministically: high-trust
// group before trend, then reliability score descending, then
// fingerprint ascending as the final tie-break. Identical input sets
// produce identical output regardless of input order or rerun.
func SelectHighlights(high, trend []model.Record, max int) []model.Record {
	if max <= 0 {
		max = HighlightCount
	}

	pool := make([]model.Record, 0, len(high)+len(trend))
	pool = append(pool, high...)
	pool = append(pool, trend...)

	sort.Slice(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.SourceGroup != b.SourceGroup {
			return a.SourceGroup == model.GroupHigh
		}
		if a.ReliabilityScore != b.ReliabilityScore {
			return a.ReliabilityScore > b.ReliabilityScore
		}
		return a.ItemID < b.ItemID
	})

	if len(pool) > max {
		pool = pool[:max]
	}
	return pool
}
