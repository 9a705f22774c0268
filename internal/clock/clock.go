// Package clock provides fixed-timezone date helpers for the daily run.
// All dates the pipeline reasons about (thread titles, store partitions,
// run dates) are expressed in one configured timezone.
package clock

import (
	"time"

	"github.com/rotisserie/eris"
)

// Clock resolves run dates and partition keys in a fixed location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New loads the named timezone (e.g. "Asia/Tokyo").
func New(tz string) (*Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, eris.Wrapf(err, "clock: load timezone %s", tz)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewFixed returns a Clock whose Now is pinned, for tests.
func NewFixed(loc *time.Location, at time.Time) *Clock {
	return &Clock{loc: loc, now: func() time.Time { return at }}
}

// Now returns the current time in the configured location.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current date as YYYY-MM-DD.
func (c *Clock) Today() string {
	return c.Now().Format("2006-01-02")
}

// Month returns the store partition key (YYYY-MM) for a date string.
// A date always carries its month in the first seven bytes.
func Month(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// ParseDate validates an explicit YYYY-MM-DD override in the configured
// location.
func (c *Clock) ParseDate(s string) (string, error) {
	t, err := time.ParseInLocation("2006-01-02", s, c.loc)
	if err != nil {
		return "", eris.Wrapf(err, "clock: parse date %q", s)
	}
	return t.Format("2006-01-02"), nil
}
