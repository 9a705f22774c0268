package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_TodayInLocation(t *testing.T) {
	t.Parallel()

	jst := time.FixedZone("JST", 9*3600)
	// 23:30 UTC is already the next day in JST.
	c := NewFixed(jst, time.Date(2025, 6, 30, 23, 30, 0, 0, time.UTC))

	assert.Equal(t, "2025-07-01", c.Today())
}

func TestMonth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2025-07", Month("2025-07-01"))
	assert.Equal(t, "bad", Month("bad"))
}

func TestClock_ParseDate(t *testing.T) {
	t.Parallel()

	c := NewFixed(time.UTC, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))

	got, err := c.ParseDate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", got)

	_, err = c.ParseDate("2025-13-01")
	require.Error(t, err)

	_, err = c.ParseDate("yesterday")
	require.Error(t, err)
}

func TestNew_InvalidTimezone(t *testing.T) {
	t.Parallel()

	_, err := New("Not/AZone")
	require.Error(t, err)
}
