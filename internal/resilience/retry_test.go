package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoVal_SucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := DoVal(context.Background(), "op", Linear(3, time.Millisecond), func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestDoVal_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := DoVal(context.Background(), "op", Linear(3, time.Millisecond), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", Transient(errors.New("503"), 503)
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDoVal_StopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := DoVal(context.Background(), "op", Linear(3, time.Millisecond), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("bad request")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := DoVal(context.Background(), "op", Exponential(3, time.Millisecond), func(ctx context.Context) (int, error) {
		calls++
		return 0, Transient(errors.New("timeout"), 0)
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoVal_RetryAllPredicate(t *testing.T) {
	t.Parallel()

	p := Linear(2, time.Millisecond)
	p.Retryable = RetryAll

	calls := 0
	_, err := DoVal(context.Background(), "op", p, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("schema violation")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_ContextCancelStopsRetries(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, "op", Linear(5, time.Hour), func(ctx context.Context) error {
		calls++
		cancel()
		return Transient(errors.New("reset"), 0)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestJittered(t *testing.T) {
	t.Parallel()

	base := 2 * time.Second
	assert.Equal(t, base, jittered(base, 0))

	for i := 0; i < 100; i++ {
		d := jittered(base, 0.25)
		assert.GreaterOrEqual(t, d, 1500*time.Millisecond)
		assert.LessOrEqual(t, d, 2500*time.Millisecond)
	}

	// Full jitter never goes negative.
	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, jittered(time.Nanosecond, 1.0), time.Duration(0))
	}
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("validation failed")))
	assert.True(t, IsTransient(Transient(errors.New("429"), 429)))
	assert.True(t, IsTransient(errors.New("read tcp: i/o timeout")))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	t.Parallel()

	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), code)
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404} {
		assert.False(t, IsTransientHTTPStatus(code), code)
	}
}
