package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"email-dispatch/internal/common/logger"
)

func fastOptions() Options {
	return Options{
		MaxAttempts:   3,
		InitialDelay:  5 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), logger.NewNoOpLogger(), fastOptions(), func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestDo_FailsTwiceThenSucceeds(t *testing.T) {
	calls := 0
	var gaps []time.Duration
	last := time.Now()

	result, err := Do(context.Background(), logger.NewNoOpLogger(), fastOptions(), func(context.Context) (string, error) {
		now := time.Now()
		gaps = append(gaps, now.Sub(last))
		last = now
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "delivered", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "delivered", result)
	assert.Equal(t, 3, calls)

	// Second delay must be initialDelay * backoffFactor.
	require.Len(t, gaps, 3)
	assert.GreaterOrEqual(t, gaps[1], 5*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[2], 10*time.Millisecond)
}

func TestDo_ExhaustsAttemptsSurfacingLastError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), logger.NewNoOpLogger(), fastOptions(), func(context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("failure %d", calls)
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	// The most recent failure is the one surfaced.
	assert.EqualError(t, err, "failure 3")
}

func TestDo_NoSleepAfterLastAttempt(t *testing.T) {
	opts := Options{MaxAttempts: 2, InitialDelay: 30 * time.Millisecond, BackoffFactor: 2}

	start := time.Now()
	_, err := Do(context.Background(), logger.NewNoOpLogger(), opts, func(context.Context) (int, error) {
		return 0, errors.New("always fails")
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	// One inter-attempt sleep, not two.
	assert.Less(t, elapsed, 60*time.Millisecond)
}

func TestDo_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	opts := Options{MaxAttempts: 3, InitialDelay: time.Minute, BackoffFactor: 2}
	calls := 0

	_, err := Do(ctx, logger.NewNoOpLogger(), opts, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("transient")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}

func TestDo_NormalizesDegenerateOptions(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), nil, Options{MaxAttempts: 0, BackoffFactor: 0}, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("nope")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
