package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowRefillsOverTime(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("cbr"))
	assert.True(t, l.Allow("cbr"))
	assert.False(t, l.Allow("cbr"))
	assert.True(t, l.Allow("other"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("cbr"))
	assert.False(t, l.Allow("cbr"))
}

func TestIdleBucketsAreDropped(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		assert.True(t, l.Allow(ip))
	}
	require.Len(t, l.m, 3)

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.Len(t, l.m, 3)

	// 10.0.0.2 and .3 have been idle for capacity/rate and are full again.
	now = now.Add(1500 * time.Millisecond)
	assert.True(t, l.Allow("10.0.0.4"))
	assert.Len(t, l.m, 2)
	assert.Contains(t, l.m, "10.0.0.1")
	assert.Contains(t, l.m, "10.0.0.4")

	// A dropped key starts again from a full bucket.
	assert.True(t, l.Allow("10.0.0.2"))
	assert.True(t, l.Allow("10.0.0.2"))
	assert.False(t, l.Allow("10.0.0.2"))
}

func TestWaitHonoursContext(t *testing.T) {
	l := New(1, 0.001)
	require.NoError(t, l.Wait(context.Background(), "cbr"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx, "cbr")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitBlocksUntilRefill(t *testing.T) {
	l := New(1, 50)
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "cbr"))

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "cbr"))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
