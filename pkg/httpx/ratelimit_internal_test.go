package httpx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterRetryDelay(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1})
	now := time.Now()

	ok, _ := rl.allow("k", now)
	require.True(t, ok)

	ok, delay := rl.allow("k", now)
	require.False(t, ok)
	require.InDelta(t, time.Minute.Seconds(), delay.Seconds(), 1)

	// A rejected request must not push the next token further out.
	ok, delay = rl.allow("k", now.Add(30*time.Second))
	require.False(t, ok)
	require.InDelta(t, (30 * time.Second).Seconds(), delay.Seconds(), 1)

	ok, _ = rl.allow("k", now.Add(time.Minute))
	require.True(t, ok)
}

func TestRateLimiterSweepsIdleVisitors(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10})
	now := time.Now()

	rl.allow("a", now)
	rl.allow("b", now)
	require.Len(t, rl.visitors, 2)

	later := now.Add(rl.idleTTL)
	rl.allow("c", later)
	require.Len(t, rl.visitors, 1)
	require.Contains(t, rl.visitors, "c")
}
