package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_BurstThenThrottle(t *testing.T) {
	lim := New(Config{RequestsPerSecond: 1, Burst: 3})

	for i := 0; i < 3; i++ {
		assert.True(t, lim.Allow(), "burst request %d", i)
	}
	assert.False(t, lim.Allow(), "bucket should be empty after burst")
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	lim := New(Config{RequestsPerSecond: 1, Burst: 1})
	require.True(t, lim.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := lim.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_SeparateLimitersPerKey(t *testing.T) {
	m := NewManager(Config{RequestsPerSecond: 1, Burst: 1})

	assert.True(t, m.GetLimiter("fred").Allow())
	// Exhausting one provider's bucket leaves the other untouched.
	assert.False(t, m.GetLimiter("fred").Allow())
	assert.True(t, m.GetLimiter("nasdaq").Allow())

	// Same key returns the same limiter.
	assert.Same(t, m.GetLimiter("fred"), m.GetLimiter("fred"))
}
