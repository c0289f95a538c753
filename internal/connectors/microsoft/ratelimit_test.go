package microsoft

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	tests := []struct {
		name string
		cfg  RateLimitConfig
	}{
		{name: "default", cfg: DefaultRateLimit},
		{name: "custom", cfg: RateLimitConfig{RequestsPerSecond: 5.0, BurstSize: 10}},
		{name: "zero values fall back", cfg: RateLimitConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(tt.cfg)
			require.NotNil(t, rl)
			assert.NotNil(t, rl.limiter)
			assert.Greater(t, rl.limiter.Burst(), 0)
		})
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimit)

	err := rl.Wait(context.Background())

	assert.NoError(t, err)
}

func TestRateLimiter_Wait_ContextCancelled(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimit)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := rl.Wait(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimiter_Wait_ContextCancelledDuringBackoff(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimit)
	rl.RecordRateLimitError(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimit)

	// First few requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow(), "request %d should be allowed", i)
	}
}

func TestRateLimiter_RecordRateLimitError(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimit)

	rl.RecordRateLimitError(200 * time.Millisecond)

	// Should not allow immediately
	assert.False(t, rl.Allow())

	// Wait for backoff to expire
	time.Sleep(300 * time.Millisecond)

	// Should allow after backoff
	assert.True(t, rl.Allow())
}

func TestRateLimiter_RecordRateLimitError_NoHintNoBackoff(t *testing.T) {
	for _, d := range []time.Duration{0, -5 * time.Second} {
		rl := NewRateLimiter(DefaultRateLimit)

		rl.RecordRateLimitError(d)

		rl.mu.Lock()
		retryAt := rl.retryAt
		rl.mu.Unlock()

		assert.True(t, retryAt.IsZero())
		assert.True(t, rl.Allow())
	}
}
