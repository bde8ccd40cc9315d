package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled: true,
		Endpoints: []EndpointConfig{
			{Path: "/jobs/", Method: "POST", Limit: 2, Window: time.Hour, Burst: 2},
		},
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()

	for i := 0; i < 2; i++ {
		allowed, _ := limiter.Allow("client-a", "/jobs/abc/topics", "POST")
		require.True(t, allowed, "request %d should pass", i)
	}

	allowed, info := limiter.Allow("client-a", "/jobs/abc/topics", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 2, info.Limit)
	assert.Greater(t, info.RetryAfter, time.Duration(0))

	// A different client has its own bucket.
	allowed, _ = limiter.Allow("client-b", "/jobs/abc/topics", "POST")
	assert.True(t, allowed)
}

func TestLimiterDisabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := limiter.Allow("client", "/jobs", "POST")
		require.True(t, allowed)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		name      string
		path      string
		method    string
		wantLimit int
		wantNil   bool
	}{
		{name: "health is unlimited", path: "/health", method: "GET", wantLimit: 0},
		{name: "banner is unlimited", path: "/", method: "GET", wantLimit: 0},
		{name: "job creation", path: "/jobs", method: "POST", wantLimit: 30},
		{name: "topic generation by prefix", path: "/jobs/abc/topics", method: "POST", wantLimit: 30},
		{name: "content override", path: "/jobs/abc/content", method: "PUT", wantLimit: 100},
		{name: "token minting", path: "/auth/token", method: "POST", wantLimit: 10},
		{name: "reads fall through", path: "/jobs", method: "GET", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}

func TestBucketRefills(t *testing.T) {
	b := newTokenBucket(1, 100) // 100 tokens/sec
	require.True(t, b.allow())
	require.False(t, b.allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.allow(), "bucket should refill quickly")
}
