// internal/scraper/ratelimiter_test.go
package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostRateLimiterSeparatesHosts(t *testing.T) {
	rl := NewHostRateLimiter(1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, rl.Wait(ctx, "www.zara.com"))
	// a different host has its own bucket
	require.NoError(t, rl.Wait(ctx, "www.mango.com"))

	// the first host's burst is spent and the next token is a second away
	err := rl.Wait(ctx, "www.zara.com")
	assert.Error(t, err)
}

func TestHostRateLimiterSlowsDownOnErrors(t *testing.T) {
	rl := NewHostRateLimiter(10, 4)
	for i := 0; i < 5; i++ {
		rl.ReportError("shop.example")
	}

	stats, ok := rl.Stats("shop.example")
	require.True(t, ok)
	assert.Less(t, stats.Rate, 10.0)
	assert.Equal(t, 5, stats.ConsecutiveErrs)
	assert.GreaterOrEqual(t, stats.Burst, 1)
	assert.Less(t, stats.Burst, 4)

	_, ok = rl.Stats("other.example")
	assert.False(t, ok)
}

func TestHostRateLimiterRecovers(t *testing.T) {
	rl := NewHostRateLimiter(10, 4)
	for i := 0; i < 5; i++ {
		rl.ReportError("shop.example")
	}
	slowed, _ := rl.Stats("shop.example")

	for i := 0; i < 200; i++ {
		rl.ReportSuccess("shop.example")
	}
	recovered, _ := rl.Stats("shop.example")

	assert.Greater(t, recovered.Rate, slowed.Rate)
	assert.Equal(t, 10.0, recovered.Rate)
	assert.Equal(t, 4, recovered.Burst)
	assert.Equal(t, 0, recovered.ConsecutiveErrs)
}

func TestHostRateLimiterIgnoresOccasionalErrors(t *testing.T) {
	rl := NewHostRateLimiter(10, 4)
	for i := 0; i < 20; i++ {
		rl.ReportSuccess("shop.example")
	}
	rl.ReportError("shop.example")

	stats, _ := rl.Stats("shop.example")
	assert.Equal(t, 10.0, stats.Rate)
}
