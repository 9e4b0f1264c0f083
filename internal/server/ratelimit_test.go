package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsBurstThenBlocks(t *testing.T) {
	rl := NewRateLimiter(1, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d within burst should pass", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_TracksClientsSeparately(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}
