package mw

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiter_BlocksAfterMax(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4"), "attempt %d should pass", i+1)
	}
	assert.False(t, l.Allow("1.2.3.4"))

	// Other clients are unaffected.
	assert.True(t, l.Allow("5.6.7.8"))
}

func TestLoginLimiter_WindowSlides(t *testing.T) {
	l := NewLoginLimiter(2, 50*time.Millisecond)

	assert.True(t, l.Allow("ip"))
	assert.True(t, l.Allow("ip"))
	assert.False(t, l.Allow("ip"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, l.Allow("ip"), "attempts outside the window no longer count")
}
