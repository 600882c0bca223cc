package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameStats(t *testing.T) {
	stats := NewFrameStats()
	for i := 0; i < int(AVG_COUNT); i++ {
		stats.Update(50 * time.Millisecond)
	}

	assert.InDelta(t, 50.0, stats.FrameTime(), 0.001)
	// 30 frames of 50ms cross the one second mark on the 20th frame.
	assert.InDelta(t, 20.0, stats.FPS(), 0.001)
}
