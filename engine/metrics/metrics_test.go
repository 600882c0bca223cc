package metrics

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCountsFrames(t *testing.T) {
	c := NewCollector("run-1")

	for i := 0; i < 30; i++ {
		c.FrameRendered(i%3, 50*time.Millisecond)
	}
	c.SlotReclaimed(0, time.Millisecond)
	c.SlotReclaimed(0, time.Millisecond)
	c.SlotReclaimed(2, time.Millisecond)
	c.AcquireFailed()
	c.SimTick()
	c.SimTick()

	assert.Equal(t, float64(30), testutil.ToFloat64(c.framesRendered))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.slotReclaims.WithLabelValues("0")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.slotReclaims.WithLabelValues("2")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.acquireFailures))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.simTicks))

	assert.Equal(t, float64(20), testutil.ToFloat64(c.framesPerSecond))
	assert.InDelta(t, 50, testutil.ToFloat64(c.frameTimeAvg), 1e-9)
	assert.Equal(t, float64(20), c.FPS())
	assert.Equal(t, 1, testutil.CollectAndCount(c.slotFenceWait))
}

func TestCollectorRunLabel(t *testing.T) {
	c := NewCollector("run-42")
	c.SimTick()

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			found := false
			for _, l := range m.GetLabel() {
				if l.GetName() == "run" {
					assert.Equal(t, "run-42", l.GetValue())
					found = true
				}
			}
			assert.True(t, found, "metric %s has no run label", mf.GetName())
		}
	}
}

func TestServeExposesRegistry(t *testing.T) {
	c := NewCollector("run-7")
	c.FrameRendered(0, 16*time.Millisecond)

	s, err := c.Serve("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `midnight_frame_rendered_total{run="run-7"} 1`))
}
