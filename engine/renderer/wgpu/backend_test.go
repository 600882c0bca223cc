package wgpu

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/midnight/engine/renderer"
	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

func TestNewBackend(t *testing.T) {
	b, err := NewBackend("noop")
	require.NoError(t, err)
	assert.Equal(t, "noop", b.Name())

	_, err = NewBackend("glide")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestFramePipelineOnNoopBackend(t *testing.T) {
	b, err := NewBackend("noop")
	require.NoError(t, err)

	p, err := renderer.NewFramePipeline(b, gpu.WindowHandle{Width: 320, Height: 240}, renderer.PipelineConfig{
		ClearColor:   gputypes.ColorBlack,
		FenceTimeout: time.Second,
	})
	require.NoError(t, err)

	for i := 0; i < 2*renderer.FramesInFlight+1; i++ {
		require.NoError(t, p.RenderFrame())
	}
	require.NoError(t, p.Shutdown())
	assert.Equal(t, renderer.PipelineStateDestroyed, p.State())
}

func TestFenceTarget(t *testing.T) {
	f := &Fence{}
	f.mark(1, 4)
	f.mark(2, 7)
	f.mark(3, 7)

	sub, ok := f.target(2, 0)
	require.True(t, ok)
	assert.Equal(t, uint64(7), sub)

	// Completed marks before the requested value are dropped.
	sub, ok = f.target(3, 7)
	require.True(t, ok)
	assert.Equal(t, uint64(7), sub)
	assert.Len(t, f.marks, 1)

	_, ok = f.target(4, 7)
	assert.False(t, ok)
}

// countingQueue completes submissions only when told to.
type countingQueue struct {
	hal.Queue
	submitted uint64
	completed atomic.Uint64
}

func (q *countingQueue) Submit([]hal.CommandBuffer) (uint64, error) {
	q.submitted++
	return q.submitted, nil
}

func (q *countingQueue) PollCompleted() uint64 {
	return q.completed.Load()
}

func TestDeviceWaitPollsQueue(t *testing.T) {
	q := &countingQueue{}
	tl := &timeline{queue: q}
	d := &Device{timeline: tl}
	f := &Fence{}

	idx, err := tl.submit(nil)
	require.NoError(t, err)
	f.mark(1, idx)
	ok, err := d.Wait(f, 1, 0)
	require.NoError(t, err)
	assert.True(t, ok, "empty batch with nothing queued is complete")

	f.mark(2, 5)
	ok, err = d.Wait(f, 2, 5*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	q.completed.Store(5)
	ok, err = d.Wait(f, 2, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = d.Wait(f, 9, time.Millisecond)
	assert.ErrorIs(t, err, ErrFenceValueNotSubmitted)
}

// scriptedSurface reports not ready for the first notReady acquires.
type scriptedSurface struct {
	hal.Surface
	notReady int
	acquires int
	err      error
}

func (s *scriptedSurface) AcquireTexture(hal.Fence) (*hal.AcquiredSurfaceTexture, error) {
	s.acquires++
	if s.err != nil {
		return nil, s.err
	}
	if s.acquires <= s.notReady {
		return nil, hal.ErrNotReady
	}
	return &hal.AcquiredSurfaceTexture{Suboptimal: true}, nil
}

func TestAcquireTextureRetriesUntilReady(t *testing.T) {
	raw := &scriptedSurface{notReady: 3}
	s := &Surface{raw: raw}

	acquired, err := s.AcquireTexture(0)
	require.NoError(t, err)
	assert.True(t, acquired.Suboptimal)
	assert.Equal(t, 4, raw.acquires)
}

func TestAcquireTextureTimeout(t *testing.T) {
	raw := &scriptedSurface{notReady: 1 << 30}
	s := &Surface{raw: raw}

	_, err := s.AcquireTexture(5 * time.Millisecond)
	assert.ErrorIs(t, err, ErrAcquireTimeout)
	assert.Greater(t, raw.acquires, 1)
}

func TestAcquireTextureSurfaceLost(t *testing.T) {
	raw := &scriptedSurface{err: hal.ErrSurfaceLost}
	s := &Surface{raw: raw}

	_, err := s.AcquireTexture(0)
	assert.ErrorIs(t, err, hal.ErrSurfaceLost)
	assert.Equal(t, 1, raw.acquires)
}

func TestFenceHoldsNoHALResource(t *testing.T) {
	d := &Device{timeline: &timeline{queue: &countingQueue{}}}
	fence, err := d.CreateFence()
	require.NoError(t, err)

	f := fence.(*Fence)
	f.mark(1, 1)
	d.DestroyFence(fence)
	assert.Empty(t, f.marks)
}
