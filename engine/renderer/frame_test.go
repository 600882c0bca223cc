package renderer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
	"github.com/spaghettifunk/midnight/engine/renderer/gpu/gputest"
)

func openTestDevice(t *testing.T, backend *gputest.Backend) gpu.OpenDevice {
	t.Helper()
	instance, err := backend.CreateInstance(&gpu.InstanceDescriptor{})
	require.NoError(t, err)
	adapters := instance.EnumerateAdapters(nil)
	require.NotEmpty(t, adapters)
	open, err := adapters[0].Adapter.Open(0, adapters[0].Limits)
	require.NoError(t, err)
	return open
}

func TestFrameSlotLifecycle(t *testing.T) {
	backend := gputest.NewBackend(gputest.WithManualFences())
	open := openTestDevice(t, backend)

	slot, err := newFrameSlot(open.Device, 0)
	require.NoError(t, err)
	assert.Equal(t, FRAME_SLOT_STATE_READY, slot.state)

	require.NoError(t, slot.beginRecording())
	assert.Equal(t, FRAME_SLOT_STATE_RECORDING, slot.state)
	assert.Error(t, slot.beginRecording())

	view, err := open.Device.CreateTextureView(&gputest.Texture{ID: 1}, &gpu.TextureViewDescriptor{})
	require.NoError(t, err)
	buffer, err := slot.encoder.EndEncoding()
	require.NoError(t, err)
	require.NoError(t, slot.submit(open.Queue, []gpu.CommandBuffer{buffer}))
	slot.retire(view, buffer)
	assert.Equal(t, FRAME_SLOT_STATE_SUBMITTED, slot.state)
	assert.Equal(t, gpu.FenceValue(1), slot.expectedValue)
	assert.Equal(t, uint32(1), slot.recordedFrameCount)

	_, err = slot.reclaim(open.Device, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrFenceTimeout)
	assert.Equal(t, FRAME_SLOT_STATE_SUBMITTED, slot.state)
	assert.Len(t, slot.retiredCommandBuffers, 1)

	backend.Fences()[0].Signal(1)
	_, err = slot.reclaim(open.Device, 0)
	require.NoError(t, err)
	assert.Equal(t, FRAME_SLOT_STATE_READY, slot.state)
	assert.Empty(t, slot.retiredCommandBuffers)
	assert.Empty(t, slot.retiredViews)
	assert.Zero(t, slot.recordedFrameCount)
	assert.Equal(t, uint64(1), slot.reclaimCount)
}

func TestFrameSlotDestroyWaitsForSubmittedWork(t *testing.T) {
	backend := gputest.NewBackend(gputest.WithManualFences())
	open := openTestDevice(t, backend)

	slot, err := newFrameSlot(open.Device, 0)
	require.NoError(t, err)
	require.NoError(t, slot.beginRecording())
	view, err := open.Device.CreateTextureView(&gputest.Texture{ID: 1}, &gpu.TextureViewDescriptor{})
	require.NoError(t, err)
	buffer, err := slot.encoder.EndEncoding()
	require.NoError(t, err)
	require.NoError(t, slot.submit(open.Queue, []gpu.CommandBuffer{buffer}))
	slot.retire(view, buffer)

	err = slot.reclaimAndDestroy(open.Device, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrFenceTimeout)
	assert.Equal(t, FRAME_SLOT_STATE_SUBMITTED, slot.state)
	assert.NotContains(t, backend.Calls(), "device.destroy_fence")

	backend.Fences()[0].Signal(1)
	require.NoError(t, slot.reclaimAndDestroy(open.Device, 0))
	assert.Equal(t, FRAME_SLOT_STATE_DESTROYED, slot.state)
	assert.Empty(t, backend.Violations())

	// Destroying twice is a no-op.
	require.NoError(t, slot.reclaimAndDestroy(open.Device, 0))
}

func TestFrameSlotAbortRecording(t *testing.T) {
	backend := gputest.NewBackend()
	open := openTestDevice(t, backend)

	slot, err := newFrameSlot(open.Device, 2)
	require.NoError(t, err)
	require.NoError(t, slot.beginRecording())

	slot.abortRecording()

	assert.Equal(t, FRAME_SLOT_STATE_READY, slot.state)
	assert.Equal(t, "frame-slot-2", slot.label)
	assert.Contains(t, backend.Calls(), "encoder.discard")
}
