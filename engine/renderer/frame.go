package renderer

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/midnight/engine/core"
	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

type FrameSlotState int

const (
	// Slot holds no GPU work and can start recording.
	FRAME_SLOT_STATE_READY FrameSlotState = iota
	// Slot encoder is recording commands for the current frame.
	FRAME_SLOT_STATE_RECORDING
	// Slot work was submitted; its resources belong to the GPU until the
	// fence reaches expectedValue.
	FRAME_SLOT_STATE_SUBMITTED
	// Fence reached; retired resources are being released.
	FRAME_SLOT_STATE_RECLAIMABLE
	// Encoder and fence have been released.
	FRAME_SLOT_STATE_DESTROYED
)

func (s FrameSlotState) String() string {
	switch s {
	case FRAME_SLOT_STATE_READY:
		return "ready"
	case FRAME_SLOT_STATE_RECORDING:
		return "recording"
	case FRAME_SLOT_STATE_SUBMITTED:
		return "submitted"
	case FRAME_SLOT_STATE_RECLAIMABLE:
		return "reclaimable"
	case FRAME_SLOT_STATE_DESTROYED:
		return "destroyed"
	default:
		return fmt.Sprintf("FrameSlotState(%d)", int(s))
	}
}

// frameSlot is one entry of the frames-in-flight ring.
type frameSlot struct {
	index   int
	label   string
	encoder gpu.CommandEncoder
	fence   gpu.Fence
	// Value the fence reports once the last submission on this slot retired.
	expectedValue gpu.FenceValue

	retiredViews          []gpu.TextureView
	retiredCommandBuffers []gpu.CommandBuffer
	recordedFrameCount    uint32
	reclaimCount          uint64

	state FrameSlotState
}

func newFrameSlot(device gpu.Device, index int) (*frameSlot, error) {
	label := fmt.Sprintf("frame-slot-%d", index)
	encoder, err := device.CreateCommandEncoder(&gpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder for %s: %w", label, err)
	}
	fence, err := device.CreateFence()
	if err != nil {
		device.DestroyCommandEncoder(encoder)
		return nil, fmt.Errorf("failed to create fence for %s: %w", label, err)
	}
	return &frameSlot{
		index:   index,
		label:   label,
		encoder: encoder,
		fence:   fence,
		state:   FRAME_SLOT_STATE_READY,
	}, nil
}

// beginRecording moves a Ready slot into Recording.
func (s *frameSlot) beginRecording() error {
	if s.state != FRAME_SLOT_STATE_READY {
		return fmt.Errorf("%s cannot record in state %s", s.label, s.state)
	}
	if err := s.encoder.BeginEncoding(s.label); err != nil {
		return err
	}
	s.state = FRAME_SLOT_STATE_RECORDING
	return nil
}

// abortRecording drops a recording that will not be submitted.
func (s *frameSlot) abortRecording() {
	if s.state != FRAME_SLOT_STATE_RECORDING {
		return
	}
	s.encoder.DiscardEncoding()
	s.state = FRAME_SLOT_STATE_READY
}

// submit queues buffers on the slot fence with the next fence value. The
// slot expects that value only once the queue accepted the submission.
func (s *frameSlot) submit(queue gpu.Queue, buffers []gpu.CommandBuffer) error {
	value := s.expectedValue + 1
	if err := queue.Submit(buffers, s.fence, value); err != nil {
		return err
	}
	s.expectedValue = value
	s.state = FRAME_SLOT_STATE_SUBMITTED
	return nil
}

// retire hands the frame's transient resources to the slot. They are
// released by the next reclaim.
func (s *frameSlot) retire(view gpu.TextureView, buffer gpu.CommandBuffer) {
	s.retiredViews = append(s.retiredViews, view)
	s.retiredCommandBuffers = append(s.retiredCommandBuffers, buffer)
	s.recordedFrameCount++
}

// reclaim waits for the slot fence to reach expectedValue, then releases
// every retired resource. It is the only place where GPU completion is
// confirmed before CPU-side release. On timeout the slot stays Submitted.
func (s *frameSlot) reclaim(device gpu.Device, timeout time.Duration) (time.Duration, error) {
	switch s.state {
	case FRAME_SLOT_STATE_READY:
		return 0, nil
	case FRAME_SLOT_STATE_SUBMITTED:
	default:
		return 0, fmt.Errorf("%s cannot be reclaimed in state %s", s.label, s.state)
	}

	start := time.Now()
	reached, err := device.Wait(s.fence, s.expectedValue, timeout)
	waited := time.Since(start)
	if err != nil {
		core.LogError("%s fence wait failed: %s", s.label, err)
		return waited, fmt.Errorf("%s fence wait: %w", s.label, err)
	}
	if !reached {
		core.LogWarn("%s fence wait - Timed out at value %d", s.label, s.expectedValue)
		return waited, fmt.Errorf("%s at value %d: %w", s.label, s.expectedValue, ErrFenceTimeout)
	}
	s.state = FRAME_SLOT_STATE_RECLAIMABLE

	for _, view := range s.retiredViews {
		device.DestroyTextureView(view)
	}
	if len(s.retiredCommandBuffers) > 0 {
		s.encoder.ResetAll(s.retiredCommandBuffers)
	}
	s.retiredViews = s.retiredViews[:0]
	s.retiredCommandBuffers = s.retiredCommandBuffers[:0]
	s.recordedFrameCount = 0
	s.reclaimCount++
	s.state = FRAME_SLOT_STATE_READY
	return waited, nil
}

// reclaimAndDestroy is the only way to release a slot: pending GPU work is
// waited for first, so a Submitted slot is never destroyed.
func (s *frameSlot) reclaimAndDestroy(device gpu.Device, timeout time.Duration) error {
	if s.state == FRAME_SLOT_STATE_DESTROYED {
		return nil
	}
	if s.state == FRAME_SLOT_STATE_RECORDING {
		s.abortRecording()
	}
	if _, err := s.reclaim(device, timeout); err != nil {
		return err
	}
	device.DestroyCommandEncoder(s.encoder)
	device.DestroyFence(s.fence)
	s.encoder = nil
	s.fence = nil
	s.state = FRAME_SLOT_STATE_DESTROYED
	return nil
}
