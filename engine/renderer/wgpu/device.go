package wgpu

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

var ErrFenceValueNotSubmitted = errors.New("fence value was never submitted")

const (
	minPollInterval = 50 * time.Microsecond
	maxPollInterval = 2 * time.Millisecond
)

// timeline maps fence values onto HAL submission indices. The queue retires
// submissions in order, so a fence value is reached once the submission it
// was recorded against has completed.
type timeline struct {
	queue hal.Queue

	mu   sync.Mutex
	last uint64
}

func (t *timeline) submit(buffers []hal.CommandBuffer) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	// An empty batch only needs the work already queued.
	if len(buffers) == 0 {
		return t.last, nil
	}
	idx, err := t.queue.Submit(buffers)
	if err != nil {
		return 0, err
	}
	t.last = idx
	return idx, nil
}

func (t *timeline) completed() uint64 {
	return t.queue.PollCompleted()
}

type fenceMark struct {
	value      gpu.FenceValue
	submission uint64
}

// poll calls ready with a doubling sleep in between until it reports true
// or timeout elapses. A zero timeout polls without bound.
func poll(timeout time.Duration, ready func() (bool, error)) (bool, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	interval := minPollInterval
	for {
		done, err := ready()
		if err != nil || done {
			return done, err
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return false, nil
		}
		time.Sleep(interval)
		if interval < maxPollInterval {
			interval *= 2
		}
	}
}

// Fence records which HAL submission each of its values stands for. The HAL
// queue's submission index is the timeline, so no HAL fence is allocated.
type Fence struct {
	mu    sync.Mutex
	marks []fenceMark
}

func (f *Fence) mark(value gpu.FenceValue, submission uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marks = append(f.marks, fenceMark{value: value, submission: submission})
}

// target returns the submission that must complete for value to be
// reached, dropping marks that are already behind completed.
func (f *Fence) target(value gpu.FenceValue, completed uint64) (uint64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.marks) > 1 && f.marks[0].submission <= completed && f.marks[1].value <= value {
		f.marks = f.marks[1:]
	}
	for _, m := range f.marks {
		if m.value >= value {
			return m.submission, true
		}
	}
	return 0, false
}

type Device struct {
	raw      hal.Device
	timeline *timeline
}

func (d *Device) CreateCommandEncoder(desc *gpu.CommandEncoderDescriptor) (gpu.CommandEncoder, error) {
	raw, err := d.raw.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: desc.Label})
	if err != nil {
		return nil, err
	}
	return &CommandEncoder{raw: raw, device: d}, nil
}

func (d *Device) DestroyCommandEncoder(encoder gpu.CommandEncoder) {
	encoder.(*CommandEncoder).raw.Destroy()
}

func (d *Device) CreateFence() (gpu.Fence, error) {
	return &Fence{}, nil
}

func (d *Device) DestroyFence(fence gpu.Fence) {
	f := fence.(*Fence)
	f.mu.Lock()
	f.marks = nil
	f.mu.Unlock()
}

func (d *Device) CreateTextureView(texture gpu.SurfaceTexture, desc *gpu.TextureViewDescriptor) (gpu.TextureView, error) {
	return d.raw.CreateTextureView(texture.(hal.SurfaceTexture), &hal.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          desc.Format,
		Dimension:       desc.Dimension,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
}

func (d *Device) DestroyTextureView(view gpu.TextureView) {
	d.raw.DestroyTextureView(view.(hal.TextureView))
}

// Wait polls the queue until the submission behind value has completed.
func (d *Device) Wait(fence gpu.Fence, value gpu.FenceValue, timeout time.Duration) (bool, error) {
	f := fence.(*Fence)
	if value == 0 {
		return true, nil
	}
	submission, ok := f.target(value, d.timeline.completed())
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrFenceValueNotSubmitted, value)
	}

	return poll(timeout, func() (bool, error) {
		return d.timeline.completed() >= submission, nil
	})
}

func (d *Device) Exit(queue gpu.Queue) {
	d.raw.Destroy()
}

type Queue struct {
	raw      hal.Queue
	timeline *timeline
}

func (q *Queue) Submit(buffers []gpu.CommandBuffer, fence gpu.Fence, value gpu.FenceValue) error {
	raw := make([]hal.CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		raw = append(raw, b.(hal.CommandBuffer))
	}
	submission, err := q.timeline.submit(raw)
	if err != nil {
		return err
	}
	fence.(*Fence).mark(value, submission)
	return nil
}

func (q *Queue) Present(surface gpu.Surface, texture gpu.SurfaceTexture) error {
	return q.raw.Present(surface.(*Surface).raw, texture.(hal.SurfaceTexture), []image.Rectangle(nil))
}
