package gputest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

var (
	ErrEncoderRecording    = errors.New("gputest: encoder is already recording")
	ErrEncoderNotRecording = errors.New("gputest: encoder is not recording")
)

type Device struct {
	backend *Backend
	name    string
}

func (d *Device) CreateCommandEncoder(desc *gpu.CommandEncoderDescriptor) (gpu.CommandEncoder, error) {
	d.backend.record("device.create_encoder")
	return &Encoder{backend: d.backend, name: d.backend.create("encoder")}, nil
}

func (d *Device) DestroyCommandEncoder(encoder gpu.CommandEncoder) {
	e := encoder.(*Encoder)
	d.backend.record("device.destroy_encoder")
	if e.recording {
		d.backend.violate("%s destroyed while recording", e.name)
	}
	d.backend.release(e.name)
}

func (d *Device) CreateFence() (gpu.Fence, error) {
	d.backend.record("device.create_fence")
	f := &Fence{name: d.backend.create("fence"), changed: make(chan struct{})}
	d.backend.mu.Lock()
	f.Index = len(d.backend.fences)
	d.backend.fences = append(d.backend.fences, f)
	d.backend.mu.Unlock()
	return f, nil
}

func (d *Device) DestroyFence(fence gpu.Fence) {
	f := fence.(*Fence)
	d.backend.record("device.destroy_fence")
	if !f.Reached(f.Submitted()) {
		d.backend.violate("%s destroyed with pending value %d", f.name, f.Submitted())
	}
	d.backend.release(f.name)
}

func (d *Device) CreateTextureView(texture gpu.SurfaceTexture, desc *gpu.TextureViewDescriptor) (gpu.TextureView, error) {
	d.backend.record("device.create_view")
	v := &View{name: d.backend.create("view"), Texture: texture.(*Texture)}
	d.backend.mu.Lock()
	d.backend.pending = append(d.backend.pending, v)
	d.backend.mu.Unlock()
	return v, nil
}

func (d *Device) DestroyTextureView(view gpu.TextureView) {
	v := view.(*View)
	d.backend.record("device.destroy_view")
	if v.fence != nil && !v.fence.Reached(v.value) {
		d.backend.violate("%s released before fence value %d", v.name, v.value)
	}
	d.backend.release(v.name)
}

func (d *Device) Wait(fence gpu.Fence, value gpu.FenceValue, timeout time.Duration) (bool, error) {
	f := fence.(*Fence)
	d.backend.record("device.wait fence=%d value=%d", f.Index, value)
	return f.wait(value, timeout), nil
}

func (d *Device) Exit(queue gpu.Queue) {
	d.backend.record("device.exit")
	d.backend.release(d.name)
}

type Queue struct {
	backend *Backend
	device  *Device
}

func (q *Queue) Submit(buffers []gpu.CommandBuffer, fence gpu.Fence, value gpu.FenceValue) error {
	f := fence.(*Fence)
	q.backend.record("queue.submit fence=%d value=%d buffers=%d", f.Index, value, len(buffers))

	q.backend.mu.Lock()
	views := q.backend.pending
	q.backend.pending = nil
	q.backend.submissions = append(q.backend.submissions, Submission{Fence: f, Value: value, Buffers: len(buffers)})
	q.backend.mu.Unlock()

	for _, v := range views {
		v.fence, v.value = f, value
	}
	for _, buf := range buffers {
		cb := buf.(*CommandBuffer)
		cb.fence, cb.value = f, value
	}
	f.submit(value)
	if !q.backend.manualFences {
		f.Signal(value)
	}
	return nil
}

func (q *Queue) Present(surface gpu.Surface, texture gpu.SurfaceTexture) error {
	q.backend.record("queue.present texture=%d", texture.(*Texture).ID)
	return nil
}

// Fence is a fake timeline fence.
type Fence struct {
	// Index is the creation order of the fence.
	Index int
	name  string

	mu        sync.Mutex
	value     gpu.FenceValue
	submitted gpu.FenceValue
	changed   chan struct{}
}

// Signal moves the fence to value, waking every waiter that asked for it.
func (f *Fence) Signal(value gpu.FenceValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value <= f.value {
		return
	}
	f.value = value
	close(f.changed)
	f.changed = make(chan struct{})
}

// Value returns the value the fence currently reports.
func (f *Fence) Value() gpu.FenceValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Submitted returns the highest value queued against the fence.
func (f *Fence) Submitted() gpu.FenceValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted
}

func (f *Fence) Reached(value gpu.FenceValue) bool {
	return f.Value() >= value
}

func (f *Fence) submit(value gpu.FenceValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value > f.submitted {
		f.submitted = value
	}
}

func (f *Fence) wait(value gpu.FenceValue, timeout time.Duration) bool {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}
	for {
		f.mu.Lock()
		if f.value >= value {
			f.mu.Unlock()
			return true
		}
		changed := f.changed
		f.mu.Unlock()

		select {
		case <-changed:
		case <-deadline:
			return f.Reached(value)
		}
	}
}

type Encoder struct {
	backend   *Backend
	name      string
	recording bool
	inPass    bool
}

func (e *Encoder) BeginEncoding(label string) error {
	e.backend.record("encoder.begin")
	if e.recording {
		return ErrEncoderRecording
	}
	e.recording = true
	return nil
}

func (e *Encoder) TransitionTextures(barriers []gpu.TextureBarrier) {
	for _, b := range barriers {
		e.backend.record("encoder.transition %s->%s", b.From, b.To)
	}
}

func (e *Encoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) {
	e.backend.record("encoder.begin_pass clear=%v", desc.ColorAttachments[0].ClearValue)
	e.inPass = true
}

func (e *Encoder) EndRenderPass() {
	e.backend.record("encoder.end_pass")
	e.inPass = false
}

func (e *Encoder) EndEncoding() (gpu.CommandBuffer, error) {
	e.backend.record("encoder.end")
	if !e.recording {
		return nil, ErrEncoderNotRecording
	}
	if e.inPass {
		return nil, fmt.Errorf("gputest: %s ended inside a render pass", e.name)
	}
	e.recording = false
	return &CommandBuffer{}, nil
}

func (e *Encoder) DiscardEncoding() {
	e.backend.record("encoder.discard")
	e.recording = false
	e.inPass = false
}

func (e *Encoder) ResetAll(buffers []gpu.CommandBuffer) {
	e.backend.record("encoder.reset_all buffers=%d", len(buffers))
	for _, buf := range buffers {
		cb := buf.(*CommandBuffer)
		if cb.fence != nil && !cb.fence.Reached(cb.value) {
			e.backend.violate("command buffer reset before fence value %d", cb.value)
		}
	}
}

type View struct {
	Texture *Texture
	name    string
	fence   *Fence
	value   gpu.FenceValue
}

type CommandBuffer struct {
	fence *Fence
	value gpu.FenceValue
}
