package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/spaghettifunk/midnight/engine/containers"
	"github.com/spaghettifunk/midnight/engine/core"
	"github.com/spaghettifunk/midnight/engine/math"
	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

// FramesInFlight is the size of the frame slot ring.
const FramesInFlight = 3

const (
	SurfaceFormat      = gputypes.TextureFormatBGRA8UnormSrgb
	SurfacePresentMode = gputypes.PresentModeFifo
	SurfaceAlphaMode   = gputypes.CompositeAlphaModeOpaque
)

type PipelineState uint8

const (
	PipelineStateUninitialized PipelineState = iota
	PipelineStateRunning
	PipelineStateDraining
	PipelineStateDestroyed
)

func (s PipelineState) String() string {
	switch s {
	case PipelineStateUninitialized:
		return "uninitialized"
	case PipelineStateRunning:
		return "running"
	case PipelineStateDraining:
		return "draining"
	case PipelineStateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("PipelineState(%d)", uint8(s))
	}
}

type PipelineConfig struct {
	ClearColor gputypes.Color
	// FenceTimeout bounds every wait on a frame slot fence. Zero waits
	// without bound.
	FenceTimeout time.Duration
	Debug        bool
}

type Option func(*FramePipeline)

func WithObserver(o Observer) Option {
	return func(p *FramePipeline) { p.observer = o }
}

// FramePipeline owns the graphics device chain and the frames-in-flight
// ring. It is driven by a single goroutine: no method is safe for
// concurrent use.
type FramePipeline struct {
	backend  gpu.Backend
	config   PipelineConfig
	observer Observer
	state    PipelineState

	instance      gpu.Instance
	surface       gpu.Surface
	adapter       gpu.Adapter
	adapterInfo   gputypes.AdapterInfo
	device        gpu.Device
	queue         gpu.Queue
	configured    bool
	surfaceConfig gpu.SurfaceConfiguration

	slots *containers.Ring[*frameSlot]
}

// NewFramePipeline builds the device chain for the window and creates every
// frame slot. On failure everything created so far is released and an
// *InitError is returned.
func NewFramePipeline(backend gpu.Backend, window gpu.WindowHandle, config PipelineConfig, opts ...Option) (*FramePipeline, error) {
	p := &FramePipeline{
		backend:  backend,
		config:   config,
		observer: nopObserver{},
		state:    PipelineStateUninitialized,
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.initialize(window); err != nil {
		core.LogError("%s", err)
		p.releaseDeviceChain()
		return nil, err
	}
	p.state = PipelineStateRunning
	core.LogInfo("Frame pipeline running on %s (%s), %d frames in flight.", p.adapterInfo.Name, backend.Name(), FramesInFlight)
	return p, nil
}

func (p *FramePipeline) initialize(window gpu.WindowHandle) error {
	instance, err := p.backend.CreateInstance(&gpu.InstanceDescriptor{Debug: p.config.Debug})
	if err != nil {
		return &InitError{Kind: InitInstance, Err: err}
	}
	p.instance = instance

	surface, err := instance.CreateSurface(window)
	if err != nil {
		return &InitError{Kind: InitSurface, Err: err}
	}
	p.surface = surface

	if err := p.selectAdapter(); err != nil {
		return err
	}

	caps := p.adapter.SurfaceCapabilities(surface)
	if caps == nil {
		return &InitError{Kind: InitNoSurfaceCapabilities}
	}
	core.LogDebug("Surface capabilities: %s", caps)

	open, err := p.adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		return &InitError{Kind: InitDeviceOpen, Err: err}
	}
	p.device = open.Device
	p.queue = open.Queue

	p.surfaceConfig = gpu.SurfaceConfiguration{
		SwapChainSize: swapChainSize(caps),
		Width:         window.Width,
		Height:        window.Height,
		Format:        SurfaceFormat,
		PresentMode:   SurfacePresentMode,
		AlphaMode:     SurfaceAlphaMode,
		Usage:         gputypes.TextureUsageRenderAttachment,
	}
	if err := surface.Configure(p.device, &p.surfaceConfig); err != nil {
		return &InitError{Kind: InitSurfaceConfigure, Err: err}
	}
	p.configured = true
	core.LogDebug("Surface configured: %dx%d, %d images, format %v.", window.Width, window.Height, p.surfaceConfig.SwapChainSize, SurfaceFormat)

	slots := make([]*frameSlot, 0, FramesInFlight)
	for i := 0; i < FramesInFlight; i++ {
		slot, err := newFrameSlot(p.device, i)
		if err != nil {
			for _, s := range slots {
				_ = s.reclaimAndDestroy(p.device, p.config.FenceTimeout)
			}
			return &InitError{Kind: InitFrameSlot, Err: err}
		}
		slots = append(slots, slot)
	}
	p.slots = containers.NewRing(slots)
	return nil
}

// selectAdapter keeps the first adapter reporting nonzero limits and
// releases every other one.
func (p *FramePipeline) selectAdapter() error {
	adapters := p.instance.EnumerateAdapters(p.surface)
	for _, exposed := range adapters {
		if p.adapter == nil && exposed.Limits.MaxTextureDimension2D > 0 {
			p.adapter = exposed.Adapter
			p.adapterInfo = exposed.Info
			core.LogDebug("Selected adapter %q (%s, %s).", exposed.Info.Name, exposed.Info.Vendor, exposed.Info.DeviceType)
			continue
		}
		exposed.Adapter.Release()
	}
	if p.adapter == nil {
		return &InitError{Kind: InitNoAdapter, Err: fmt.Errorf("%d adapters enumerated", len(adapters))}
	}
	return nil
}

// swapChainSize fits FramesInFlight into the surface image range. A
// maximum of zero means the surface sets no upper bound.
func swapChainSize(caps *gpu.SurfaceCapabilities) uint32 {
	max := caps.MaxImageCount
	if max == 0 {
		max = ^uint32(0)
	}
	return math.Clamp(uint32(FramesInFlight), caps.MinImageCount, max)
}

func (p *FramePipeline) State() PipelineState {
	return p.state
}

// FrameIndex is the ring position the next RenderFrame records into.
func (p *FramePipeline) FrameIndex() int {
	return p.slots.Index()
}

func (p *FramePipeline) SurfaceConfiguration() gpu.SurfaceConfiguration {
	return p.surfaceConfig
}

// SetClearColor changes the clear color used from the next frame on.
func (p *FramePipeline) SetClearColor(c gputypes.Color) {
	p.config.ClearColor = c
}

// RenderFrame records, submits and presents one frame on the current slot,
// then advances the ring. The slot is reclaimed first if its previous
// submission is still tracked, which blocks until the GPU has retired it.
func (p *FramePipeline) RenderFrame() error {
	if p.state != PipelineStateRunning {
		return fmt.Errorf("render frame in state %s: %w", p.state, ErrPipelineNotRunning)
	}
	start := time.Now()
	slot := p.slots.Current()

	if slot.state == FRAME_SLOT_STATE_SUBMITTED {
		waited, err := slot.reclaim(p.device, p.config.FenceTimeout)
		if err != nil {
			return err
		}
		p.observer.SlotReclaimed(slot.index, waited)
	}

	acquired, err := p.surface.AcquireTexture(0)
	if err != nil {
		p.observer.AcquireFailed()
		return fmt.Errorf("%w: %w", ErrAcquire, err)
	}
	if acquired.Suboptimal {
		core.LogDebug("Acquired suboptimal surface texture on %s.", slot.label)
	}

	if err := p.record(slot, acquired.Texture); err != nil {
		p.surface.DiscardTexture(acquired.Texture)
		return fmt.Errorf("%w: %w", ErrRecord, err)
	}

	if err := p.queue.Present(p.surface, acquired.Texture); err != nil {
		p.slots.Advance()
		return fmt.Errorf("%w: %w", ErrPresent, err)
	}

	p.slots.Advance()
	p.observer.FrameRendered(slot.index, time.Since(start))
	return nil
}

// record clears the acquired texture and submits the work on the slot
// fence. On success the view and command buffer are retired on the slot.
func (p *FramePipeline) record(slot *frameSlot, texture gpu.SurfaceTexture) error {
	if err := slot.beginRecording(); err != nil {
		return err
	}
	encoder := slot.encoder

	encoder.TransitionTextures([]gpu.TextureBarrier{{
		Texture: texture,
		From:    gpu.TextureUsesUninitialized,
		To:      gpu.TextureUsesColorTarget,
	}})

	view, err := p.device.CreateTextureView(texture, &gpu.TextureViewDescriptor{
		Label:     slot.label,
		Format:    p.surfaceConfig.Format,
		Dimension: gputypes.TextureViewDimension2D,
	})
	if err != nil {
		slot.abortRecording()
		return err
	}

	encoder.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label: slot.label,
		Extent: gpu.Extent{
			Width:  p.surfaceConfig.Width,
			Height: p.surfaceConfig.Height,
		},
		ColorAttachments: []gpu.ColorAttachment{{
			View:       view,
			ClearValue: p.config.ClearColor,
		}},
	})
	encoder.EndRenderPass()

	encoder.TransitionTextures([]gpu.TextureBarrier{{
		Texture: texture,
		From:    gpu.TextureUsesColorTarget,
		To:      gpu.TextureUsesPresent,
	}})

	buffer, err := encoder.EndEncoding()
	if err != nil {
		slot.abortRecording()
		p.device.DestroyTextureView(view)
		return err
	}
	if err := slot.submit(p.queue, []gpu.CommandBuffer{buffer}); err != nil {
		// The recording is closed but never reached the queue.
		slot.state = FRAME_SLOT_STATE_READY
		encoder.ResetAll([]gpu.CommandBuffer{buffer})
		p.device.DestroyTextureView(view)
		return err
	}
	slot.retire(view, buffer)
	return nil
}

// Shutdown drains every in-flight frame and releases the device chain in
// order: frame slots, surface configuration, device and queue, surface,
// adapter, instance. It may be called once; later calls, like RenderFrame,
// return ErrPipelineNotRunning.
func (p *FramePipeline) Shutdown() error {
	if p.state != PipelineStateRunning {
		return fmt.Errorf("shutdown in state %s: %w", p.state, ErrPipelineNotRunning)
	}
	p.state = PipelineStateDraining
	core.LogInfo("Frame pipeline draining, waiting for in-flight frames.")

	current := p.slots.Current()
	if current.state == FRAME_SLOT_STATE_RECORDING {
		current.abortRecording()
	}
	// The queue retires work in order, so one more signal on the current
	// slot fence covers everything submitted before it.
	if err := current.submit(p.queue, nil); err != nil {
		core.LogWarn("Final fence signal failed: %s", err)
	}
	if _, err := current.reclaim(p.device, p.config.FenceTimeout); err != nil {
		core.LogError("Frame pipeline drain failed, leaving device resources alive: %s", err)
		return err
	}

	var errs []error
	p.slots.Each(func(_ int, slot *frameSlot) {
		if err := slot.reclaimAndDestroy(p.device, p.config.FenceTimeout); err != nil {
			errs = append(errs, err)
		}
	})
	if err := errors.Join(errs...); err != nil {
		core.LogError("Frame pipeline drain failed, leaving device resources alive: %s", err)
		return err
	}
	core.LogDebug("Frame slots destroyed.")

	p.releaseDeviceChain()
	p.state = PipelineStateDestroyed
	core.LogInfo("Frame pipeline destroyed.")
	return nil
}

// releaseDeviceChain releases whatever part of the device chain exists, in
// reverse creation order. Frame slots must already be gone.
func (p *FramePipeline) releaseDeviceChain() {
	if p.configured {
		p.surface.Unconfigure(p.device)
		p.configured = false
	}
	if p.device != nil {
		p.device.Exit(p.queue)
		p.device = nil
		p.queue = nil
		core.LogDebug("Device released.")
	}
	if p.surface != nil {
		p.instance.DestroySurface(p.surface)
		p.surface = nil
	}
	if p.adapter != nil {
		p.adapter.Release()
		p.adapter = nil
	}
	if p.instance != nil {
		p.instance.Destroy()
		p.instance = nil
	}
}
