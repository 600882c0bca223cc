// Package wgpu implements the gpu capability on top of the gogpu/wgpu
// hardware abstraction layer.
package wgpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/allbackends"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

var ErrBackendUnavailable = errors.New("graphics backend not available")

// The HAL does not report a swap chain image range, so surfaces advertise
// the range every supported platform accepts.
const (
	minSurfaceImages = 2
	maxSurfaceImages = 16
)

// Backend wraps one registered HAL backend.
type Backend struct {
	raw  hal.Backend
	name string
}

// NewBackend looks up a backend by name: vulkan, metal, dx12, gl, noop, or
// auto to pick the most capable one registered.
func NewBackend(name string) (*Backend, error) {
	var variant gputypes.Backend
	switch strings.ToLower(name) {
	case "noop":
		return &Backend{raw: noop.API{}, name: "noop"}, nil
	case "", "auto":
		raw, err := hal.SelectBestBackend()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		return &Backend{raw: raw, name: raw.Variant().String()}, nil
	case "vulkan":
		variant = gputypes.BackendVulkan
	case "metal":
		variant = gputypes.BackendMetal
	case "dx12":
		variant = gputypes.BackendDX12
	case "gl":
		variant = gputypes.BackendGL
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrBackendUnavailable, name)
	}
	raw, ok := hal.GetBackend(variant)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not built for this platform", ErrBackendUnavailable, variant)
	}
	return &Backend{raw: raw, name: variant.String()}, nil
}

func (b *Backend) Name() string {
	return b.name
}

func (b *Backend) CreateInstance(desc *gpu.InstanceDescriptor) (gpu.Instance, error) {
	halDesc := &hal.InstanceDescriptor{
		Backends: gputypes.Backends(1) << b.raw.Variant(),
		Flags:    gputypes.InstanceFlagsNone,
	}
	if desc != nil && desc.Debug {
		halDesc.Flags = gputypes.InstanceFlagsDebug | gputypes.InstanceFlagsValidation
	}
	raw, err := b.raw.CreateInstance(halDesc)
	if err != nil {
		return nil, err
	}
	return &Instance{raw: raw}, nil
}

type Instance struct {
	raw hal.Instance
}

func (i *Instance) CreateSurface(window gpu.WindowHandle) (gpu.Surface, error) {
	raw, err := i.raw.CreateSurface(window.Display, window.Window)
	if err != nil {
		return nil, err
	}
	return &Surface{raw: raw}, nil
}

func (i *Instance) EnumerateAdapters(compatible gpu.Surface) []gpu.ExposedAdapter {
	var hint hal.Surface
	if s, ok := compatible.(*Surface); ok && s != nil {
		hint = s.raw
	}
	exposed := i.raw.EnumerateAdapters(hint)
	adapters := make([]gpu.ExposedAdapter, 0, len(exposed))
	for _, e := range exposed {
		adapters = append(adapters, gpu.ExposedAdapter{
			Adapter: &Adapter{raw: e.Adapter},
			Info:    e.Info,
			Limits:  e.Capabilities.Limits,
		})
	}
	return adapters
}

func (i *Instance) DestroySurface(surface gpu.Surface) {
	surface.(*Surface).raw.Destroy()
}

func (i *Instance) Destroy() {
	i.raw.Destroy()
}

type Adapter struct {
	raw hal.Adapter
}

func (a *Adapter) Open(features gputypes.Features, limits gputypes.Limits) (gpu.OpenDevice, error) {
	open, err := a.raw.Open(features, limits)
	if err != nil {
		return gpu.OpenDevice{}, err
	}
	tl := &timeline{queue: open.Queue}
	return gpu.OpenDevice{
		Device: &Device{raw: open.Device, timeline: tl},
		Queue:  &Queue{raw: open.Queue, timeline: tl},
	}, nil
}

func (a *Adapter) SurfaceCapabilities(surface gpu.Surface) *gpu.SurfaceCapabilities {
	caps := a.raw.SurfaceCapabilities(surface.(*Surface).raw)
	if caps == nil {
		return nil
	}
	return &gpu.SurfaceCapabilities{
		Formats:       caps.Formats,
		PresentModes:  caps.PresentModes,
		AlphaModes:    caps.AlphaModes,
		MinImageCount: minSurfaceImages,
		MaxImageCount: maxSurfaceImages,
	}
}

func (a *Adapter) Release() {
	a.raw.Destroy()
}
