// Package gputest provides an in-memory gpu.Backend that records every call
// made against it. Fences either retire on submit or wait for the test to
// signal them, which makes pipelining and teardown order observable.
package gputest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

type Option func(*Backend)

// WithAdapters sets how many adapters the instance reports. The default is one.
func WithAdapters(n int) Option {
	return func(b *Backend) { b.adapterCount = n }
}

// WithoutSurfaceCapabilities makes every adapter report nil capabilities.
func WithoutSurfaceCapabilities() Option {
	return func(b *Backend) { b.noCapabilities = true }
}

// WithImageCountRange sets the swap chain image range the surface reports.
func WithImageCountRange(min, max uint32) Option {
	return func(b *Backend) {
		b.minImages = min
		b.maxImages = max
	}
}

// WithUnusableAdapters makes the first n reported adapters expose zero
// limits.
func WithUnusableAdapters(n int) Option {
	return func(b *Backend) { b.unusableAdapters = n }
}

func WithDeviceOpenError(err error) Option {
	return func(b *Backend) { b.openErr = err }
}

func WithConfigureError(err error) Option {
	return func(b *Backend) { b.configureErr = err }
}

// WithManualFences keeps fences unsignaled until the test calls Signal on
// them. By default a fence reaches its value as soon as it is submitted.
func WithManualFences() Option {
	return func(b *Backend) { b.manualFences = true }
}

// WithAcquireHook runs fn at the start of every AcquireTexture call.
func WithAcquireHook(fn func()) Option {
	return func(b *Backend) { b.acquireHook = fn }
}

var ErrInjected = errors.New("gputest: injected failure")

// Backend is a scriptable gpu.Backend.
type Backend struct {
	adapterCount     int
	unusableAdapters int
	noCapabilities   bool
	minImages        uint32
	maxImages        uint32
	openErr          error
	configureErr     error
	manualFences     bool
	acquireHook      func()

	mu          sync.Mutex
	calls       []string
	violations  []string
	live        map[string]struct{}
	nextID      int
	fences      []*Fence
	submissions []Submission
	pending     []*View
	acquireErr  error
	configured  *gpu.SurfaceConfiguration
	openedWith  *gputypes.Limits
}

// Submission is one recorded Queue.Submit call.
type Submission struct {
	Fence   *Fence
	Value   gpu.FenceValue
	Buffers int
}

func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		adapterCount: 1,
		minImages:    2,
		maxImages:    8,
		live:         make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Name() string {
	return "gputest"
}

// Calls returns every recorded call in order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Violations lists resource misuse detected by the fake, such as releasing
// a view whose submission has not retired.
func (b *Backend) Violations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.violations...)
}

// Live lists the resources created and not yet released.
func (b *Backend) Live() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.live))
	for name := range b.live {
		out = append(out, name)
	}
	return out
}

// Fences returns the fences in creation order.
func (b *Backend) Fences() []*Fence {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Fence(nil), b.fences...)
}

func (b *Backend) Submissions() []Submission {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Submission(nil), b.submissions...)
}

// Configured returns the last surface configuration, or nil.
func (b *Backend) Configured() *gpu.SurfaceConfiguration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.configured
}

// OpenedWith returns the limits the device was opened with, or nil.
func (b *Backend) OpenedWith() *gputypes.Limits {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openedWith
}

// SetAcquireError makes every following AcquireTexture fail with err.
func (b *Backend) SetAcquireError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.acquireErr = err
}

func (b *Backend) record(format string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, fmt.Sprintf(format, args...))
}

func (b *Backend) violate(format string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.violations = append(b.violations, fmt.Sprintf(format, args...))
}

func (b *Backend) create(kind string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	name := fmt.Sprintf("%s#%d", kind, b.nextID)
	b.nextID++
	b.live[name] = struct{}{}
	return name
}

func (b *Backend) release(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.live[name]; !ok {
		b.violations = append(b.violations, "double release of "+name)
		return
	}
	delete(b.live, name)
}

func (b *Backend) CreateInstance(desc *gpu.InstanceDescriptor) (gpu.Instance, error) {
	b.record("instance.create")
	return &Instance{backend: b, name: b.create("instance")}, nil
}

type Instance struct {
	backend *Backend
	name    string
}

func (i *Instance) CreateSurface(window gpu.WindowHandle) (gpu.Surface, error) {
	i.backend.record("instance.create_surface")
	return &Surface{backend: i.backend, name: i.backend.create("surface")}, nil
}

func (i *Instance) EnumerateAdapters(compatible gpu.Surface) []gpu.ExposedAdapter {
	i.backend.record("instance.enumerate_adapters")
	adapters := make([]gpu.ExposedAdapter, 0, i.backend.adapterCount)
	for n := 0; n < i.backend.adapterCount; n++ {
		limits := gputypes.DefaultLimits()
		if n < i.backend.unusableAdapters {
			limits = gputypes.Limits{}
		}
		adapters = append(adapters, gpu.ExposedAdapter{
			Adapter: &Adapter{backend: i.backend, name: i.backend.create("adapter")},
			Info: gputypes.AdapterInfo{
				Name:       fmt.Sprintf("Fake Adapter %d", n),
				DeviceType: gputypes.DeviceTypeOther,
			},
			Limits: limits,
		})
	}
	return adapters
}

func (i *Instance) DestroySurface(surface gpu.Surface) {
	s := surface.(*Surface)
	i.backend.record("instance.destroy_surface")
	if s.configured {
		i.backend.violate("surface destroyed while configured")
	}
	i.backend.release(s.name)
}

func (i *Instance) Destroy() {
	i.backend.record("instance.destroy")
	i.backend.release(i.name)
}

type Adapter struct {
	backend *Backend
	name    string
}

func (a *Adapter) Open(features gputypes.Features, limits gputypes.Limits) (gpu.OpenDevice, error) {
	a.backend.record("adapter.open")
	if a.backend.openErr != nil {
		return gpu.OpenDevice{}, a.backend.openErr
	}
	a.backend.mu.Lock()
	a.backend.openedWith = &limits
	a.backend.mu.Unlock()
	d := &Device{backend: a.backend, name: a.backend.create("device")}
	return gpu.OpenDevice{Device: d, Queue: &Queue{backend: a.backend, device: d}}, nil
}

func (a *Adapter) SurfaceCapabilities(surface gpu.Surface) *gpu.SurfaceCapabilities {
	a.backend.record("adapter.surface_capabilities")
	if a.backend.noCapabilities {
		return nil
	}
	return &gpu.SurfaceCapabilities{
		Formats:       []gputypes.TextureFormat{gputypes.TextureFormatBGRA8UnormSrgb},
		PresentModes:  []gputypes.PresentMode{gputypes.PresentModeFifo},
		AlphaModes:    []gputypes.CompositeAlphaMode{gputypes.CompositeAlphaModeOpaque},
		MinImageCount: a.backend.minImages,
		MaxImageCount: a.backend.maxImages,
	}
}

func (a *Adapter) Release() {
	a.backend.record("adapter.release")
	a.backend.release(a.name)
}

type Surface struct {
	backend    *Backend
	name       string
	configured bool
	textures   int
}

func (s *Surface) Configure(device gpu.Device, config *gpu.SurfaceConfiguration) error {
	s.backend.record("surface.configure")
	if s.backend.configureErr != nil {
		return s.backend.configureErr
	}
	cfg := *config
	s.backend.mu.Lock()
	s.backend.configured = &cfg
	s.backend.mu.Unlock()
	s.configured = true
	return nil
}

func (s *Surface) Unconfigure(device gpu.Device) {
	s.backend.record("surface.unconfigure")
	s.configured = false
}

func (s *Surface) AcquireTexture(timeout time.Duration) (*gpu.AcquiredSurfaceTexture, error) {
	if s.backend.acquireHook != nil {
		s.backend.acquireHook()
	}
	s.backend.record("surface.acquire")
	s.backend.mu.Lock()
	err := s.backend.acquireErr
	s.backend.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s.textures++
	return &gpu.AcquiredSurfaceTexture{Texture: &Texture{ID: s.textures}}, nil
}

func (s *Surface) DiscardTexture(texture gpu.SurfaceTexture) {
	s.backend.record("surface.discard texture=%d", texture.(*Texture).ID)
}

// Texture is a fake swap chain image.
type Texture struct {
	ID int
}
