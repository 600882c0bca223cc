// Package gpu declares the graphics-device capability consumed by the frame
// pipeline. Handles are opaque: the pipeline only passes them back to the
// object that created them.
package gpu

import (
	"time"

	"github.com/gogpu/gputypes"
)

// FenceValue is the monotonically increasing value a fence reports once the
// submission it was paired with has retired.
type FenceValue uint64

// Opaque handles produced by a Device, a Surface or a CommandEncoder.
type (
	Fence          interface{}
	TextureView    interface{}
	CommandBuffer  interface{}
	SurfaceTexture interface{}
)

// Backend creates instances of one graphics API.
type Backend interface {
	Name() string
	CreateInstance(desc *InstanceDescriptor) (Instance, error)
}

type Instance interface {
	CreateSurface(window WindowHandle) (Surface, error)
	// EnumerateAdapters lists the adapters able to present to the given
	// surface. A nil surface lists every adapter.
	EnumerateAdapters(compatible Surface) []ExposedAdapter
	DestroySurface(surface Surface)
	Destroy()
}

type Adapter interface {
	Open(features gputypes.Features, limits gputypes.Limits) (OpenDevice, error)
	// SurfaceCapabilities returns nil when the adapter cannot present to the
	// surface.
	SurfaceCapabilities(surface Surface) *SurfaceCapabilities
	Release()
}

type Surface interface {
	Configure(device Device, config *SurfaceConfiguration) error
	Unconfigure(device Device)
	// AcquireTexture returns the next presentable image. A zero timeout
	// waits without bound.
	AcquireTexture(timeout time.Duration) (*AcquiredSurfaceTexture, error)
	// DiscardTexture gives back an acquired image that will not be presented.
	DiscardTexture(texture SurfaceTexture)
}

type Device interface {
	CreateCommandEncoder(desc *CommandEncoderDescriptor) (CommandEncoder, error)
	DestroyCommandEncoder(encoder CommandEncoder)
	CreateFence() (Fence, error)
	DestroyFence(fence Fence)
	CreateTextureView(texture SurfaceTexture, desc *TextureViewDescriptor) (TextureView, error)
	DestroyTextureView(view TextureView)
	// Wait blocks until the fence reports at least value. It returns false
	// when the timeout elapses first. A zero timeout waits without bound.
	Wait(fence Fence, value FenceValue, timeout time.Duration) (bool, error)
	// Exit releases the device together with its queue.
	Exit(queue Queue)
}

type Queue interface {
	// Submit queues the command buffers. Once they have all retired the
	// fence reports value. An empty batch only signals the fence.
	Submit(buffers []CommandBuffer, fence Fence, value FenceValue) error
	Present(surface Surface, texture SurfaceTexture) error
}

type CommandEncoder interface {
	BeginEncoding(label string) error
	TransitionTextures(barriers []TextureBarrier)
	BeginRenderPass(desc *RenderPassDescriptor)
	EndRenderPass()
	EndEncoding() (CommandBuffer, error)
	// DiscardEncoding abandons the current recording.
	DiscardEncoding()
	// ResetAll recycles command buffers whose work has completed.
	ResetAll(buffers []CommandBuffer)
}
