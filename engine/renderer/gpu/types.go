package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// WindowHandle carries the native handles a surface is created from. On
// X11 Display is the Display* and Window the XID; on Windows Display is the
// HINSTANCE and Window the HWND; on macOS Window is the CAMetalLayer.
type WindowHandle struct {
	Display uintptr
	Window  uintptr
	Width   uint32
	Height  uint32
}

type InstanceDescriptor struct {
	Debug bool
}

type ExposedAdapter struct {
	Adapter Adapter
	Info    gputypes.AdapterInfo
	Limits  gputypes.Limits
}

type OpenDevice struct {
	Device Device
	Queue  Queue
}

type SurfaceCapabilities struct {
	Formats       []gputypes.TextureFormat
	PresentModes  []gputypes.PresentMode
	AlphaModes    []gputypes.CompositeAlphaMode
	MinImageCount uint32
	MaxImageCount uint32
}

func (c *SurfaceCapabilities) String() string {
	return fmt.Sprintf("formats=%v present_modes=%v alpha_modes=%v image_count=[%d, %d]",
		c.Formats, c.PresentModes, c.AlphaModes, c.MinImageCount, c.MaxImageCount)
}

type SurfaceConfiguration struct {
	SwapChainSize uint32
	Width         uint32
	Height        uint32
	Format        gputypes.TextureFormat
	PresentMode   gputypes.PresentMode
	AlphaMode     gputypes.CompositeAlphaMode
	Usage         gputypes.TextureUsage
}

type AcquiredSurfaceTexture struct {
	Texture    SurfaceTexture
	Suboptimal bool
}

type CommandEncoderDescriptor struct {
	Label string
}

type TextureViewDescriptor struct {
	Label     string
	Format    gputypes.TextureFormat
	Dimension gputypes.TextureViewDimension
}

// TextureUses describes how a texture is about to be accessed.
type TextureUses uint8

const (
	// Contents are undefined and may be discarded.
	TextureUsesUninitialized TextureUses = iota
	// Written by a render pass color attachment.
	TextureUsesColorTarget
	// Handed to the presentation engine.
	TextureUsesPresent
)

func (u TextureUses) String() string {
	switch u {
	case TextureUsesUninitialized:
		return "uninitialized"
	case TextureUsesColorTarget:
		return "color-target"
	case TextureUsesPresent:
		return "present"
	default:
		return fmt.Sprintf("TextureUses(%d)", uint8(u))
	}
}

type TextureBarrier struct {
	Texture SurfaceTexture
	From    TextureUses
	To      TextureUses
}

type Extent struct {
	Width  uint32
	Height uint32
}

type ColorAttachment struct {
	View       TextureView
	ClearValue gputypes.Color
}

type RenderPassDescriptor struct {
	Label            string
	Extent           Extent
	ColorAttachments []ColorAttachment
}
