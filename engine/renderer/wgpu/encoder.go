package wgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

type CommandEncoder struct {
	raw    hal.CommandEncoder
	device *Device
	pass   hal.RenderPassEncoder
}

func (e *CommandEncoder) BeginEncoding(label string) error {
	return e.raw.BeginEncoding(label)
}

// TransitionTextures drops transitions into the present state: the HAL
// records that barrier itself when the texture is presented.
func (e *CommandEncoder) TransitionTextures(barriers []gpu.TextureBarrier) {
	raw := make([]hal.TextureBarrier, 0, len(barriers))
	for _, b := range barriers {
		if b.To == gpu.TextureUsesPresent {
			continue
		}
		raw = append(raw, hal.TextureBarrier{
			Texture: b.Texture.(hal.SurfaceTexture),
			Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll},
			Usage: hal.TextureUsageTransition{
				OldUsage: textureUsage(b.From),
				NewUsage: textureUsage(b.To),
			},
		})
	}
	if len(raw) > 0 {
		e.raw.TransitionTextures(raw)
	}
}

func textureUsage(u gpu.TextureUses) gputypes.TextureUsage {
	switch u {
	case gpu.TextureUsesColorTarget:
		return gputypes.TextureUsageRenderAttachment
	default:
		return gputypes.TextureUsageNone
	}
}

func (e *CommandEncoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) {
	attachments := make([]hal.RenderPassColorAttachment, 0, len(desc.ColorAttachments))
	for _, a := range desc.ColorAttachments {
		attachments = append(attachments, hal.RenderPassColorAttachment{
			View:       a.View.(hal.TextureView),
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: a.ClearValue,
		})
	}
	e.pass = e.raw.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: attachments,
	})
}

func (e *CommandEncoder) EndRenderPass() {
	if e.pass == nil {
		return
	}
	e.pass.End()
	e.pass = nil
}

func (e *CommandEncoder) EndEncoding() (gpu.CommandBuffer, error) {
	return e.raw.EndEncoding()
}

func (e *CommandEncoder) DiscardEncoding() {
	e.pass = nil
	e.raw.DiscardEncoding()
}

// ResetAll recycles the encoder and frees the retired command buffers.
func (e *CommandEncoder) ResetAll(buffers []gpu.CommandBuffer) {
	raw := make([]hal.CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		raw = append(raw, b.(hal.CommandBuffer))
	}
	e.raw.ResetAll(raw)
	for _, b := range raw {
		e.device.raw.FreeCommandBuffer(b)
	}
}
