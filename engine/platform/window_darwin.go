//go:build darwin

package platform

import (
	"github.com/spaghettifunk/midnight/engine/config"
	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

// TODO: open an NSWindow through goffi and attach a CAMetalLayer so Metal can present.
type Window struct{}

func NewWindow(cfg config.WindowConfig) (*Window, error) {
	return nil, ErrUnsupported
}

func (w *Window) Handle() (gpu.WindowHandle, error) {
	return gpu.WindowHandle{}, ErrUnsupported
}

func (w *Window) PumpMessages() bool { return false }

func (w *Window) Wake() {}

func (w *Window) Shutdown() error { return nil }

func (w *Window) ProbeVulkan() error { return ErrUnsupported }
