// Package platform owns the application window. Linux and FreeBSD talk to
// Xlib through goffi so the binary links without cgo, which the wgpu HAL
// requires there. Windows uses glfw.
package platform

import (
	"errors"
	"runtime"
	"time"

	"github.com/spaghettifunk/midnight/engine/core"
)

var (
	ErrNoFramebuffer = errors.New("window has an empty framebuffer")
	ErrUnsupported   = errors.New("no window support on this platform")
)

// How long PumpMessages waits for window events.
const pumpTimeout = 10 * time.Millisecond

func init() {
	// window events must be handled on the main OS thread
	runtime.LockOSThread()
}

func requestClose() {
	core.LogDebug("Window close requested.")
	core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
}
