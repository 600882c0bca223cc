//go:build linux || freebsd

package platform

import (
	"errors"
	"os"
	"time"

	"github.com/spaghettifunk/midnight/engine/config"
	"github.com/spaghettifunk/midnight/engine/core"
	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

var errNoDisplay = errors.New("cannot open X display, is DISPLAY set?")

// Window is an Xlib window. It is created, pumped and destroyed on the main
// goroutine.
type Window struct {
	x            *xlib
	display      uintptr
	window       uint64
	deleteWindow uint64
	closed       bool
	wake         chan struct{}
}

// NewWindow connects to the X server and maps a fixed size window.
func NewWindow(cfg config.WindowConfig) (*Window, error) {
	x, err := loadXlib()
	if err != nil {
		core.LogError("failed to load Xlib: %s", err)
		return nil, err
	}
	display := x.OpenDisplay()
	if display == 0 {
		x.close()
		core.LogError("%s", errNoDisplay)
		return nil, errNoDisplay
	}

	root, black := x.DefaultRoot(display)
	window := x.CreateSimpleWindow(display, root, cfg.X, cfg.Y, cfg.Width, cfg.Height, black)
	if window == 0 {
		x.CloseDisplay(display)
		x.close()
		return nil, errors.New("failed to create X window")
	}
	x.StoreName(display, window, cfg.Title)
	x.SelectInput(display, window, xKeyPressMask|xKeyReleaseMask|xStructureNotify)

	// fixed size, the swapchain is never recreated
	hints := &xSizeHints{
		flags:     xSizeHintsPosition | xSizeHintsMinSize | xSizeHintsMaxSize,
		x:         cfg.X,
		y:         cfg.Y,
		minWidth:  int32(cfg.Width),
		minHeight: int32(cfg.Height),
		maxWidth:  int32(cfg.Width),
		maxHeight: int32(cfg.Height),
	}
	x.SetWMNormalHints(display, window, hints)

	deleteWindow := x.InternAtom(display, "WM_DELETE_WINDOW")
	x.SetWMProtocols(display, window, []uint64{deleteWindow})
	x.DetectableAutoRepeat(display)
	x.MapWindow(display, window)
	x.Flush(display)

	// the Vulkan HAL reads handles as Wayland ones whenever this is set
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		core.LogDebug("Running under XWayland, surfaces use the Xlib window.")
		_ = os.Unsetenv("WAYLAND_DISPLAY")
	}

	core.LogInfo("Window %q created (%dx%d).", cfg.Title, cfg.Width, cfg.Height)
	return &Window{
		x:            x,
		display:      display,
		window:       window,
		deleteWindow: deleteWindow,
		wake:         make(chan struct{}, 1),
	}, nil
}

// Handle returns the Display pointer and window id a Vulkan or GLES surface
// is created from.
func (w *Window) Handle() (gpu.WindowHandle, error) {
	width, height, ok := w.x.WindowSize(w.display, w.window)
	if !ok || width <= 0 || height <= 0 {
		return gpu.WindowHandle{}, ErrNoFramebuffer
	}
	return gpu.WindowHandle{
		Display: w.display,
		Window:  uintptr(w.window),
		Width:   uint32(width),
		Height:  uint32(height),
	}, nil
}

// PumpMessages drains the X event queue. With nothing queued it waits up to
// pumpTimeout or until Wake. It returns false once the window manager has
// asked the window to close.
func (w *Window) PumpMessages() bool {
	if w.x.Pending(w.display) == 0 {
		select {
		case <-w.wake:
		case <-time.After(pumpTimeout):
		}
	}
	var event xEvent
	for w.x.Pending(w.display) > 0 {
		w.x.NextEvent(w.display, &event)
		w.handleEvent(&event)
	}
	core.InputUpdate()
	return !w.closed
}

func (w *Window) handleEvent(event *xEvent) {
	switch event.kind() {
	case xKeyPress, xKeyRelease:
		code, ok := translateKeysym(w.x.LookupKeysym(event))
		if !ok {
			return
		}
		core.InputProcessKey(code, event.kind() == xKeyPress)
	case xClientMessage:
		if event.clientData() == w.deleteWindow && !w.closed {
			w.closed = true
			requestClose()
		}
	}
}

// Wake makes a pending PumpMessages return. Safe from any goroutine.
func (w *Window) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Window) Shutdown() error {
	w.x.DestroyWindow(w.display, w.window)
	w.x.CloseDisplay(w.display)
	w.x.close()
	return nil
}
