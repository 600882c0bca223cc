//go:build windows

package platform

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"golang.org/x/sys/windows"

	"github.com/spaghettifunk/midnight/engine/config"
	"github.com/spaghettifunk/midnight/engine/core"
	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

// Window is a glfw window. It is created, pumped and destroyed on the main
// goroutine.
type Window struct {
	window *glfw.Window
}

// NewWindow initializes glfw and opens a fixed size window without a client
// API, ready for a GPU surface.
func NewWindow(cfg config.WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return nil, err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, err := glfw.CreateWindow(int(cfg.Width), int(cfg.Height), cfg.Title, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return nil, err
	}

	window.SetKeyCallback(keyCallback)
	window.SetCloseCallback(closeCallback)
	window.SetPos(int(cfg.X), int(cfg.Y))
	window.Show()

	core.LogInfo("Window %q created (%dx%d).", cfg.Title, cfg.Width, cfg.Height)
	return &Window{window: window}, nil
}

// Handle returns the HINSTANCE and HWND a surface is created from.
func (w *Window) Handle() (gpu.WindowHandle, error) {
	width, height := w.window.GetFramebufferSize()
	if width <= 0 || height <= 0 {
		return gpu.WindowHandle{}, ErrNoFramebuffer
	}
	var module windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &module); err != nil {
		return gpu.WindowHandle{}, err
	}
	return gpu.WindowHandle{
		Display: uintptr(module),
		Window:  uintptr(unsafe.Pointer(w.window.GetWin32Window())),
		Width:   uint32(width),
		Height:  uint32(height),
	}, nil
}

// PumpMessages processes window events, waiting up to pumpTimeout for the
// first one. It returns false once the window has been asked to close.
func (w *Window) PumpMessages() bool {
	glfw.WaitEventsTimeout(pumpTimeout.Seconds())
	core.InputUpdate()
	return !w.window.ShouldClose()
}

// Wake makes a pending PumpMessages return. Safe from any goroutine.
func (w *Window) Wake() {
	glfw.PostEmptyEvent()
}

func (w *Window) Shutdown() error {
	w.window.Destroy()
	glfw.Terminate()
	return nil
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	code, ok := translateKey(key)
	if !ok {
		return
	}
	core.InputProcessKey(code, action == glfw.Press)
}

func closeCallback(w *glfw.Window) {
	requestClose()
}
