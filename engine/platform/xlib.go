//go:build linux || freebsd

package platform

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
)

// Xlib constants used by the window.
const (
	xKeyPressMask       = 1 << 0
	xKeyReleaseMask     = 1 << 1
	xStructureNotify    = 1 << 17
	xKeyPress           = 2
	xKeyRelease         = 3
	xClientMessage      = 33
	xSizeHintsPosition  = 1 << 2
	xSizeHintsMinSize   = 1 << 4
	xSizeHintsMaxSize   = 1 << 5
	xEventWords         = 24
	xWindowAttribsWords = 17
)

// xEvent is the XEvent union, sized as Xlib declares it on LP64.
type xEvent [xEventWords]uint64

func (e *xEvent) kind() int32 {
	return int32(e[0])
}

// clientData returns data.l[0] of an XClientMessageEvent.
func (e *xEvent) clientData() uint64 {
	return e[7]
}

type xSizeHints struct {
	flags                  int64
	x, y, width, height    int32
	minWidth, minHeight    int32
	maxWidth, maxHeight    int32
	widthInc, heightInc    int32
	minAspectX, minAspectY int32
	maxAspectX, maxAspectY int32
	baseWidth, baseHeight  int32
	winGravity             int32
	_                      int32
}

// xfunc is an Xlib entry point with its prepared call interface.
type xfunc struct {
	sym unsafe.Pointer
	cif types.CallInterface
}

func (f *xfunc) bind(lib unsafe.Pointer, name string, ret *types.TypeDescriptor, args ...*types.TypeDescriptor) error {
	sym, err := ffi.GetSymbol(lib, name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	f.sym = sym
	if err := ffi.PrepareCallInterface(&f.cif, types.DefaultCall, ret, args); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// call passes every argument by the address of its value.
func (f *xfunc) call(ret unsafe.Pointer, args ...unsafe.Pointer) {
	_ = ffi.CallFunction(&f.cif, f.sym, ret, args)
}

type xlib struct {
	handle unsafe.Pointer

	openDisplay, closeDisplay, defaultScreen, rootWindow xfunc
	blackPixel, createSimpleWindow, destroyWindow        xfunc
	storeName, selectInput, mapWindow, flush             xfunc
	internAtom, setWMProtocols, setWMNormalHints         xfunc
	pending, nextEvent, lookupKeysym                     xfunc
	getWindowAttributes, detectableAutoRepeat            xfunc
}

func loadXlib() (*xlib, error) {
	handle, err := ffi.LoadLibrary("libX11.so.6")
	if err != nil {
		if handle, err = ffi.LoadLibrary("libX11.so"); err != nil {
			return nil, fmt.Errorf("failed to load libX11: %w", err)
		}
	}
	x := &xlib{handle: handle}

	var (
		ptr   = types.PointerTypeDescriptor
		xid   = types.UInt64TypeDescriptor
		cint  = types.SInt32TypeDescriptor
		cuint = types.UInt32TypeDescriptor
		long  = types.SInt64TypeDescriptor
		void  = types.VoidTypeDescriptor
	)
	bindings := []struct {
		fn   *xfunc
		name string
		ret  *types.TypeDescriptor
		args []*types.TypeDescriptor
	}{
		{&x.openDisplay, "XOpenDisplay", ptr, []*types.TypeDescriptor{ptr}},
		{&x.closeDisplay, "XCloseDisplay", cint, []*types.TypeDescriptor{ptr}},
		{&x.defaultScreen, "XDefaultScreen", cint, []*types.TypeDescriptor{ptr}},
		{&x.rootWindow, "XRootWindow", xid, []*types.TypeDescriptor{ptr, cint}},
		{&x.blackPixel, "XBlackPixel", xid, []*types.TypeDescriptor{ptr, cint}},
		{&x.createSimpleWindow, "XCreateSimpleWindow", xid, []*types.TypeDescriptor{ptr, xid, cint, cint, cuint, cuint, cuint, xid, xid}},
		{&x.destroyWindow, "XDestroyWindow", cint, []*types.TypeDescriptor{ptr, xid}},
		{&x.storeName, "XStoreName", cint, []*types.TypeDescriptor{ptr, xid, ptr}},
		{&x.selectInput, "XSelectInput", cint, []*types.TypeDescriptor{ptr, xid, long}},
		{&x.mapWindow, "XMapWindow", cint, []*types.TypeDescriptor{ptr, xid}},
		{&x.flush, "XFlush", cint, []*types.TypeDescriptor{ptr}},
		{&x.internAtom, "XInternAtom", xid, []*types.TypeDescriptor{ptr, ptr, cint}},
		{&x.setWMProtocols, "XSetWMProtocols", cint, []*types.TypeDescriptor{ptr, xid, ptr, cint}},
		{&x.setWMNormalHints, "XSetWMNormalHints", void, []*types.TypeDescriptor{ptr, xid, ptr}},
		{&x.pending, "XPending", cint, []*types.TypeDescriptor{ptr}},
		{&x.nextEvent, "XNextEvent", cint, []*types.TypeDescriptor{ptr, ptr}},
		{&x.lookupKeysym, "XLookupKeysym", xid, []*types.TypeDescriptor{ptr, cint}},
		{&x.getWindowAttributes, "XGetWindowAttributes", cint, []*types.TypeDescriptor{ptr, xid, ptr}},
		{&x.detectableAutoRepeat, "XkbSetDetectableAutoRepeat", cint, []*types.TypeDescriptor{ptr, cint, ptr}},
	}
	for _, b := range bindings {
		if err := b.fn.bind(handle, b.name, b.ret, b.args...); err != nil {
			_ = ffi.FreeLibrary(handle)
			return nil, err
		}
	}
	return x, nil
}

func (x *xlib) close() {
	_ = ffi.FreeLibrary(x.handle)
}

// cstring returns a NUL terminated copy of s. The caller keeps the slice
// alive for the duration of the call.
func cstring(s string) []byte {
	return append([]byte(s), 0)
}

func (x *xlib) OpenDisplay() uintptr {
	var display uintptr
	var name uintptr
	x.openDisplay.call(unsafe.Pointer(&display), unsafe.Pointer(&name))
	return display
}

func (x *xlib) CloseDisplay(display uintptr) {
	var ret int32
	x.closeDisplay.call(unsafe.Pointer(&ret), unsafe.Pointer(&display))
}

func (x *xlib) DefaultRoot(display uintptr) (root, black uint64) {
	var screen int32
	x.defaultScreen.call(unsafe.Pointer(&screen), unsafe.Pointer(&display))
	x.rootWindow.call(unsafe.Pointer(&root), unsafe.Pointer(&display), unsafe.Pointer(&screen))
	x.blackPixel.call(unsafe.Pointer(&black), unsafe.Pointer(&display), unsafe.Pointer(&screen))
	return root, black
}

func (x *xlib) CreateSimpleWindow(display uintptr, parent uint64, posX, posY int32, width, height uint32, background uint64) uint64 {
	var window uint64
	var border uint32
	var borderPixel uint64
	x.createSimpleWindow.call(unsafe.Pointer(&window),
		unsafe.Pointer(&display), unsafe.Pointer(&parent),
		unsafe.Pointer(&posX), unsafe.Pointer(&posY),
		unsafe.Pointer(&width), unsafe.Pointer(&height),
		unsafe.Pointer(&border), unsafe.Pointer(&borderPixel), unsafe.Pointer(&background))
	return window
}

func (x *xlib) DestroyWindow(display uintptr, window uint64) {
	var ret int32
	x.destroyWindow.call(unsafe.Pointer(&ret), unsafe.Pointer(&display), unsafe.Pointer(&window))
}

func (x *xlib) StoreName(display uintptr, window uint64, title string) {
	name := cstring(title)
	ptr := unsafe.Pointer(&name[0])
	var ret int32
	x.storeName.call(unsafe.Pointer(&ret), unsafe.Pointer(&display), unsafe.Pointer(&window), unsafe.Pointer(&ptr))
	runtime.KeepAlive(name)
}

func (x *xlib) SelectInput(display uintptr, window uint64, mask int64) {
	var ret int32
	x.selectInput.call(unsafe.Pointer(&ret), unsafe.Pointer(&display), unsafe.Pointer(&window), unsafe.Pointer(&mask))
}

func (x *xlib) MapWindow(display uintptr, window uint64) {
	var ret int32
	x.mapWindow.call(unsafe.Pointer(&ret), unsafe.Pointer(&display), unsafe.Pointer(&window))
}

func (x *xlib) Flush(display uintptr) {
	var ret int32
	x.flush.call(unsafe.Pointer(&ret), unsafe.Pointer(&display))
}

func (x *xlib) InternAtom(display uintptr, name string) uint64 {
	buf := cstring(name)
	ptr := unsafe.Pointer(&buf[0])
	var onlyIfExists int32
	var atom uint64
	x.internAtom.call(unsafe.Pointer(&atom), unsafe.Pointer(&display), unsafe.Pointer(&ptr), unsafe.Pointer(&onlyIfExists))
	runtime.KeepAlive(buf)
	return atom
}

func (x *xlib) SetWMProtocols(display uintptr, window uint64, atoms []uint64) {
	ptr := unsafe.Pointer(&atoms[0])
	count := int32(len(atoms))
	var ret int32
	x.setWMProtocols.call(unsafe.Pointer(&ret), unsafe.Pointer(&display), unsafe.Pointer(&window), unsafe.Pointer(&ptr), unsafe.Pointer(&count))
	runtime.KeepAlive(atoms)
}

func (x *xlib) SetWMNormalHints(display uintptr, window uint64, hints *xSizeHints) {
	ptr := unsafe.Pointer(hints)
	x.setWMNormalHints.call(nil, unsafe.Pointer(&display), unsafe.Pointer(&window), unsafe.Pointer(&ptr))
	runtime.KeepAlive(hints)
}

func (x *xlib) Pending(display uintptr) int32 {
	var count int32
	x.pending.call(unsafe.Pointer(&count), unsafe.Pointer(&display))
	return count
}

func (x *xlib) NextEvent(display uintptr, event *xEvent) {
	ptr := unsafe.Pointer(event)
	var ret int32
	x.nextEvent.call(unsafe.Pointer(&ret), unsafe.Pointer(&display), unsafe.Pointer(&ptr))
	runtime.KeepAlive(event)
}

// LookupKeysym returns the unshifted keysym of a key event.
func (x *xlib) LookupKeysym(event *xEvent) uint64 {
	ptr := unsafe.Pointer(event)
	var index int32
	var keysym uint64
	x.lookupKeysym.call(unsafe.Pointer(&keysym), unsafe.Pointer(&ptr), unsafe.Pointer(&index))
	runtime.KeepAlive(event)
	return keysym
}

// WindowSize reads width and height from XWindowAttributes.
func (x *xlib) WindowSize(display uintptr, window uint64) (int32, int32, bool) {
	var attribs [xWindowAttribsWords]uint64
	ptr := unsafe.Pointer(&attribs[0])
	var status int32
	x.getWindowAttributes.call(unsafe.Pointer(&status), unsafe.Pointer(&display), unsafe.Pointer(&window), unsafe.Pointer(&ptr))
	runtime.KeepAlive(&attribs)
	if status == 0 {
		return 0, 0, false
	}
	return int32(attribs[1]), int32(attribs[1] >> 32), true
}

// DetectableAutoRepeat stops the server from sending a release before every
// repeated press.
func (x *xlib) DetectableAutoRepeat(display uintptr) {
	detectable := int32(1)
	var supported int32
	supportedPtr := unsafe.Pointer(&supported)
	var ret int32
	x.detectableAutoRepeat.call(unsafe.Pointer(&ret), unsafe.Pointer(&display), unsafe.Pointer(&detectable), unsafe.Pointer(&supportedPtr))
}
