package renderer

import (
	"errors"
	"fmt"
)

var (
	ErrAcquire            = errors.New("failed to acquire surface texture")
	ErrPresent            = errors.New("failed to present surface texture")
	ErrRecord             = errors.New("failed to record frame")
	ErrFenceTimeout       = errors.New("timed out waiting for frame fence")
	ErrPipelineNotRunning = errors.New("frame pipeline is not running")
)

type InitErrorKind uint8

const (
	InitInstance InitErrorKind = iota
	InitSurface
	InitNoAdapter
	InitNoSurfaceCapabilities
	InitDeviceOpen
	InitSurfaceConfigure
	InitFrameSlot
)

func (k InitErrorKind) String() string {
	switch k {
	case InitInstance:
		return "instance creation failed"
	case InitSurface:
		return "surface creation failed"
	case InitNoAdapter:
		return "no suitable adapter found"
	case InitNoSurfaceCapabilities:
		return "surface capabilities unavailable"
	case InitDeviceOpen:
		return "device open failed"
	case InitSurfaceConfigure:
		return "surface configuration failed"
	case InitFrameSlot:
		return "frame slot creation failed"
	default:
		return fmt.Sprintf("InitErrorKind(%d)", uint8(k))
	}
}

// InitError aborts pipeline construction. errors.Is matches on Kind, so
// callers can test against the Err* values below.
type InitError struct {
	Kind InitErrorKind
	Err  error
}

var (
	ErrNoAdapter             = &InitError{Kind: InitNoAdapter}
	ErrNoSurfaceCapabilities = &InitError{Kind: InitNoSurfaceCapabilities}
	ErrDeviceOpen            = &InitError{Kind: InitDeviceOpen}
	ErrSurfaceConfigure      = &InitError{Kind: InitSurfaceConfigure}
)

func (e *InitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("frame pipeline init: %s: %v", e.Kind, e.Err)
	}
	return "frame pipeline init: " + e.Kind.String()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

func (e *InitError) Is(target error) bool {
	t, ok := target.(*InitError)
	return ok && t.Kind == e.Kind
}
