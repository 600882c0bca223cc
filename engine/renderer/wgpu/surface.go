package wgpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/spaghettifunk/midnight/engine/core"
	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

var ErrAcquireTimeout = errors.New("no surface image became available")

type Surface struct {
	raw hal.Surface
}

func (s *Surface) Configure(device gpu.Device, config *gpu.SurfaceConfiguration) error {
	// Image count is chosen by the HAL from the present mode.
	core.LogDebug("Configuring surface for %d images.", config.SwapChainSize)
	return s.raw.Configure(device.(*Device).raw, &hal.SurfaceConfiguration{
		Width:       config.Width,
		Height:      config.Height,
		Format:      config.Format,
		Usage:       config.Usage,
		PresentMode: config.PresentMode,
		AlphaMode:   config.AlphaMode,
	})
}

func (s *Surface) Unconfigure(device gpu.Device) {
	s.raw.Unconfigure(device.(*Device).raw)
}

// AcquireTexture retries while the HAL reports that no image is ready yet.
// A zero timeout retries without bound.
func (s *Surface) AcquireTexture(timeout time.Duration) (*gpu.AcquiredSurfaceTexture, error) {
	var acquired *hal.AcquiredSurfaceTexture
	ok, err := poll(timeout, func() (bool, error) {
		var err error
		acquired, err = s.raw.AcquireTexture(nil)
		if errors.Is(err, hal.ErrNotReady) || errors.Is(err, hal.ErrTimeout) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w within %s", ErrAcquireTimeout, timeout)
	}
	return &gpu.AcquiredSurfaceTexture{
		Texture:    acquired.Texture,
		Suboptimal: acquired.Suboptimal,
	}, nil
}

func (s *Surface) DiscardTexture(texture gpu.SurfaceTexture) {
	s.raw.DiscardTexture(texture.(hal.SurfaceTexture))
}
