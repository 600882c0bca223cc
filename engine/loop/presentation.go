package loop

import (
	"errors"
	"runtime"

	"github.com/spaghettifunk/midnight/engine/config"
	"github.com/spaghettifunk/midnight/engine/core"
	"github.com/spaghettifunk/midnight/engine/renderer"
	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

// StartPresentationLoop spawns the goroutine owning the frame pipeline. The
// goroutine stays locked to one OS thread for its whole life.
func (s *Supervisor) StartPresentationLoop(window gpu.WindowHandle) *Handle {
	h := newHandle(Presentation)
	s.register(h)
	go func(token *core.ShutdownToken) {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		h.finish(s.runPresentation(window, token))
	}(h.token)
	return h
}

func (s *Supervisor) runPresentation(window gpu.WindowHandle, token *core.ShutdownToken) error {
	var opts []renderer.Option
	if s.observer != nil {
		opts = append(opts, renderer.WithObserver(s.observer))
	}
	pipeline, err := renderer.NewFramePipeline(s.backend, window, renderer.PipelineConfig{
		ClearColor:   s.cfg.ClearColor(),
		FenceTimeout: s.cfg.Renderer.FenceTimeout.Duration,
		Debug:        s.cfg.Renderer.Debug,
	}, opts...)
	if err != nil {
		return err
	}
	core.LogInfo("Presentation loop started.")

	updates := s.updates
	var frameErr error
	for !token.Signaled() {
		updates = applyConfigUpdates(pipeline, updates)
		if err := pipeline.RenderFrame(); err != nil {
			core.LogError("Render frame failed, stopping presentation: %s", err)
			frameErr = err
			break
		}
	}

	if err := pipeline.Shutdown(); err != nil {
		return errors.Join(frameErr, err)
	}
	core.LogInfo("Presentation loop stopped.")
	return frameErr
}

// applyConfigUpdates applies a pending config without blocking. It returns
// nil once updates is closed.
func applyConfigUpdates(pipeline *renderer.FramePipeline, updates <-chan *config.Config) <-chan *config.Config {
	if updates == nil {
		return nil
	}
	select {
	case cfg, ok := <-updates:
		if !ok {
			return nil
		}
		pipeline.SetClearColor(cfg.ClearColor())
		if err := core.SetLogLevel(cfg.Log.Level); err != nil {
			core.LogWarn("Ignoring log level %q: %s", cfg.Log.Level, err)
		}
		core.LogDebug("Applied reloaded config to the presentation loop.")
	default:
	}
	return updates
}
