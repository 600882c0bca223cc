package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/spaghettifunk/midnight/engine/config"
	"github.com/spaghettifunk/midnight/engine/core"
	"github.com/spaghettifunk/midnight/engine/loop"
	"github.com/spaghettifunk/midnight/engine/metrics"
	"github.com/spaghettifunk/midnight/engine/platform"
	"github.com/spaghettifunk/midnight/engine/renderer/wgpu"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything it owned
	EngineStageStopped
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	runID        string
	config       *config.Config

	window        *platform.Window
	watcher       *config.Watcher
	collector     *metrics.Collector
	metricsServer *metrics.Server
	supervisor    *loop.Supervisor

	quit     chan struct{}
	quitOnce sync.Once
}

// New loads the configuration and tags the logger with a fresh run id.
func New(g *Game) (*Engine, error) {
	if g.FnTick == nil {
		return nil, fmt.Errorf("game has no tick function")
	}
	appConfig := g.ApplicationConfig
	if appConfig == nil {
		appConfig = &ApplicationConfig{}
		g.ApplicationConfig = appConfig
	}

	runID := uuid.NewString()
	core.SetRunID(runID)

	cfg := config.Default()
	if appConfig.ConfigPath != "" {
		loaded, err := config.Load(appConfig.ConfigPath)
		if err != nil {
			core.LogError("%s", err)
			return nil, err
		}
		cfg = loaded
	}
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		core.LogWarn("Ignoring log level %q: %s", cfg.Log.Level, err)
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		runID:        runID,
		config:       cfg,
		quit:         make(chan struct{}),
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	// initialize events
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}

	// register some events
	if err := core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent); err != nil {
		return err
	}
	if err := core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e.onKey); err != nil {
		return err
	}
	if err := core.EventRegister(core.EVENT_CODE_CONFIG_RELOADED, e.onEvent); err != nil {
		return err
	}

	window, err := platform.NewWindow(e.config.Window)
	if err != nil {
		return err
	}
	e.window = window

	backend, err := wgpu.NewBackend(e.config.Renderer.Backend)
	if err != nil {
		core.LogError("%s", err)
		return err
	}
	if strings.EqualFold(backend.Name(), "vulkan") {
		if err := e.window.ProbeVulkan(); err != nil {
			core.LogWarn("Vulkan probe failed: %s", err)
		}
	}

	e.collector = metrics.NewCollector(e.runID)
	if addr := e.config.Metrics.Address; addr != "" {
		server, err := e.collector.Serve(addr)
		if err != nil {
			core.LogError("%s", err)
			return err
		}
		e.metricsServer = server
	}

	opts := []loop.Option{
		loop.WithObserver(e.collector),
		loop.WithTickObserver(e.collector),
	}
	if e.gameInstance.ApplicationConfig.WatchConfig && e.gameInstance.ApplicationConfig.ConfigPath != "" {
		watcher, err := config.NewWatcher(e.gameInstance.ApplicationConfig.ConfigPath, e.config)
		if err != nil {
			core.LogError("%s", err)
			return err
		}
		e.watcher = watcher
		opts = append(opts, loop.WithConfigUpdates(watcher.Subscribe()))
		go forwardReloads(watcher.Subscribe())
	}
	e.supervisor = loop.NewSupervisor(backend, e.config, opts...)

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

// forwardReloads turns watcher updates into events for the listeners on the
// event goroutine.
func forwardReloads(updates <-chan *config.Config) {
	for cfg := range updates {
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_CONFIG_RELOADED,
			Data: cfg,
		})
	}
}

// Run pumps window events on the calling goroutine, which must be the main
// one, until a quit is requested or the presentation loop exits. The loops
// are then stopped in order: presentation first, simulation second.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine not initialized")
	}
	handle, err := e.window.Handle()
	if err != nil {
		core.LogError("%s", err)
		return err
	}

	// start goroutine to process all the events around the engine
	go core.ProcessEvents()

	e.currentStage = EngineStageRunning
	presentation := e.supervisor.StartPresentationLoop(handle)
	simulation := e.supervisor.StartSimulationLoop(e.gameInstance.FnTick)

	running := true
	for running {
		if !e.window.PumpMessages() {
			running = false
		}
		select {
		case <-e.quit:
			running = false
		case <-presentation.Done():
			core.LogWarn("Presentation loop exited, shutting down.")
			running = false
		case <-simulation.Done():
			core.LogWarn("Simulation loop exited, shutting down.")
			running = false
		default:
		}
	}

	e.currentStage = EngineStageShuttingDown
	e.supervisor.SignalShutdown(loop.Presentation)
	presentationErr := e.supervisor.Join(presentation)
	if presentationErr != nil {
		core.LogError("Presentation loop: %s", presentationErr)
	}
	e.supervisor.SignalShutdown(loop.Simulation)
	simulationErr := e.supervisor.Join(simulation)
	if simulationErr != nil {
		core.LogError("Simulation loop: %s", simulationErr)
	}
	return errors.Join(presentationErr, simulationErr)
}

// RequestQuit makes Run return after stopping the loops. Safe from any
// goroutine.
func (e *Engine) RequestQuit() {
	e.quitOnce.Do(func() {
		close(e.quit)
		if e.window != nil {
			e.window.Wake()
		}
	})
}

func (e *Engine) Shutdown() error {
	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	if e.metricsServer != nil {
		errs = append(errs, e.metricsServer.Close())
	}
	if err := core.EventSystemShutdown(); err != nil && !errors.Is(err, core.ErrEventSystemNotInitialized) {
		errs = append(errs, err)
	}
	if e.window != nil {
		errs = append(errs, e.window.Shutdown())
	}
	e.currentStage = EngineStageStopped
	if e.collector != nil {
		core.LogInfo("Engine stopped at %.1f FPS, %.2fms average frame time.", e.collector.FPS(), e.collector.FrameTime())
	}
	return errors.Join(errs...)
}

func (e *Engine) onEvent(context core.EventContext) {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.RequestQuit()
	case core.EVENT_CODE_CONFIG_RELOADED:
		cfg, ok := context.Data.(*config.Config)
		if !ok {
			core.LogError("wrong event associated with the event type `%d`", context.Type)
			return
		}
		if cfg.Sim.TickRate != e.config.Sim.TickRate || cfg.Window != e.config.Window {
			core.LogWarn("Window and sim settings in the reloaded config apply on restart.")
		}
	}
}

func (e *Engine) onKey(context core.EventContext) {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_APPLICATION_QUIT,
		})
		return
	}
	core.LogDebug("'%c' key pressed in window.", rune(ke.KeyCode))
}
