// Package loop runs the presentation and simulation loops on their own
// goroutines and stops them cooperatively.
package loop

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/midnight/engine/config"
	"github.com/spaghettifunk/midnight/engine/core"
	"github.com/spaghettifunk/midnight/engine/renderer"
	"github.com/spaghettifunk/midnight/engine/renderer/gpu"
)

type Which uint8

const (
	Presentation Which = iota
	Simulation
)

func (w Which) String() string {
	switch w {
	case Presentation:
		return "presentation"
	case Simulation:
		return "simulation"
	default:
		return fmt.Sprintf("Which(%d)", uint8(w))
	}
}

// TickObserver is told about every completed simulation tick.
type TickObserver interface {
	SimTick()
}

type Option func(*Supervisor)

// WithObserver forwards frame pipeline measurements to o.
func WithObserver(o renderer.Observer) Option {
	return func(s *Supervisor) { s.observer = o }
}

func WithTickObserver(o TickObserver) Option {
	return func(s *Supervisor) { s.ticks = o }
}

// WithConfigUpdates makes the presentation loop apply configs received on
// updates between frames.
func WithConfigUpdates(updates <-chan *config.Config) Option {
	return func(s *Supervisor) { s.updates = updates }
}

// Handle tracks one running loop.
type Handle struct {
	which Which
	token *core.ShutdownToken
	done  chan struct{}
	err   error
}

func newHandle(which Which) *Handle {
	return &Handle{
		which: which,
		token: core.NewShutdownToken(),
		done:  make(chan struct{}),
	}
}

func (h *Handle) finish(err error) {
	h.err = err
	close(h.done)
}

// Wait blocks until the loop has exited and returns the error it exited with.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Done is closed once the loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Supervisor spawns the engine loops. Each loop gets its own shutdown token
// at spawn; nothing else is shared between them.
type Supervisor struct {
	backend  gpu.Backend
	cfg      *config.Config
	observer renderer.Observer
	ticks    TickObserver
	updates  <-chan *config.Config

	mu      sync.Mutex
	handles map[Which]*Handle
}

func NewSupervisor(backend gpu.Backend, cfg *config.Config, opts ...Option) *Supervisor {
	s := &Supervisor{
		backend: backend,
		cfg:     cfg,
		handles: make(map[Which]*Handle, 2),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Supervisor) register(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handles[h.which]; ok {
		core.LogWarn("A %s loop is already running, the new one replaces it for signaling.", h.which)
	}
	s.handles[h.which] = h
}

// SignalShutdown asks a loop to stop after its current iteration. It never
// blocks and never interrupts a frame or tick in progress.
func (s *Supervisor) SignalShutdown(which Which) {
	s.mu.Lock()
	h, ok := s.handles[which]
	s.mu.Unlock()
	if !ok {
		core.LogWarn("No %s loop to signal.", which)
		return
	}
	core.LogDebug("Signaling %s loop shutdown.", which)
	h.token.Signal()
}

// Join waits for the loop behind h to exit.
func (s *Supervisor) Join(h *Handle) error {
	err := h.Wait()
	s.mu.Lock()
	if s.handles[h.which] == h {
		delete(s.handles, h.which)
	}
	s.mu.Unlock()
	return err
}
