package loop

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/spaghettifunk/midnight/engine/core"
)

// TickFunc advances the simulation by one step. ids is owned by the
// simulation goroutine. A returned error stops the loop.
type TickFunc func(ids *core.LocalIDs, delta time.Duration) error

// StartSimulationLoop spawns the goroutine calling fn at sim.tick_rate Hz.
func (s *Supervisor) StartSimulationLoop(fn TickFunc) *Handle {
	h := newHandle(Simulation)
	s.register(h)
	go func(token *core.ShutdownToken) {
		h.finish(s.runSimulation(fn, token))
	}(h.token)
	return h
}

func (s *Supervisor) runSimulation(fn TickFunc, token *core.ShutdownToken) error {
	limiter := rate.NewLimiter(rate.Limit(s.cfg.Sim.TickRate), 1)
	ids := core.NewLocalIDs()
	clock := core.NewClock()
	clock.Start()

	core.LogInfo("Simulation loop started at %v ticks per second.", s.cfg.Sim.TickRate)
	last := clock.Elapsed()
	for !token.Signaled() {
		if err := limiter.Wait(context.Background()); err != nil {
			return err
		}
		clock.Update()
		now := clock.Elapsed()
		if err := fn(ids, now-last); err != nil {
			core.LogError("Simulation tick failed: %s", err)
			return err
		}
		last = now
		if s.ticks != nil {
			s.ticks.SimTick()
		}
	}
	core.LogInfo("Simulation loop stopped.")
	return nil
}
