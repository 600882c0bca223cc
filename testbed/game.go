package testbed

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/midnight/engine"
	"github.com/spaghettifunk/midnight/engine/core"
)

const (
	// A new entity is spawned every spawnEvery ticks.
	spawnEvery = 10
	// The oldest entity is despawned past this many live ones.
	maxEntities = 64
	// Ticks between two status lines.
	reportEvery = 600
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	sessionID core.GlobalID
	entities  []core.LocalID
	spawned   uint64
	ticks     uint64
	simTime   time.Duration
}

func NewTestGame(configPath string) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				ConfigPath:  configPath,
				WatchConfig: configPath != "",
			},
			State: &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnTick = tg.Tick
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	id, ok := core.AllocateGlobalID()
	if !ok {
		return core.ErrIDExhausted
	}
	g.state().sessionID = id
	core.LogInfo("Testbed session %s initialized.", id)
	return nil
}

// Tick runs on the simulation goroutine, which owns ids.
func (g *TestGame) Tick(ids *core.LocalIDs, delta time.Duration) error {
	s := g.state()
	s.ticks++
	s.simTime += delta

	if s.ticks%spawnEvery == 0 {
		id, ok := ids.Allocate()
		if !ok {
			return fmt.Errorf("spawning entity: %w", core.ErrIDExhausted)
		}
		s.entities = append(s.entities, id)
		s.spawned++
		if len(s.entities) > maxEntities {
			s.entities = s.entities[1:]
		}
	}

	if s.ticks%reportEvery == 0 {
		core.LogInfo("Tick %d (%s simulated): %d live entities, %d spawned.", s.ticks, s.simTime.Round(time.Millisecond), len(s.entities), s.spawned)
	}
	return nil
}

func (g *TestGame) Shutdown() error {
	s := g.state()
	core.LogInfo("Testbed session %s ran %d ticks and spawned %d entities.", s.sessionID, s.ticks, s.spawned)
	return nil
}
