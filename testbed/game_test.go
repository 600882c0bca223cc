package testbed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/midnight/engine/core"
)

func TestTickSpawnsEntities(t *testing.T) {
	g := NewTestGame("")
	require.NoError(t, g.FnInitialize())

	ids := core.NewLocalIDs()
	for i := 0; i < 35; i++ {
		require.NoError(t, g.FnTick(ids, time.Millisecond))
	}

	s := g.state()
	assert.Equal(t, uint64(35), s.ticks)
	assert.Equal(t, uint64(3), s.spawned)
	assert.Equal(t, 35*time.Millisecond, s.simTime)
	require.Len(t, s.entities, 3)
	assert.Less(t, s.entities[0].Value(), s.entities[1].Value())
	assert.Less(t, s.entities[1].Value(), s.entities[2].Value())
	assert.NoError(t, g.FnShutdown())
}

func TestTickCapsLiveEntities(t *testing.T) {
	g := NewTestGame("")
	ids := core.NewLocalIDs()
	for i := 0; i < spawnEvery*(maxEntities+5); i++ {
		require.NoError(t, g.FnTick(ids, 0))
	}

	s := g.state()
	assert.Len(t, s.entities, maxEntities)
	assert.Equal(t, uint64(maxEntities+5), s.spawned)
	// The oldest five were despawned.
	assert.Equal(t, uint64(5), s.entities[0].Value())
}

func TestWatchConfigFollowsPath(t *testing.T) {
	assert.False(t, NewTestGame("").ApplicationConfig.WatchConfig)
	assert.True(t, NewTestGame("midnight.toml").ApplicationConfig.WatchConfig)
}
