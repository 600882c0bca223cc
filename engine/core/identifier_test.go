package core

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateGlobalIDDistinctAcrossGoroutines(t *testing.T) {
	const workers = 8
	const perWorker = 1000

	results := make(chan GlobalID, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, ok := AllocateGlobalID()
				if !ok {
					t.Error("unexpected exhaustion")
					return
				}
				results <- id
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[GlobalID]struct{}, workers*perWorker)
	for id := range results {
		_, dup := seen[id]
		require.False(t, dup, "id %s handed out twice", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestAllocateGlobalIDMonotonic(t *testing.T) {
	a, ok := AllocateGlobalID()
	require.True(t, ok)
	b, ok := AllocateGlobalID()
	require.True(t, ok)
	assert.Greater(t, b.Value(), a.Value())
}

func TestAllocateGlobalIDExhaustionIsPermanent(t *testing.T) {
	saved := globalCounter.Load()
	t.Cleanup(func() { globalCounter.Store(saved) })

	globalCounter.Store(math.MaxUint64 - 2)

	id, ok := AllocateGlobalID()
	require.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64-2), id.Value())

	id, ok = AllocateGlobalID()
	require.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64-1), id.Value())

	for i := 0; i < 5; i++ {
		_, ok = AllocateGlobalID()
		assert.False(t, ok)
	}
	assert.Equal(t, uint64(math.MaxUint64), globalCounter.Load())
}

func TestLocalIDsDistinctWithinOwner(t *testing.T) {
	ids := NewLocalIDs()
	seen := make(map[LocalID]struct{})
	for i := 0; i < 10000; i++ {
		id, ok := ids.Allocate()
		require.True(t, ok)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestLocalIDsAreIndependentPerOwner(t *testing.T) {
	first := NewLocalIDs()
	second := NewLocalIDs()

	a, _ := first.Allocate()
	b, _ := second.Allocate()
	assert.Equal(t, uint64(0), a.Value())
	assert.Equal(t, uint64(0), b.Value())
}

func TestLocalIDsExhaustionIsPermanent(t *testing.T) {
	ids := &LocalIDs{next: math.MaxUint64 - 1}

	id, ok := ids.Allocate()
	require.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64-1), id.Value())

	for i := 0; i < 3; i++ {
		_, ok = ids.Allocate()
		assert.False(t, ok)
	}
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "g42", GlobalID(42).String())
	assert.Equal(t, "l7", LocalID(7).String())
}
