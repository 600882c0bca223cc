package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShutdownToken(t *testing.T) {
	token := NewShutdownToken()
	assert.False(t, token.Signaled())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token.Signal()
		}()
	}
	wg.Wait()

	assert.True(t, token.Signaled())
}

func TestShutdownTokensAreIndependent(t *testing.T) {
	sim := NewShutdownToken()
	present := NewShutdownToken()

	present.Signal()

	assert.True(t, present.Signaled())
	assert.False(t, sim.Signaled())
}
