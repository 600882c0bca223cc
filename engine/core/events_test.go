package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startEvents(t *testing.T) {
	t.Helper()
	require.True(t, EventSystemInitialize())
	done := make(chan struct{})
	go func() {
		ProcessEvents()
		close(done)
	}()
	t.Cleanup(func() {
		_ = EventSystemShutdown()
		<-done
	})
}

func TestEventFireDispatchesToListeners(t *testing.T) {
	startEvents(t)

	got := make(chan EventContext, 1)
	require.NoError(t, EventRegister(EVENT_CODE_APPLICATION_QUIT, func(ctx EventContext) {
		got <- ctx
	}))

	assert.True(t, EventFire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}))

	select {
	case ctx := <-got:
		assert.Equal(t, EVENT_CODE_APPLICATION_QUIT, ctx.Type)
	case <-time.After(time.Second):
		t.Fatal("listener was not called")
	}
}

func TestEscapeKeyFiresPressedEvent(t *testing.T) {
	startEvents(t)

	got := make(chan KeyCode, 1)
	require.NoError(t, EventRegister(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) {
		got <- ctx.Data.(*KeyEvent).KeyCode
	}))

	InputProcessKey(KEY_ESCAPE, true)
	t.Cleanup(func() { InputProcessKey(KEY_ESCAPE, false) })

	select {
	case key := <-got:
		assert.Equal(t, KEY_ESCAPE, key)
	case <-time.After(time.Second):
		t.Fatal("key event was not dispatched")
	}
	assert.True(t, InputIsKeyDown(KEY_ESCAPE))
}

func TestEventSystemNotInitialized(t *testing.T) {
	assert.False(t, EventFire(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.ErrorIs(t, EventRegister(EVENT_CODE_RESIZED, func(EventContext) {}), ErrEventSystemNotInitialized)
	assert.ErrorIs(t, EventSystemShutdown(), ErrEventSystemNotInitialized)
}
