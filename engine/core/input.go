package core

import "sync"

// Key code definitions
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_0         KeyCode = 0x30
	KEY_9         KeyCode = 0x39
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_Z         KeyCode = 0x5A

	KEYS_MAX_KEYS KeyCode = 0xFF
)

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

type inputState struct {
	mu               sync.RWMutex
	keyboardCurrent  KeyboardState
	keyboardPrevious KeyboardState
}

var input = &inputState{}

// InputUpdate copies the current state into the previous one. Call it once
// per frame after every input has been processed.
func InputUpdate() {
	input.mu.Lock()
	defer input.mu.Unlock()
	input.keyboardPrevious = input.keyboardCurrent
}

func InputIsKeyDown(key KeyCode) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	input.mu.RLock()
	defer input.mu.RUnlock()
	return input.keyboardCurrent.Keys[key]
}

func InputWasKeyDown(key KeyCode) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	input.mu.RLock()
	defer input.mu.RUnlock()
	return input.keyboardPrevious.Keys[key]
}

// InputProcessKey records a key transition and fires the matching key event.
func InputProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS {
		return
	}
	input.mu.Lock()
	changed := input.keyboardCurrent.Keys[key] != pressed
	input.keyboardCurrent.Keys[key] = pressed
	input.mu.Unlock()

	// Only handle this if the state actually changed.
	if !changed {
		return
	}
	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	EventFire(EventContext{
		Type: code,
		Data: &KeyEvent{
			KeyCode: key,
		},
	})
}
