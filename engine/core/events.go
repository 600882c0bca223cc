package core

import (
	"errors"
	"sync"
)

// System internal event codes. Application should use codes beyond 255.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01
	// Keyboard key pressed. Data is a *KeyEvent.
	EVENT_CODE_KEY_PRESSED EventCode = 0x02
	// Keyboard key released. Data is a *KeyEvent.
	EVENT_CODE_KEY_RELEASED EventCode = 0x03
	// Resized/resolution changed from the OS. Data is a *SystemEvent.
	EVENT_CODE_RESIZED EventCode = 0x08
	// The configuration file changed on disk. Data is the new config value.
	EVENT_CODE_CONFIG_RELOADED EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type FnOnEvent func(context EventContext)

// Number of fired events that may be pending before EventFire drops new ones.
const eventQueueSize = 256

var ErrEventSystemNotInitialized = errors.New("event system not initialized")

type eventSystemState struct {
	mu         sync.RWMutex
	registered map[EventCode][]FnOnEvent
	queue      chan EventContext
}

var eventMu sync.Mutex
var eventState *eventSystemState

func EventSystemInitialize() bool {
	eventMu.Lock()
	defer eventMu.Unlock()
	if eventState != nil {
		return false
	}
	eventState = &eventSystemState{
		registered: make(map[EventCode][]FnOnEvent),
		queue:      make(chan EventContext, eventQueueSize),
	}
	return true
}

// EventSystemShutdown closes the queue, which ends ProcessEvents once the
// pending events are dispatched.
func EventSystemShutdown() error {
	eventMu.Lock()
	defer eventMu.Unlock()
	if eventState == nil {
		return ErrEventSystemNotInitialized
	}
	close(eventState.queue)
	eventState = nil
	return nil
}

func currentEventState() *eventSystemState {
	eventMu.Lock()
	defer eventMu.Unlock()
	return eventState
}

// EventRegister adds a listener for the given code. Listeners run on the
// goroutine executing ProcessEvents.
func EventRegister(code EventCode, onEvent FnOnEvent) error {
	s := currentEventState()
	if s == nil {
		return ErrEventSystemNotInitialized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered[code] = append(s.registered[code], onEvent)
	return nil
}

// EventFire queues an event for dispatch. It returns false when the event
// system is not running or the queue is full.
func EventFire(context EventContext) bool {
	eventMu.Lock()
	defer eventMu.Unlock()
	if eventState == nil {
		return false
	}
	select {
	case eventState.queue <- context:
		return true
	default:
		LogWarn("event queue full, dropping event %d", context.Type)
		return false
	}
}

// ProcessEvents dispatches queued events until EventSystemShutdown is called.
func ProcessEvents() {
	s := currentEventState()
	if s == nil {
		return
	}
	for context := range s.queue {
		s.mu.RLock()
		listeners := s.registered[context.Type]
		s.mu.RUnlock()
		for _, fn := range listeners {
			fn(context)
		}
	}
}
