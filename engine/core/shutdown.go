package core

import "sync/atomic"

// ShutdownToken is a cooperative stop flag. The owner of a loop receives
// it at spawn time and checks Signaled at the top of every iteration; any
// other party may call Signal. Signaling never interrupts work in progress.
type ShutdownToken struct {
	flag atomic.Bool
}

func NewShutdownToken() *ShutdownToken {
	return &ShutdownToken{}
}

func (t *ShutdownToken) Signal() {
	t.flag.Store(true)
}

func (t *ShutdownToken) Signaled() bool {
	return t.flag.Load()
}
