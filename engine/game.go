package engine

import (
	"github.com/spaghettifunk/midnight/engine/loop"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnTick            loop.TickFunc
	FnShutdown        Shutdown
}

type Initialize func() error
type Shutdown func() error
