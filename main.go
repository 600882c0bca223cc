/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/midnight/engine"
	"github.com/spaghettifunk/midnight/engine/core"
	"github.com/spaghettifunk/midnight/testbed"
)

const defaultConfigPath = "midnight.toml"

func main() {
	configPath := os.Getenv("MIDNIGHT_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			configPath = ""
		}
	}
	tb := testbed.NewTestGame(configPath)

	engine, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal("failed to create engine: %s", err)
	}

	if err := engine.Initialize(); err != nil {
		_ = engine.Shutdown()
		core.LogFatal("failed to initialize engine: %s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		sig := <-sigCh
		core.LogInfo("Received %s, shutting down.", sig)
		engine.RequestQuit()
	}()

	// run engine
	runErr := engine.Run()
	if err := engine.Shutdown(); err != nil {
		core.LogError("engine shutdown: %s", err)
	}
	if runErr != nil {
		core.LogFatal("engine stopped with an error: %s", runErr)
	}
}
