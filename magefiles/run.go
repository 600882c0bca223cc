//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds and runs the testbed with midnight.toml.
func (Run) Testbed() error {
	mg.Deps(Build.Testbed)
	fmt.Println("Run testbed...")
	if _, err := executeCmd("bin/testbed", withEnv("MIDNIGHT_CONFIG=midnight.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
