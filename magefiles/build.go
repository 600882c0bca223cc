//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles every engine package.
func (Build) Engine() error {
	if _, err := executeCmd("go", withArgs("build", "./engine/..."), withEnv(cgoEnv()), withStream()); err != nil {
		return err
	}
	return nil
}

// Builds the testbed binary into bin/.
func (Build) Testbed() error {
	mg.Deps(Build.Engine)
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/testbed", "."), withEnv(cgoEnv()), withStream()); err != nil {
		return err
	}
	return nil
}
