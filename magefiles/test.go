//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Packages that never link the GPU HAL or the window, so they build with cgo
// and can run under the race detector.
var racePackages = []string{
	"./engine/core/...",
	"./engine/config/...",
	"./engine/containers/...",
	"./engine/math/...",
	"./engine/metrics/...",
	"./engine/loop/...",
	"./engine/renderer",
	"./engine/renderer/gpu/...",
}

// Runs every test with the cgo setting the host's window and HAL need.
func (Test) All() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withEnv(cgoEnv()), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the tests that need no window or GPU. The wgpu bridge and the testbed
// link goffi, so they share the host's binary cgo setting.
func (Test) Headless() error {
	args := append([]string{"test"}, racePackages...)
	args = append(args, "./engine/renderer/wgpu/...", "./testbed/...")
	_, err := executeCmd("go", withArgs(args...), withEnv(cgoEnv()), withStream())
	return err
}

// Runs the goffi free packages with the race detector, which needs cgo.
func (Test) Race() error {
	args := append([]string{"test", "-race"}, racePackages...)
	_, err := executeCmd("go", withArgs(args...), withEnv("CGO_ENABLED=1"), withStream())
	return err
}
