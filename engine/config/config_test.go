package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "auto", cfg.Renderer.Backend)
	assert.Equal(t, time.Duration(0), cfg.Renderer.FenceTimeout.Duration)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[window]
title = "Testbed"
width = 800

[renderer]
backend = "noop"
clear_color = [0.2, 0.4, 0.6, 1.0]
fence_timeout = "250ms"
`))
	require.NoError(t, err)

	assert.Equal(t, "Testbed", cfg.Window.Title)
	assert.Equal(t, uint32(800), cfg.Window.Width)
	assert.Equal(t, uint32(720), cfg.Window.Height)
	assert.Equal(t, "noop", cfg.Renderer.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Renderer.FenceTimeout.Duration)
	assert.Equal(t, gputypes.Color{R: 0.2, G: 0.4, B: 0.6, A: 1}, cfg.ClearColor())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, float64(60), cfg.Sim.TickRate)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"zero width", "[window]\nwidth = 0"},
		{"zero tick rate", "[sim]\ntick_rate = 0.0"},
		{"negative timeout", "[renderer]\nfence_timeout = \"-1s\""},
		{"clear color out of range", "[renderer]\nclear_color = [2.0, 0.0, 0.0, 1.0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse([]byte("[renderer]\nfence_timeout = \"soon\""))
	assert.Error(t, err)

	_, err = Parse([]byte("[window"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStringRoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Renderer.FenceTimeout.Duration = time.Second

	parsed, err := Parse([]byte(cfg.String()))
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}
