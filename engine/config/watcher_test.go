package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
}

// receiveTickRate waits for a reload carrying the given tick rate. A write
// may surface as several events, some of which see a truncated file.
func receiveTickRate(t *testing.T, ch <-chan *Config, rate float64) *Config {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-ch:
			if cfg.Sim.TickRate == rate {
				return cfg
			}
		case <-deadline:
			t.Fatalf("no config reload with tick rate %v received", rate)
			return nil
		}
	}
}

func TestWatcherPublishesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "midnight.toml")
	writeConfig(t, path, "[sim]\ntick_rate = 30.0\n")
	initial, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	updates := w.Subscribe()

	writeConfig(t, path, "[sim]\ntick_rate = 120.0\n")

	cfg := receiveTickRate(t, updates, 120)
	assert.Eventually(t, func() bool {
		return w.Current().Sim.TickRate == 120
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, float64(120), cfg.Sim.TickRate)
}

func TestWatcherIgnoresInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "midnight.toml")
	writeConfig(t, path, "[sim]\ntick_rate = 30.0\n")
	initial, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	updates := w.Subscribe()

	writeConfig(t, path, "[sim]\ntick_rate = -1.0\n")
	writeConfig(t, path, "[sim]\ntick_rate = 45.0\n")

	cfg := receiveTickRate(t, updates, 45)
	assert.Equal(t, float64(45), cfg.Sim.TickRate)
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "midnight.toml")
	writeConfig(t, path, "")

	w, err := NewWatcher(path, Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	updates := w.Subscribe()

	writeConfig(t, filepath.Join(dir, "other.toml"), "[sim]\ntick_rate = 5.0\n")

	select {
	case cfg := <-updates:
		t.Fatalf("unexpected reload:\n%s", cfg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherCloseClosesSubscriptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "midnight.toml")
	writeConfig(t, path, "")

	w, err := NewWatcher(path, Default())
	require.NoError(t, err)
	updates := w.Subscribe()

	require.NoError(t, w.Close())
	_, ok := <-updates
	assert.False(t, ok)
	assert.Error(t, w.Close())
}
