package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/pelletier/go-toml/v2"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Log      LogConfig      `toml:"log"`
	Renderer RendererConfig `toml:"renderer"`
	Sim      SimConfig      `toml:"sim"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

type WindowConfig struct {
	// The application name used in windowing.
	Title string `toml:"title"`
	// Window starting position x axis.
	X int32 `toml:"x"`
	// Window starting position y axis.
	Y int32 `toml:"y"`
	// Window starting width.
	Width uint32 `toml:"width"`
	// Window starting height.
	Height uint32 `toml:"height"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type RendererConfig struct {
	// Graphics backend: auto, vulkan, metal, dx12, gl or noop.
	Backend string `toml:"backend"`
	// RGBA clear color, each component in [0, 1].
	ClearColor   [4]float64 `toml:"clear_color"`
	FenceTimeout Duration   `toml:"fence_timeout"`
	Debug        bool       `toml:"debug"`
}

type SimConfig struct {
	// Simulation ticks per second.
	TickRate float64 `toml:"tick_rate"`
}

type MetricsConfig struct {
	// Address to serve Prometheus metrics on. Empty disables the endpoint.
	Address string `toml:"address"`
}

// Duration is a time.Duration read from strings such as "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Midnight",
			X:      100,
			Y:      100,
			Width:  1280,
			Height: 720,
		},
		Log: LogConfig{
			Level: "info",
		},
		Renderer: RendererConfig{
			Backend:    "auto",
			ClearColor: [4]float64{0.1, 0.1, 0.15, 1},
		},
		Sim: SimConfig{
			TickRate: 60,
		},
	}
}

// Load reads a TOML file on top of the defaults. Keys missing from the file
// keep their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("%w: sim tick_rate must be positive, got %v", ErrInvalidConfig, c.Sim.TickRate)
	}
	if c.Renderer.FenceTimeout.Duration < 0 {
		return fmt.Errorf("%w: negative renderer fence_timeout", ErrInvalidConfig)
	}
	for _, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: clear_color component %v out of [0, 1]", ErrInvalidConfig, v)
		}
	}
	return nil
}

func (c *Config) ClearColor() gputypes.Color {
	cc := c.Renderer.ClearColor
	return gputypes.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}
}

func (c *Config) String() string {
	data, err := toml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(data)
}
