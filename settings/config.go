package settings

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/liifit/logging"
	"github.com/katalvlaran/liifit/signal"
)

// Fit modes.
const (
	ModeTemperature = "temperature"
	ModeIntensity   = "intensity"
)

// MetricsConfig toggles the Prometheus recorder.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace" default:"liifit" validate:"required"`
	Listen    string `yaml:"listen"` // e.g. ":9090"; empty disables the HTTP endpoint
}

// OutputConfig names result destinations.
type OutputConfig struct {
	Path    string `yaml:"path"`
	PlotDir string `yaml:"plot_dir"`
}

// SimConfig drives a forward simulation.
type SimConfig struct {
	Samples int     `yaml:"samples" default:"200" validate:"gte=1"`
	Dt      float64 `yaml:"dt" default:"5e-09" validate:"gt=0"`
	Start   float64 `yaml:"start"`
}

// Config is a complete run file.
type Config struct {
	Logging  logging.Config   `yaml:"logging"`
	Metrics  MetricsConfig    `yaml:"metrics"`
	Mode     string           `yaml:"mode" default:"temperature" validate:"oneof=temperature intensity"`
	Registry string           `yaml:"registry"` // extra materials/gases YAML
	Modeling ModelingSettings `yaml:"modeling"`
	Fit      FitSettings      `yaml:"fit"`
	Numeric  NumericSettings  `yaml:"numeric"`
	Window   *signal.Window   `yaml:"window"`
	Sim      SimConfig        `yaml:"sim"`
	Output   OutputConfig     `yaml:"output"`
}

// Parse decodes a run file, applies defaults and validates it. An empty
// fit section gets DefaultFitSettings.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalid, err)
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("%w: defaults: %w", ErrInvalid, err)
	}
	if len(cfg.Fit.Params) == 0 {
		cfg.Fit = DefaultFitSettings()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load reads and parses a run file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}

	return Parse(raw)
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Numeric.Validate(); err != nil {
		return err
	}
	if err := c.Fit.Validate(); err != nil {
		return fmt.Errorf("%w: fit: %w", ErrInvalid, err)
	}
	if c.Window != nil && !(c.Window.End > c.Window.Begin) {
		return fmt.Errorf("%w: window [%g,%g)", ErrInvalid, c.Window.Begin, c.Window.End)
	}

	return nil
}
