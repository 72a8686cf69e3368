// Package config loads Caliper's TOML configuration and watches it for
// changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chazu/caliper/pkg/geom"
	"github.com/chazu/caliper/pkg/obb"
	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration written as a string ("10s") in TOML.
type Duration struct {
	time.Duration
}

// MarshalText writes the duration in time.Duration string form.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a duration string such as "250ms".
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Server holds the HTTP listener settings.
type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Geometry holds the classification precision and optimiser caps.
type Geometry struct {
	Precision      float64 `toml:"precision"`
	MaxIterations  int     `toml:"max_iterations"`
	MaxEvaluations int     `toml:"max_evaluations"`
}

// Log holds the logger level.
type Log struct {
	Level string `toml:"level"`
}

// Config is the full configuration file.
type Config struct {
	Server   Server   `toml:"server"`
	Geometry Geometry `toml:"geometry"`
	Log      Log      `toml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
		},
		Geometry: Geometry{
			Precision:      geom.DefaultPrecision,
			MaxIterations:  obb.DefaultMaxIterations,
			MaxEvaluations: obb.DefaultMaxEvaluations,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := toml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ReadTimeout.Duration < 0 || c.Server.WriteTimeout.Duration < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	if c.Geometry.Precision < 0 {
		errs = append(errs, fmt.Errorf("geometry.precision must be >= 0, got %g", c.Geometry.Precision))
	}
	if c.Geometry.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("geometry.max_iterations must be > 0, got %d", c.Geometry.MaxIterations))
	}
	if c.Geometry.MaxEvaluations <= 0 {
		errs = append(errs, fmt.Errorf("geometry.max_evaluations must be > 0, got %d", c.Geometry.MaxEvaluations))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// OBBOptions returns the optimiser caps as obb options.
func (c *Config) OBBOptions() []obb.Option {
	return []obb.Option{
		obb.WithMaxIterations(c.Geometry.MaxIterations),
		obb.WithMaxEvaluations(c.Geometry.MaxEvaluations),
	}
}
