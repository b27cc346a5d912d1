// Package config loads the starting parameters of a linkage session.
//
// Every field is optional. Omitted fields fall back to the defaults of the
// interactive program through the Get* accessors, so partial files are safe.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/cxd309/linkage-engine/internal/kinematics"
)

// Defaults used for omitted fields.
const (
	DefaultOA         = 1.0             // crank length
	DefaultAB         = 1.0             // rod length
	DefaultAMPerAB    = 0.5             // M halfway along AB
	DefaultPeriod     = 3 * time.Second // one revolution
	DefaultAutorun    = true
	DefaultTracePath  = false
	DefaultResolution = 500 // samples in the tabulated path
	DefaultFramerate  = 60  // ticks per second
)

// Config is the JSON shape of a session configuration.
type Config struct {
	OA         *float64 `json:"oa,omitempty"`
	AB         *float64 `json:"ab,omitempty"`
	AMPerAB    *float64 `json:"am_per_ab,omitempty"`
	Period     *string  `json:"period,omitempty"` // duration string like "3s"
	Autorun    *bool    `json:"autorun,omitempty"`
	TracePath  *bool    `json:"trace_path,omitempty"`
	Resolution *int     `json:"resolution,omitempty"` // samples in the tabulated path
	Framerate  *int     `json:"framerate,omitempty"`  // ticks per second while autorun
}

// Load reads a Config from a JSON file and validates it.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that are set.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if err := c.Linkage().Validate(); err != nil {
		return fmt.Errorf("linkage: %w", err)
	}
	if c.Period != nil && *c.Period != "" {
		d, err := time.ParseDuration(*c.Period)
		if err != nil {
			return fmt.Errorf("invalid period %q: %w", *c.Period, err)
		}
		if d < 0 {
			return fmt.Errorf("period must be non-negative, got %v", d)
		}
	}
	if c.Resolution != nil && *c.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %d", *c.Resolution)
	}
	if c.Framerate != nil && *c.Framerate <= 0 {
		return fmt.Errorf("framerate must be positive, got %d", *c.Framerate)
	}
	return nil
}

// GetOA returns the crank length or the default.
func (c *Config) GetOA() float64 {
	if c == nil || c.OA == nil {
		return DefaultOA
	}
	return *c.OA
}

// GetAB returns the rod length or the default.
func (c *Config) GetAB() float64 {
	if c == nil || c.AB == nil {
		return DefaultAB
	}
	return *c.AB
}

// GetAMPerAB returns the M interpolation ratio or the default.
func (c *Config) GetAMPerAB() float64 {
	if c == nil || c.AMPerAB == nil {
		return DefaultAMPerAB
	}
	return *c.AMPerAB
}

// Linkage assembles the configured linkage parameters.
func (c *Config) Linkage() kinematics.Linkage {
	return kinematics.Linkage{OA: c.GetOA(), AB: c.GetAB(), AMPerAB: c.GetAMPerAB()}
}

// GetPeriod parses and returns the period, or the default when unset or invalid.
func (c *Config) GetPeriod() time.Duration {
	if c == nil || c.Period == nil || *c.Period == "" {
		return DefaultPeriod
	}
	d, err := time.ParseDuration(*c.Period)
	if err != nil || d < 0 {
		return DefaultPeriod
	}
	return d
}

// GetAutorun returns the autorun flag or the default.
func (c *Config) GetAutorun() bool {
	if c == nil || c.Autorun == nil {
		return DefaultAutorun
	}
	return *c.Autorun
}

// GetTracePath returns the trace visibility flag or the default.
func (c *Config) GetTracePath() bool {
	if c == nil || c.TracePath == nil {
		return DefaultTracePath
	}
	return *c.TracePath
}

// GetResolution returns the tabulation resolution or the default.
func (c *Config) GetResolution() int {
	if c == nil || c.Resolution == nil || *c.Resolution <= 0 {
		return DefaultResolution
	}
	return *c.Resolution
}

// GetFramerate returns the tick rate or the default.
func (c *Config) GetFramerate() int {
	if c == nil || c.Framerate == nil || *c.Framerate <= 0 {
		return DefaultFramerate
	}
	return *c.Framerate
}

// FrameInterval returns the time between two ticks at the configured framerate.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(math.Round(float64(time.Second) / float64(c.GetFramerate())))
}
