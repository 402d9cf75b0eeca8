// Package config loads the qtermsim configuration file and validates the
// combined result of file values and command-line overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"qtermsim/statevector"
)

// Config is the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Simulator SimulatorConfig `yaml:"simulator"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text, json, logfmt
	File       string `yaml:"file"`   // empty logs to stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// SimulatorConfig controls the engine and the facade around it.
type SimulatorConfig struct {
	MaxQubits         int     `yaml:"max_qubits"`
	Workers           int     `yaml:"workers"`
	ParallelThreshold int     `yaml:"parallel_threshold"`
	NormTolerance     float64 `yaml:"norm_tolerance"`
	Seed              uint64  `yaml:"seed"` // 0 picks a random seed
	CacheSize         int     `yaml:"cache_size"`
	Shots             int     `yaml:"shots"`
	Ordering          string  `yaml:"ordering"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 14,
			Compress:   true,
		},
		Simulator: SimulatorConfig{
			MaxQubits:         24,
			Workers:           runtime.GOMAXPROCS(0),
			ParallelThreshold: 1 << 14,
			NormTolerance:     1e-9,
			CacheSize:         128,
			Shots:             1024,
			Ordering:          "littleendian",
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads YAML from r over the defaults.
func Decode(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "logfmt":
	default:
		errs = append(errs, fmt.Errorf("log.format: must be text, json or logfmt, got %q", c.Log.Format))
	}

	s := c.Simulator
	if s.MaxQubits < 1 || s.MaxQubits > statevector.HardMaxQubits {
		errs = append(errs, fmt.Errorf("simulator.max_qubits: must be in [1, %d], got %d", statevector.HardMaxQubits, s.MaxQubits))
	}
	if s.Workers < 1 {
		errs = append(errs, fmt.Errorf("simulator.workers: must be positive, got %d", s.Workers))
	}
	if s.ParallelThreshold < 1 {
		errs = append(errs, fmt.Errorf("simulator.parallel_threshold: must be positive, got %d", s.ParallelThreshold))
	}
	if s.NormTolerance <= 0 {
		errs = append(errs, fmt.Errorf("simulator.norm_tolerance: must be positive, got %g", s.NormTolerance))
	}
	if s.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("simulator.cache_size: must not be negative, got %d", s.CacheSize))
	}
	if s.Shots < 1 {
		errs = append(errs, fmt.Errorf("simulator.shots: must be positive, got %d", s.Shots))
	}
	switch s.Ordering {
	case "", "littleendian", "bigendian":
	default:
		errs = append(errs, fmt.Errorf("simulator.ordering: must be littleendian or bigendian, got %q", s.Ordering))
	}

	return errors.Join(errs...)
}
