// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ava-labs/dininghall"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DININGHALL_STRESS_RUNS.
const EnvPrefix = "DININGHALL"

// LegacyTraceEnv is the older variable naming the trace file.
const LegacyTraceEnv = "DINING_LOG_FILE"

// Config represents the complete dininghall configuration
type Config struct {
	Students   int          `mapstructure:"students"`
	Iterations int          `mapstructure:"iterations"`
	Sleep      SleepConfig  `mapstructure:"sleep"`
	Trace      TraceConfig  `mapstructure:"trace"`
	Log        LogConfig    `mapstructure:"log"`
	Stress     StressConfig `mapstructure:"stress"`
	Traces     TracesConfig `mapstructure:"traces"`
}

// SleepConfig bounds the random time spent getting food and eating
type SleepConfig struct {
	MinMs int `mapstructure:"min_ms"`
	MaxMs int `mapstructure:"max_ms"`
}

// TraceConfig controls the optional event trace of a single run
type TraceConfig struct {
	// File is the trace destination; empty disables tracing
	File string `mapstructure:"file"`
	// Format is "text" or "json"
	Format string `mapstructure:"format"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error (trace and verbo map to debug)
	Level string `mapstructure:"level"`
}

// StressConfig controls the stress tester
type StressConfig struct {
	Runs       int           `mapstructure:"runs"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Iterations int           `mapstructure:"iterations"`
	Parallel   int           `mapstructure:"parallel"`
	Scenarios  []int         `mapstructure:"scenarios"`
}

// TracesConfig controls the trace generator
type TracesConfig struct {
	Dir        string        `mapstructure:"dir"`
	Scenarios  []int         `mapstructure:"scenarios"`
	Iterations int           `mapstructure:"iterations"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Students:   5,
		Iterations: 20,
		Sleep: SleepConfig{
			MinMs: int(dininghall.DefaultMinPause / time.Millisecond),
			MaxMs: int(dininghall.DefaultMaxPause / time.Millisecond),
		},
		Trace: TraceConfig{
			Format: "text",
		},
		Log: LogConfig{
			Level: "info",
		},
		Stress: StressConfig{
			Runs:       30,
			Timeout:    5 * time.Second,
			Iterations: 20,
			Parallel:   1,
			Scenarios:  []int{2, 3, 10, 50},
		},
		Traces: TracesConfig{
			Dir:        "trace_logs",
			Scenarios:  []int{2, 3, 10},
			Iterations: 5,
			Timeout:    10 * time.Second,
		},
	}
}

// Pauser returns the pauser described by the sleep bounds
func (c *SleepConfig) Pauser() dininghall.Pauser {
	if c.MaxMs == 0 {
		return dininghall.NoPause{}
	}
	return dininghall.RandomPauser{
		Min: time.Duration(c.MinMs) * time.Millisecond,
		Max: time.Duration(c.MaxMs) * time.Millisecond,
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("students", defaults.Students)
	v.SetDefault("iterations", defaults.Iterations)

	v.SetDefault("sleep.min_ms", defaults.Sleep.MinMs)
	v.SetDefault("sleep.max_ms", defaults.Sleep.MaxMs)

	v.SetDefault("trace.file", defaults.Trace.File)
	v.SetDefault("trace.format", defaults.Trace.Format)

	v.SetDefault("log.level", defaults.Log.Level)

	v.SetDefault("stress.runs", defaults.Stress.Runs)
	v.SetDefault("stress.timeout", defaults.Stress.Timeout)
	v.SetDefault("stress.iterations", defaults.Stress.Iterations)
	v.SetDefault("stress.parallel", defaults.Stress.Parallel)
	v.SetDefault("stress.scenarios", defaults.Stress.Scenarios)

	v.SetDefault("traces.dir", defaults.Traces.Dir)
	v.SetDefault("traces.scenarios", defaults.Traces.Scenarios)
	v.SetDefault("traces.iterations", defaults.Traces.Iterations)
	v.SetDefault("traces.timeout", defaults.Traces.Timeout)

	// DINING_LOG_FILE predates the DININGHALL_ prefix.
	_ = v.BindEnv("trace.file", EnvPrefix+"_TRACE_FILE", LegacyTraceEnv)
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dininghall")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dininghall"
	}
	return filepath.Join(home, ".config", "dininghall")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
