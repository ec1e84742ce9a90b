// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ava-labs/dininghall"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Setenv(LegacyTraceEnv, "")
	t.Setenv(EnvPrefix+"_TRACE_FILE", "")
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestDefault(t *testing.T) {
	cfg, err := Load(newViper(t))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	require.Equal(t, 20, cfg.Iterations)
	require.Equal(t, 10, cfg.Sleep.MinMs)
	require.Equal(t, 50, cfg.Sleep.MaxMs)
	require.Equal(t, 5*time.Second, cfg.Stress.Timeout)
	require.Equal(t, []int{2, 3, 10, 50}, cfg.Stress.Scenarios)
	require.Equal(t, []int{2, 3, 10}, cfg.Traces.Scenarios)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
students: 7
sleep:
  min_ms: 0
  max_ms: 0
trace:
  format: json
stress:
  runs: 3
  timeout: 250ms
  scenarios: [2, 5]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := newViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Students)
	require.Equal(t, "json", cfg.Trace.Format)
	require.Equal(t, 3, cfg.Stress.Runs)
	require.Equal(t, 250*time.Millisecond, cfg.Stress.Timeout)
	require.Equal(t, []int{2, 5}, cfg.Stress.Scenarios)
	require.Equal(t, dininghall.NoPause{}, cfg.Sleep.Pauser())
}

func TestLegacyTraceEnv(t *testing.T) {
	v := newViper(t)
	t.Setenv(LegacyTraceEnv, "run.log")

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, "run.log", cfg.Trace.File)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{name: "single student", mutate: func(c *Config) { c.Students = 1 }, field: "students"},
		{name: "no iterations", mutate: func(c *Config) { c.Iterations = 0 }, field: "iterations"},
		{name: "negative sleep", mutate: func(c *Config) { c.Sleep.MinMs = -1 }, field: "sleep.min_ms"},
		{name: "inverted sleep bounds", mutate: func(c *Config) { c.Sleep.MinMs = 20; c.Sleep.MaxMs = 10 }, field: "sleep.max_ms"},
		{name: "unknown trace format", mutate: func(c *Config) { c.Trace.Format = "xml" }, field: "trace.format"},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "loud" }, field: "log.level"},
		{name: "no stress runs", mutate: func(c *Config) { c.Stress.Runs = 0 }, field: "stress.runs"},
		{name: "no stress timeout", mutate: func(c *Config) { c.Stress.Timeout = 0 }, field: "stress.timeout"},
		{name: "serial stress", mutate: func(c *Config) { c.Stress.Parallel = 0 }, field: "stress.parallel"},
		{name: "lonely stress scenario", mutate: func(c *Config) { c.Stress.Scenarios = []int{2, 1} }, field: "stress.scenarios"},
		{name: "empty trace dir", mutate: func(c *Config) { c.Traces.Dir = "" }, field: "traces.dir"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			errs := cfg.Validate()
			require.Len(t, errs, 1)
			require.Equal(t, tc.field, errs[0].Field)
		})
	}

	require.Empty(t, Default().Validate())
}

func TestValidationErrors(t *testing.T) {
	cfg := Default()
	cfg.Students = 0
	cfg.Iterations = 0

	errs := ValidationErrors(cfg.Validate())
	require.Len(t, errs, 2)
	require.Contains(t, errs.Error(), "2 validation errors")
	require.Contains(t, errs.Error(), "students")
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	require.Equal(t, "/tmp/xdg/dininghall", ConfigDir())
	require.Equal(t, "/tmp/xdg/dininghall/config.yaml", ConfigFile())
}
