// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ava-labs/dininghall"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// GenerateConfig describes a batch of logged simulations, one per scenario.
type GenerateConfig struct {
	Dir        string
	Scenarios  []int
	Iterations int
	Format     Format
	Timeout    time.Duration
	Pauser     dininghall.Pauser
	Logger     dininghall.Logger
}

// Generated is the outcome of one logged simulation.
type Generated struct {
	Students int
	Path     string
	Result   dininghall.Result
	Err      error
}

// Generate runs every scenario with a FileSink attached and writes the traces as
// trace_<students>_students.<ext> into Dir. A scenario that fails or times out does not
// stop the others; its error is reported in its Generated entry and in the returned error.
func Generate(cfg GenerateConfig) ([]Generated, error) {
	if cfg.Logger == nil {
		cfg.Logger = dininghall.NoOpLogger{}
	}
	if cfg.Format == "" {
		cfg.Format = FormatText
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed creating trace directory %s: %w", cfg.Dir, err)
	}

	var (
		generated []Generated
		errs      error
	)
	for _, students := range cfg.Scenarios {
		path := filepath.Join(cfg.Dir, fmt.Sprintf("trace_%d_students%s", students, cfg.Format.Extension()))
		cfg.Logger.Info("Generating trace", zap.Int("students", students), zap.String("path", path))

		res, err := generateOne(cfg, students, path)
		if err != nil {
			cfg.Logger.Warn("Trace generation failed", zap.Int("students", students), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("scenario with %d students: %w", students, err))
		}
		generated = append(generated, Generated{Students: students, Path: path, Result: res, Err: err})
	}

	return generated, errs
}

func generateOne(cfg GenerateConfig, students int, path string) (dininghall.Result, error) {
	sink, err := OpenFile(path, cfg.Format)
	if err != nil {
		return dininghall.Result{}, err
	}

	sim, err := dininghall.NewSimulation(dininghall.SimulationConfig{
		Students:   students,
		Iterations: cfg.Iterations,
		Pauser:     cfg.Pauser,
		Sink:       sink,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return dininghall.Result{}, multierr.Append(err, sink.Close())
	}

	var res dininghall.Result
	if cfg.Timeout > 0 {
		res, err = sim.RunWithTimeout(cfg.Timeout)
	} else {
		res, err = sim.Run()
	}
	// Abandoned students of a timed out run get ErrClosed from the sink from now on.
	return res, multierr.Append(err, sink.Close())
}
