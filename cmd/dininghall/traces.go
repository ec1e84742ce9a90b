// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/ava-labs/dininghall/trace"
	"github.com/spf13/cobra"
)

var tracesCmd = &cobra.Command{
	Use:   "traces",
	Short: "Write one trace file per scenario",
	Long: `Run one traced simulation per population in traces.scenarios and write
trace_<students>_students.txt (or .jsonl) into traces.dir.`,
	Args: cobra.NoArgs,
	RunE: runTraces,
}

var tracesFlags = map[string]string{
	"dir":       "traces.dir",
	"scenarios": "traces.scenarios",
	"format":    "trace.format",
}

func init() {
	tracesCmd.Flags().String("dir", "", "output directory")
	tracesCmd.Flags().IntSlice("scenarios", nil, "student populations to trace")
	tracesCmd.Flags().String("format", "", "trace format: text or json")

	rootCmd.AddCommand(tracesCmd)
}

func runTraces(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, tracesFlags); err != nil {
		return err
	}
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	format, err := trace.ParseFormat(cfg.Trace.Format)
	if err != nil {
		return err
	}

	generated, err := trace.Generate(trace.GenerateConfig{
		Dir:        cfg.Traces.Dir,
		Scenarios:  cfg.Traces.Scenarios,
		Iterations: cfg.Traces.Iterations,
		Format:     format,
		Timeout:    cfg.Traces.Timeout,
		Pauser:     cfg.Sleep.Pauser(),
		Logger:     logger,
	})

	out := cmd.OutOrStdout()
	for _, g := range generated {
		if g.Err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", g.Path, g.Err)
			continue
		}
		fmt.Fprintf(out, "ok   %s (%d meals, %d aborted)\n", g.Path, g.Result.Meals(), g.Result.Aborted())
	}
	return err
}
