// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"strconv"

	"github.com/ava-labs/dininghall"
	"github.com/ava-labs/dininghall/trace"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run [students]",
	Short: "Run one simulation",
	Long: `Run one simulation with the given number of students (default from config).

With trace.file set, through --trace, DININGHALL_TRACE_FILE or DINING_LOG_FILE,
every monitor and student event is appended to that file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimulation,
}

var runFlags = map[string]string{
	"iterations":   "iterations",
	"trace":        "trace.file",
	"format":       "trace.format",
	"sleep-min-ms": "sleep.min_ms",
	"sleep-max-ms": "sleep.max_ms",
}

func init() {
	runCmd.Flags().IntP("iterations", "n", 0, "meals per student (default from config)")
	runCmd.Flags().String("trace", "", "trace file to write")
	runCmd.Flags().String("format", "", "trace format: text or json")
	runCmd.Flags().Int("sleep-min-ms", 0, "minimum pause in milliseconds")
	runCmd.Flags().Int("sleep-max-ms", 0, "maximum pause in milliseconds, 0 disables pauses")

	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, args []string) (err error) {
	if err := bindFlags(cmd, runFlags); err != nil {
		return err
	}
	if len(args) == 1 {
		students, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid number of students %q: %w", args[0], err)
		}
		viper.Set("students", students)
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	simCfg := dininghall.SimulationConfig{
		Students:   cfg.Students,
		Iterations: cfg.Iterations,
		Pauser:     cfg.Sleep.Pauser(),
		Logger:     logger,
	}

	if cfg.Trace.File != "" {
		var (
			format trace.Format
			sink   *trace.FileSink
		)
		format, err = trace.ParseFormat(cfg.Trace.Format)
		if err != nil {
			return err
		}
		sink, err = trace.OpenFile(cfg.Trace.File, format)
		if err != nil {
			return err
		}
		// Close writes the footer; its error is the run's error.
		defer func() {
			err = multierr.Append(err, sink.Close())
		}()
		simCfg.Sink = sink
		logger.Info("Tracing to file", zap.String("path", sink.Path()), zap.Stringer("format", format))
	}

	sim, err := dininghall.NewSimulation(simCfg)
	if err != nil {
		return err
	}

	res, err := sim.Run()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s finished in %s\n", res.RunID, res.Duration)
	fmt.Fprintf(out, "  students:  %d\n", len(res.Outcomes))
	fmt.Fprintf(out, "  meals:     %d\n", res.Meals())
	fmt.Fprintf(out, "  aborted:   %d\n", res.Aborted())
	fmt.Fprintf(out, "  barrier:   %d waits\n", res.Final.BarrierWaits)
	if res.SinkFailures > 0 {
		fmt.Fprintf(out, "  trace:     %d events lost\n", res.SinkFailures)
	}
	for _, o := range res.Outcomes {
		status := "done"
		if o.Aborted {
			status = "aborted"
		}
		fmt.Fprintf(out, "  student %s: %d/%d meals (%s)\n", o.Student, o.Meals, cfg.Iterations, status)
	}
	return nil
}
