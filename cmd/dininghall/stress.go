// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ava-labs/dininghall/stress"
	"github.com/spf13/cobra"
)

var errStressFailed = errors.New("stress test failed")

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Run every scenario repeatedly and report deadlocks",
	Long: `Run every scenario stress.runs times. A run that does not finish within
stress.timeout counts as a deadlock. Exits non-zero unless every run succeeded.`,
	Args: cobra.NoArgs,
	RunE: runStress,
}

var stressFlags = map[string]string{
	"runs":      "stress.runs",
	"timeout":   "stress.timeout",
	"parallel":  "stress.parallel",
	"scenarios": "stress.scenarios",
}

func init() {
	stressCmd.Flags().Int("runs", 0, "runs per scenario")
	stressCmd.Flags().Duration("timeout", 0, "per run deadlock timeout")
	stressCmd.Flags().Int("parallel", 0, "concurrent runs per scenario")
	stressCmd.Flags().IntSlice("scenarios", nil, "student populations to test")
	stressCmd.Flags().Bool("verify", false, "replay the trace of every run")

	rootCmd.AddCommand(stressCmd)
}

func runStress(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, stressFlags); err != nil {
		return err
	}
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	verify, _ := cmd.Flags().GetBool("verify")
	out := cmd.OutOrStdout()

	var printLock sync.Mutex
	tester := stress.Tester{
		Scenarios:  stress.ScenariosFor(cfg.Stress.Scenarios),
		Runs:       cfg.Stress.Runs,
		Timeout:    cfg.Stress.Timeout,
		Iterations: cfg.Stress.Iterations,
		Pauser:     cfg.Sleep.Pauser(),
		Parallel:   cfg.Stress.Parallel,
		Verify:     verify,
		Logger:     logger,
		Progress: func(res stress.RunResult) {
			printLock.Lock()
			defer printLock.Unlock()
			fmt.Fprint(out, stress.ProgressMark(res))
		},
	}

	fmt.Fprintf(out, "Stressing %d scenarios, %d runs each, timeout %s\n", len(tester.Scenarios), tester.Runs, tester.Timeout)
	report := tester.Run()
	fmt.Fprintln(out)
	fmt.Fprintln(out)

	if err := report.Render(out); err != nil {
		return err
	}
	if !report.Passed() {
		return errStressFailed
	}
	return nil
}
