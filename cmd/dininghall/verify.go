// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/ava-labs/dininghall/trace"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <trace-file>",
	Short: "Check a trace against the pairing rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	events, err := trace.ReadFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	s := trace.Summarize(events)
	fmt.Fprintf(out, "%s: %d events, %d students, %d meals, %d aborts, at most %d eating, %d paired exits\n",
		args[0], s.Events, s.Students, s.Meals, s.Aborts, s.MaxEating, s.PairedExits)

	err = trace.Verify(events)
	violations := multierr.Errors(err)
	for _, v := range violations {
		fmt.Fprintf(out, "  %v\n", v)
	}
	if err != nil {
		return fmt.Errorf("%d violations in %s", len(violations), args[0])
	}

	fmt.Fprintln(out, "  no violations")
	return nil
}
