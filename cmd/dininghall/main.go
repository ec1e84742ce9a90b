// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command dininghall runs the dining hall pairing simulation.
//
// Usage:
//
//	dininghall run [students]      # one simulation, optionally traced
//	dininghall stress              # repeated runs per scenario, deadlock detection
//	dininghall traces              # write one trace file per scenario
//	dininghall verify <trace-file> # replay a trace and check the pairing rules
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
