// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dininghall

import "errors"

var (
	ErrTooFewStudents = errors.New("at least two students are required to form a pair")
	ErrNoIterations   = errors.New("students must eat at least once")
	ErrDeadlock       = errors.New("simulation did not terminate in time")
	ErrUnknownAction  = errors.New("unknown action")

	ErrAlreadyRun        = errors.New("simulation already started")
	ErrInvariantViolated = errors.New("monitor invariant violated")
)
