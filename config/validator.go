// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ava-labs/dininghall/logging"
	"github.com/ava-labs/dininghall/trace"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Students < 2 {
		errs = append(errs, ValidationError{Field: "students", Value: c.Students, Message: "at least two students are required"})
	}
	if c.Iterations < 1 {
		errs = append(errs, ValidationError{Field: "iterations", Value: c.Iterations, Message: "must be positive"})
	}

	if c.Sleep.MinMs < 0 {
		errs = append(errs, ValidationError{Field: "sleep.min_ms", Value: c.Sleep.MinMs, Message: "must not be negative"})
	}
	if c.Sleep.MaxMs < c.Sleep.MinMs {
		errs = append(errs, ValidationError{Field: "sleep.max_ms", Value: c.Sleep.MaxMs, Message: fmt.Sprintf("must be at least sleep.min_ms (%d)", c.Sleep.MinMs)})
	}

	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		errs = append(errs, ValidationError{Field: "trace.format", Value: c.Trace.Format, Message: "must be text or json"})
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{Field: "log.level", Value: c.Log.Level, Message: "unknown log level"})
	}

	errs = append(errs, c.validateStress()...)
	errs = append(errs, c.validateTraces()...)

	return errs
}

func (c *Config) validateStress() []ValidationError {
	var errs []ValidationError

	if c.Stress.Runs < 1 {
		errs = append(errs, ValidationError{Field: "stress.runs", Value: c.Stress.Runs, Message: "must be positive"})
	}
	if c.Stress.Timeout <= 0 {
		errs = append(errs, ValidationError{Field: "stress.timeout", Value: c.Stress.Timeout, Message: "must be positive"})
	}
	if c.Stress.Iterations < 1 {
		errs = append(errs, ValidationError{Field: "stress.iterations", Value: c.Stress.Iterations, Message: "must be positive"})
	}
	if c.Stress.Parallel < 1 {
		errs = append(errs, ValidationError{Field: "stress.parallel", Value: c.Stress.Parallel, Message: "must be positive"})
	}
	if len(c.Stress.Scenarios) == 0 {
		errs = append(errs, ValidationError{Field: "stress.scenarios", Value: c.Stress.Scenarios, Message: "at least one scenario is required"})
	}
	if slices.ContainsFunc(c.Stress.Scenarios, func(n int) bool { return n < 2 }) {
		errs = append(errs, ValidationError{Field: "stress.scenarios", Value: c.Stress.Scenarios, Message: "every scenario needs at least two students"})
	}

	return errs
}

func (c *Config) validateTraces() []ValidationError {
	var errs []ValidationError

	if c.Traces.Dir == "" {
		errs = append(errs, ValidationError{Field: "traces.dir", Value: c.Traces.Dir, Message: "must not be empty"})
	}
	if c.Traces.Iterations < 1 {
		errs = append(errs, ValidationError{Field: "traces.iterations", Value: c.Traces.Iterations, Message: "must be positive"})
	}
	if slices.ContainsFunc(c.Traces.Scenarios, func(n int) bool { return n < 2 }) {
		errs = append(errs, ValidationError{Field: "traces.scenarios", Value: c.Traces.Scenarios, Message: "every scenario needs at least two students"})
	}

	return errs
}
