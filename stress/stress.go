// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stress

import (
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/dininghall"
	"github.com/ava-labs/dininghall/trace"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

type Scenario struct {
	Students int
	Label    string
}

func (s Scenario) String() string {
	return fmt.Sprintf("%d students", s.Students)
}

var defaultScenarios = []Scenario{
	{Students: 2, Label: "pair (minimal check)"},
	{Students: 3, Label: "odd (one left over)"},
	{Students: 10, Label: "small group"},
	{Students: 50, Label: "high load"},
}

func DefaultScenarios() []Scenario {
	res := make([]Scenario, len(defaultScenarios))
	copy(res, defaultScenarios)
	return res
}

// ScenariosFor builds scenarios for the given populations, reusing the default labels.
func ScenariosFor(populations []int) []Scenario {
	res := make([]Scenario, 0, len(populations))
	for _, n := range populations {
		s := Scenario{Students: n, Label: "custom"}
		for _, d := range defaultScenarios {
			if d.Students == n {
				s.Label = d.Label
			}
		}
		res = append(res, s)
	}
	return res
}

type Verdict uint8

const (
	Success Verdict = iota
	Deadlock
	Failure
)

func (v Verdict) String() string {
	switch v {
	case Success:
		return "success"
	case Deadlock:
		return "deadlock"
	case Failure:
		return "failure"
	default:
		return fmt.Sprintf("Verdict(%d)", uint8(v))
	}
}

type RunResult struct {
	Scenario Scenario
	Run      int
	Verdict  Verdict
	Duration time.Duration
	Meals    int
	Aborted  int
	Err      error
}

// Tester runs every scenario Runs times and classifies each run as a success, a deadlock
// (the run did not finish within Timeout) or a failure (any other error, including a
// violated invariant or, with Verify set, a trace that does not replay cleanly).
type Tester struct {
	Scenarios  []Scenario
	Runs       int
	Timeout    time.Duration
	Iterations int
	Pauser     dininghall.Pauser
	// Parallel bounds how many runs of a scenario execute at once.
	Parallel int
	// Verify records every run in memory and replays the trace.
	Verify bool
	Logger dininghall.Logger
	// Progress is called after every run, possibly from several goroutines at once.
	Progress func(RunResult)
}

func (t *Tester) Run() Report {
	logger := t.Logger
	if logger == nil {
		logger = dininghall.NoOpLogger{}
	}

	report := Report{Runs: t.Runs}
	for _, scenario := range t.Scenarios {
		logger.Info("Stressing scenario",
			zap.Int("students", scenario.Students),
			zap.String("label", scenario.Label),
			zap.Int("runs", t.Runs))

		p := pool.NewWithResults[RunResult]().WithMaxGoroutines(max(t.Parallel, 1))
		for i := 0; i < t.Runs; i++ {
			p.Go(func() RunResult {
				res := t.runOnce(logger, scenario, i)
				if t.Progress != nil {
					t.Progress(res)
				}
				return res
			})
		}

		sr := ScenarioReport{Scenario: scenario}
		for _, res := range p.Wait() {
			sr.add(res)
			if res.Err != nil {
				logger.Warn("Stress run failed",
					zap.Int("students", scenario.Students),
					zap.Int("run", res.Run),
					zap.Stringer("verdict", res.Verdict),
					zap.Error(res.Err))
			}
		}
		report.Scenarios = append(report.Scenarios, sr)
	}

	return report
}

func (t *Tester) runOnce(logger dininghall.Logger, scenario Scenario, run int) RunResult {
	res := RunResult{Scenario: scenario, Run: run}

	var sink *trace.MemSink
	cfg := dininghall.SimulationConfig{
		Students:   scenario.Students,
		Iterations: t.Iterations,
		Pauser:     t.Pauser,
		Logger:     logger,
	}
	if t.Verify {
		sink = &trace.MemSink{}
		cfg.Sink = sink
	}

	sim, err := dininghall.NewSimulation(cfg)
	if err != nil {
		res.Verdict = Failure
		res.Err = err
		return res
	}

	simRes, err := sim.RunWithTimeout(t.Timeout)
	res.Duration = simRes.Duration
	res.Meals = simRes.Meals()
	res.Aborted = simRes.Aborted()

	switch {
	case errors.Is(err, dininghall.ErrDeadlock):
		res.Verdict = Deadlock
		res.Err = err
	case err != nil:
		res.Verdict = Failure
		res.Err = err
	case sink != nil:
		logger.Verbo("Replaying trace", zap.Int("students", scenario.Students), zap.Int("events", sink.Len()))
		if err := trace.Verify(sink.Events()); err != nil {
			res.Verdict = Failure
			res.Err = err
		}
	}
	return res
}
