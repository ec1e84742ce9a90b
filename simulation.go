// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dininghall

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

type SimulationConfig struct {
	Students   int
	Iterations int
	// Pauser defaults to DefaultPauser.
	Pauser Pauser
	// Sink is optional. Without one no events are produced.
	Sink EventSink
	// Logger defaults to NoOpLogger.
	Logger Logger
}

func (c SimulationConfig) Validate() error {
	if c.Students < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewStudents, c.Students)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("%w: got %d iterations", ErrNoIterations, c.Iterations)
	}
	return nil
}

// Simulation runs one student goroutine per student against a shared PairingMonitor.
// A Simulation can only be run once.
type Simulation struct {
	cfg     SimulationConfig
	runID   uuid.UUID
	logger  Logger
	events  *EventDispatcher
	monitor *PairingMonitor
	started atomic.Bool
}

type Result struct {
	RunID    uuid.UUID
	Duration time.Duration
	Outcomes []Outcome
	Final    State
	// SinkFailures counts events the sink failed to persist.
	SinkFailures uint64
}

func (r Result) Meals() int {
	var meals int
	for _, o := range r.Outcomes {
		meals += o.Meals
	}
	return meals
}

func (r Result) Aborted() int {
	var aborted int
	for _, o := range r.Outcomes {
		if o.Aborted {
			aborted++
		}
	}
	return aborted
}

func NewSimulation(cfg SimulationConfig) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Pauser == nil {
		cfg.Pauser = DefaultPauser()
	}
	if cfg.Logger == nil {
		cfg.Logger = NoOpLogger{}
	}

	s := &Simulation{
		cfg:    cfg,
		runID:  uuid.New(),
		logger: cfg.Logger,
	}

	var opts []MonitorOption
	if cfg.Sink != nil {
		s.events = NewEventDispatcher(cfg.Logger, cfg.Sink)
		opts = append(opts, WithEvents(s.events))
	}
	s.monitor = NewPairingMonitor(cfg.Logger, cfg.Students, opts...)

	return s, nil
}

func (s *Simulation) RunID() uuid.UUID {
	return s.runID
}

func (s *Simulation) Monitor() *PairingMonitor {
	return s.monitor
}

// Run starts every student, waits for all of them and flushes pending events.
// A panic in any student, such as a violated monitor invariant, is re-raised here.
func (s *Simulation) Run() (Result, error) {
	if !s.started.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyRun
	}
	defer s.closeEvents()

	s.logger.Info("Starting simulation",
		zap.Stringer("runID", s.runID),
		zap.Int("students", s.cfg.Students),
		zap.Int("iterations", s.cfg.Iterations))

	start := time.Now()
	outcomes := make([]Outcome, s.cfg.Students)

	var wg conc.WaitGroup
	for i := range outcomes {
		student := &Student{
			ID:         StudentID(i + 1),
			Iterations: s.cfg.Iterations,
			Hall:       s.monitor,
			Pauser:     s.cfg.Pauser,
		}
		wg.Go(func() {
			outcomes[i] = student.Run()
		})
	}
	wg.Wait()

	res := Result{
		RunID:    s.runID,
		Duration: time.Since(start),
		Outcomes: outcomes,
		Final:    s.monitor.Snapshot(),
	}

	s.closeEvents()
	if s.events != nil {
		res.SinkFailures = s.events.Failures()
	}

	s.logger.Info("Simulation finished",
		zap.Stringer("runID", s.runID),
		zap.Duration("duration", res.Duration),
		zap.Int("meals", res.Meals()),
		zap.Int("aborted", res.Aborted()))

	return res, nil
}

// RunWithTimeout runs the simulation and gives up waiting after timeout.
// On timeout the students are abandoned, since the monitor cannot be cancelled, and the
// returned Result carries the monitor state observed at the deadline.
func (s *Simulation) RunWithTimeout(timeout time.Duration) (Result, error) {
	type runResult struct {
		res       Result
		err       error
		recovered any
	}

	done := make(chan runResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- runResult{recovered: r}
			}
		}()
		res, err := s.Run()
		done <- runResult{res: res, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.recovered != nil {
			return Result{RunID: s.runID, Final: s.monitor.Snapshot()}, fmt.Errorf("%w: %v", ErrInvariantViolated, r.recovered)
		}
		return r.res, r.err
	case <-timer.C:
		state := s.monitor.Snapshot()
		s.logger.Error("Simulation did not terminate",
			zap.Stringer("runID", s.runID),
			zap.Duration("timeout", timeout),
			zap.Int("eating", state.Eating),
			zap.Int("waitingToEat", state.WaitingToEat),
			zap.Int("waitingToLeave", state.WaitingToLeave),
			zap.Int("finished", state.Finished),
			zap.Int("total", state.Total))
		return Result{RunID: s.runID, Duration: timeout, Final: state},
			fmt.Errorf("%w after %s: eating=%d waitingToEat=%d waitingToLeave=%d finished=%d/%d",
				ErrDeadlock, timeout, state.Eating, state.WaitingToEat, state.WaitingToLeave, state.Finished, state.Total)
	}
}

func (s *Simulation) closeEvents() {
	if s.events != nil {
		s.events.Close()
	}
}
