// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dininghall_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ava-labs/dininghall"
	"github.com/ava-labs/dininghall/testutil"
	"github.com/ava-labs/dininghall/trace"
	"github.com/stretchr/testify/require"
)

// pairedDining makes every student wait in Dine until a second student is dining too,
// so both members of a pair are seated before either of them leaves.
type pairedDining struct {
	lock       sync.Mutex
	signal     *sync.Cond
	arrived    int
	generation int
}

func newPairedDining() *pairedDining {
	pd := &pairedDining{}
	pd.signal = sync.NewCond(&pd.lock)
	return pd
}

func (pd *pairedDining) Pause(activity dininghall.Activity) {
	if activity != dininghall.ActivityDine {
		return
	}

	pd.lock.Lock()
	defer pd.lock.Unlock()

	pd.arrived++
	if pd.arrived == 2 {
		pd.arrived = 0
		pd.generation++
		pd.signal.Broadcast()
		return
	}

	generation := pd.generation
	for generation == pd.generation {
		pd.signal.Wait()
	}
}

// blockingPauser never returns from Dine until released.
type blockingPauser struct {
	release chan struct{}
}

func (bp blockingPauser) Pause(activity dininghall.Activity) {
	if activity == dininghall.ActivityDine {
		<-bp.release
	}
}

func countActions(events []dininghall.Event, action dininghall.Action) int {
	var n int
	for _, e := range events {
		if e.Action == action {
			n++
		}
	}
	return n
}

func runSimulation(t *testing.T, cfg dininghall.SimulationConfig) (dininghall.Result, []dininghall.Event) {
	sink := testutil.NewRecordingSink(t)
	logger := testutil.MakeLogger(t)
	logger.Silence()

	cfg.Sink = sink
	cfg.Logger = logger

	sim, err := dininghall.NewSimulation(cfg)
	require.NoError(t, err)

	res, err := sim.RunWithTimeout(time.Minute)
	require.NoError(t, err)

	events := sink.Events()
	require.NoError(t, trace.Verify(events))
	requireTerminated(t, cfg, res)

	return res, events
}

func requireTerminated(t *testing.T, cfg dininghall.SimulationConfig, res dininghall.Result) {
	require.Len(t, res.Outcomes, cfg.Students)
	require.Equal(t, cfg.Students, res.Final.Finished)
	require.Equal(t, cfg.Students, res.Final.Total)
	require.Zero(t, res.Final.Eating)
	require.Zero(t, res.Final.WaitingToEat)
	require.Zero(t, res.Final.WaitingToLeave)
	require.Equal(t, uint64(res.Meals()), res.Final.Seatings)
	require.Equal(t, res.Final.Seatings, res.Final.Departures)
	require.Equal(t, uint64(res.Aborted()), res.Final.Aborts)

	for _, o := range res.Outcomes {
		require.LessOrEqual(t, o.Meals, cfg.Iterations)
		if !o.Aborted {
			require.Equal(t, cfg.Iterations, o.Meals, "student %s neither aborted nor ate every meal", o.Student)
		}
	}
}

func TestSimulationConfig(t *testing.T) {
	_, err := dininghall.NewSimulation(dininghall.SimulationConfig{Students: 1, Iterations: 1})
	require.ErrorIs(t, err, dininghall.ErrTooFewStudents)

	_, err = dininghall.NewSimulation(dininghall.SimulationConfig{Students: 2})
	require.ErrorIs(t, err, dininghall.ErrNoIterations)

	sim, err := dininghall.NewSimulation(dininghall.SimulationConfig{Students: 2, Iterations: 1, Pauser: dininghall.NoPause{}})
	require.NoError(t, err)
	require.NotEqual(t, sim.RunID().String(), "")

	_, err = sim.Run()
	require.NoError(t, err)
	_, err = sim.Run()
	require.ErrorIs(t, err, dininghall.ErrAlreadyRun)
}

// Two students, one meal each: they form a pair, eat together, leave through the exit
// barrier together and finish.
func TestTwoStudentsOneMeal(t *testing.T) {
	cfg := dininghall.SimulationConfig{Students: 2, Iterations: 1, Pauser: newPairedDining()}
	res, events := runSimulation(t, cfg)

	require.Equal(t, 2, res.Meals())
	require.Zero(t, res.Aborted())
	require.Equal(t, 1, countActions(events, dininghall.ActionWaitEntry), "exactly one student waits for the pair to form")
	require.Equal(t, 2, countActions(events, dininghall.ActionEntered))
	require.Equal(t, 2, countActions(events, dininghall.ActionWaitLeave))
	require.Equal(t, 2, countActions(events, dininghall.ActionLeft))
	require.Equal(t, 2, countActions(events, dininghall.ActionFinished))
	require.Zero(t, countActions(events, dininghall.ActionAbortEntry))

	summary := trace.Summarize(events)
	require.Equal(t, 2, summary.MaxEating)
	require.Equal(t, 2, summary.PairedExits)
}

// An odd population may or may not need an abort at the end; only termination and the
// invariants are asserted.
func TestFiveStudentsTwentyMeals(t *testing.T) {
	cfg := dininghall.SimulationConfig{
		Students:   5,
		Iterations: 20,
		Pauser:     dininghall.RandomPauser{Max: time.Millisecond},
	}
	res, events := runSimulation(t, cfg)

	summary := trace.Summarize(events)
	require.LessOrEqual(t, summary.MaxEating, dininghall.HallCapacity)
	require.Equal(t, res.Meals(), summary.Meals)
	require.Equal(t, res.Aborted(), summary.Aborts)
}

func TestSimulationTerminates(t *testing.T) {
	for _, students := range []int{2, 3, 4, 7, 10} {
		for _, iterations := range []int{1, 5} {
			for _, pauser := range []dininghall.Pauser{dininghall.NoPause{}, dininghall.RandomPauser{Max: 200 * time.Microsecond}} {
				name := fmt.Sprintf("%d students, %d iterations, %T", students, iterations, pauser)
				t.Run(name, func(t *testing.T) {
					runSimulation(t, dininghall.SimulationConfig{
						Students:   students,
						Iterations: iterations,
						Pauser:     pauser,
					})
				})
			}
		}
	}
}

func TestOddPopulationRepeatedly(t *testing.T) {
	for i := 0; i < 50; i++ {
		runSimulation(t, dininghall.SimulationConfig{Students: 3, Iterations: 10, Pauser: dininghall.NoPause{}})
	}
}

func TestRunWithTimeoutReportsDeadlock(t *testing.T) {
	pauser := blockingPauser{release: make(chan struct{})}
	defer close(pauser.release)

	logger := testutil.MakeLogger(t)
	logger.Silence()

	sim, err := dininghall.NewSimulation(dininghall.SimulationConfig{
		Students:   2,
		Iterations: 1,
		Pauser:     pauser,
		Logger:     logger,
	})
	require.NoError(t, err)

	res, err := sim.RunWithTimeout(100 * time.Millisecond)
	require.ErrorIs(t, err, dininghall.ErrDeadlock)
	require.Equal(t, sim.RunID(), res.RunID)
	require.Equal(t, 2, res.Final.Total)
	require.Zero(t, res.Final.Finished)

	// Both students stay seated in Dine until released.
	state := sim.Monitor().Snapshot()
	require.Equal(t, 2, state.Eating)
	require.Equal(t, res.Final, state)
}
