// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dininghall_test

import (
	"testing"
	"time"

	"github.com/ava-labs/dininghall"
	"github.com/stretchr/testify/require"
)

// scriptedHall admits a fixed number of entries and then aborts.
type scriptedHall struct {
	admit int
	calls []string
}

func (sh *scriptedHall) Enter(dininghall.StudentID) bool {
	sh.calls = append(sh.calls, "enter")
	if sh.admit == 0 {
		return false
	}
	sh.admit--
	return true
}

func (sh *scriptedHall) Leave(dininghall.StudentID) {
	sh.calls = append(sh.calls, "leave")
}

func (sh *scriptedHall) MarkFinished(dininghall.StudentID) {
	sh.calls = append(sh.calls, "finished")
}

func (sh *scriptedHall) Record(_ dininghall.StudentID, action dininghall.Action, _ string) {
	sh.calls = append(sh.calls, action.String())
}

type countingPauser map[dininghall.Activity]int

func (cp countingPauser) Pause(a dininghall.Activity) {
	cp[a]++
}

func TestStudentRun(t *testing.T) {
	t.Run("Eats every iteration", func(t *testing.T) {
		hall := &scriptedHall{admit: 3}
		pauser := countingPauser{}
		s := &dininghall.Student{ID: 1, Iterations: 3, Hall: hall, Pauser: pauser}

		out := s.Run()
		require.Equal(t, dininghall.Outcome{Student: 1, Meals: 3}, out)
		require.Equal(t, 3, pauser[dininghall.ActivityGetFood])
		require.Equal(t, 3, pauser[dininghall.ActivityDine])
		require.Equal(t, []string{
			"GET_FOOD", "enter", "EATING", "leave",
			"GET_FOOD", "enter", "EATING", "leave",
			"GET_FOOD", "enter", "EATING", "leave",
			"finished",
		}, hall.calls)
	})

	t.Run("Stops after an aborted entry", func(t *testing.T) {
		hall := &scriptedHall{admit: 1}
		s := &dininghall.Student{ID: 2, Iterations: 5, Hall: hall, Pauser: dininghall.NoPause{}}

		out := s.Run()
		require.Equal(t, dininghall.Outcome{Student: 2, Meals: 1, Aborted: true}, out)
		require.Equal(t, []string{
			"GET_FOOD", "enter", "EATING", "leave",
			"GET_FOOD", "enter",
			"finished",
		}, hall.calls)
	})
}

func TestRandomPauser(t *testing.T) {
	p := dininghall.RandomPauser{Min: time.Millisecond, Max: 3 * time.Millisecond}
	start := time.Now()
	p.Pause(dininghall.ActivityDine)
	require.GreaterOrEqual(t, time.Since(start), time.Millisecond)

	fixed := dininghall.RandomPauser{Min: time.Millisecond, Max: time.Millisecond}
	start = time.Now()
	fixed.Pause(dininghall.ActivityGetFood)
	require.GreaterOrEqual(t, time.Since(start), time.Millisecond)
}

func TestActionNames(t *testing.T) {
	for a := dininghall.ActionRequestEntry; a <= dininghall.ActionEating; a++ {
		parsed, err := dininghall.ParseAction(a.String())
		require.NoError(t, err)
		require.Equal(t, a, parsed)
	}

	_, err := dininghall.ParseAction("DANCING")
	require.ErrorIs(t, err, dininghall.ErrUnknownAction)
	_, err = dininghall.ParseAction("UNKNOWN")
	require.ErrorIs(t, err, dininghall.ErrUnknownAction)
}
