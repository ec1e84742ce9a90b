// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dininghall_test

import (
	"testing"
	"time"

	"github.com/ava-labs/dininghall"
	"github.com/ava-labs/dininghall/testutil"
	"github.com/stretchr/testify/require"
)

func TestEnterWaitsForPartner(t *testing.T) {
	m := dininghall.NewPairingMonitor(testutil.MakeLogger(t), 2)

	first := testutil.EnterAsync(m, 1)
	testutil.WaitForState(t, m, func(s dininghall.State) bool { return s.WaitingToEat == 1 })
	testutil.RequireBlocked(t, first, "a student must not sit alone in an empty hall")

	second := testutil.EnterAsync(m, 2)
	require.True(t, testutil.RequireReceive(t, second))
	require.True(t, testutil.RequireReceive(t, first))

	s := m.Snapshot()
	require.Equal(t, 2, s.Eating)
	require.Zero(t, s.WaitingToEat)
	require.Equal(t, uint64(2), s.Seatings)
}

func TestExitBarrier(t *testing.T) {
	m := dininghall.NewPairingMonitor(testutil.MakeLogger(t), 2)
	seatPair(t, m, 1, 2)

	firstOut := testutil.LeaveAsync(m, 1)
	testutil.WaitForState(t, m, func(s dininghall.State) bool { return s.WaitingToLeave == 1 })
	testutil.RequireBlocked(t, firstOut, "the first diner must wait for its partner to leave")
	require.Equal(t, 2, m.Snapshot().Eating)

	m.Leave(2)
	testutil.RequireReceive(t, firstOut)

	s := m.Snapshot()
	require.Zero(t, s.Eating)
	require.Zero(t, s.WaitingToLeave)
	require.Equal(t, uint64(2), s.Departures)
	require.Equal(t, uint64(2), s.BarrierWaits)
}

func TestHallCapacity(t *testing.T) {
	m := dininghall.NewPairingMonitor(testutil.MakeLogger(t), 3)
	seatPair(t, m, 1, 2)

	third := testutil.EnterAsync(m, 3)
	testutil.WaitForState(t, m, func(s dininghall.State) bool { return s.WaitingToEat == 1 })
	testutil.RequireBlocked(t, third, "a full hall must not admit a third student")
	require.Equal(t, 2, m.Snapshot().Eating)

	firstOut := testutil.LeaveAsync(m, 1)
	testutil.WaitForState(t, m, func(s dininghall.State) bool { return s.WaitingToLeave == 1 })
	m.Leave(2)

	// Once student 2 is gone either student 1 finishes leaving, or student 3 takes the
	// free seat first and becomes the partner student 1 leaves with.
	select {
	case <-firstOut:
		m.MarkFinished(1)
		m.MarkFinished(2)
		require.False(t, testutil.RequireReceive(t, third), "nobody is left to pair with")
	case seated := <-third:
		require.True(t, seated)
		require.Equal(t, 2, m.Snapshot().Eating)
		testutil.RequireBlocked(t, firstOut)
		m.Leave(3)
		testutil.RequireReceive(t, firstOut)
		m.MarkFinished(1)
		m.MarkFinished(2)
		m.MarkFinished(3)
	}

	s := m.Snapshot()
	require.Zero(t, s.Eating)
	require.Zero(t, s.WaitingToEat)
	require.Zero(t, s.WaitingToLeave)
}

func TestEnterAbortsWhenNoPartnerRemains(t *testing.T) {
	t.Run("enter after the others finished", func(t *testing.T) {
		m := dininghall.NewPairingMonitor(testutil.MakeLogger(t), 3)
		m.MarkFinished(1)
		m.MarkFinished(2)

		require.False(t, m.Enter(3))

		s := m.Snapshot()
		require.Zero(t, s.WaitingToEat)
		require.Zero(t, s.Eating)
		require.Equal(t, uint64(1), s.Aborts)
	})

	t.Run("waiting student is released by the last finish", func(t *testing.T) {
		m := dininghall.NewPairingMonitor(testutil.MakeLogger(t), 3)

		last := testutil.EnterAsync(m, 3)
		testutil.WaitForState(t, m, func(s dininghall.State) bool { return s.WaitingToEat == 1 })

		m.MarkFinished(1)
		testutil.RequireBlocked(t, last, "two students are still active")

		m.MarkFinished(2)
		require.False(t, testutil.RequireReceive(t, last))
		require.Equal(t, 2, m.Snapshot().Finished)
	})

	t.Run("seated student keeps the hall open", func(t *testing.T) {
		m := dininghall.NewPairingMonitor(testutil.MakeLogger(t), 3)
		seatPair(t, m, 1, 2)
		m.MarkFinished(3)

		// Student 3 is gone, but students 1 and 2 can still eat together.
		out := testutil.LeaveAsync(m, 1)
		m.Leave(2)
		testutil.RequireReceive(t, out)
		require.Zero(t, m.Snapshot().Aborts)
	})
}

func TestFinishedStudentsNeverExceedTotal(t *testing.T) {
	m := dininghall.NewPairingMonitor(testutil.MakeLogger(t), 4)

	prev := 0
	for id := dininghall.StudentID(1); id <= 4; id++ {
		m.MarkFinished(id)
		s := m.Snapshot()
		require.Equal(t, prev+1, s.Finished)
		require.LessOrEqual(t, s.Finished, s.Total)
		prev = s.Finished
	}
	require.Zero(t, m.Snapshot().Active())
}

func TestMonitorEvents(t *testing.T) {
	sink := testutil.NewRecordingSink(t)
	logger := testutil.MakeLogger(t)
	events := dininghall.NewEventDispatcher(logger, sink)
	defer events.Close()

	now := time.Unix(1700000000, 0)
	m := dininghall.NewPairingMonitor(logger, 2,
		dininghall.WithEvents(events),
		dininghall.WithClock(func() time.Time { return now }))

	seatPair(t, m, 1, 2)
	out := testutil.LeaveAsync(m, 1)
	sink.WaitForAction(1, dininghall.ActionWaitLeave, 1)
	testutil.RequireBlocked(t, out, "student 1 is at the exit barrier")

	m.Leave(2)
	testutil.RequireReceive(t, out)
	m.MarkFinished(1)
	m.MarkFinished(2)
	// Events are delivered in order, so the last FINISHED implies everything before it.
	sink.WaitForAction(2, dininghall.ActionFinished, 1)

	recorded := sink.Events()
	for i, e := range recorded {
		require.Equal(t, uint64(i+1), e.Seq)
		require.True(t, now.Equal(e.Time))
		require.GreaterOrEqual(t, e.Eating, 0)
		require.LessOrEqual(t, e.Eating, dininghall.HallCapacity)
	}

	for _, id := range []dininghall.StudentID{1, 2} {
		actions := sink.Actions(id)
		require.Contains(t, actions, dininghall.ActionEntered)
		require.Equal(t, dininghall.ActionLeft, actions[len(actions)-2])
		require.Equal(t, dininghall.ActionFinished, actions[len(actions)-1])
	}
	require.Equal(t, 2, countActions(recorded, dininghall.ActionWaitLeave))
}

// seatPair seats two students in an empty hall.
func seatPair(t *testing.T, m *dininghall.PairingMonitor, a, b dininghall.StudentID) {
	first := testutil.EnterAsync(m, a)
	testutil.WaitForState(t, m, func(s dininghall.State) bool { return s.WaitingToEat == 1 })
	require.True(t, m.Enter(b))
	require.True(t, testutil.RequireReceive(t, first))
	require.Equal(t, 2, m.Snapshot().Eating)
}
