// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dininghall

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var _ Hall = (*PairingMonitor)(nil)

type MonitorOption func(*PairingMonitor)

// WithEvents makes the monitor publish every state transition to the given dispatcher.
func WithEvents(events *EventDispatcher) MonitorOption {
	return func(m *PairingMonitor) {
		m.events = events
	}
}

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) MonitorOption {
	return func(m *PairingMonitor) {
		m.now = now
	}
}

// PairingMonitor admits students into the hall in pairs and lets them out in pairs.
//
// All counters are guarded by lock. okToSit is waited on by Enter and okToLeave by the
// exit barrier in Leave. Any change that can flip the abort condition of Enter
// broadcasts on okToSit so that every blocked student re-evaluates it.
type PairingMonitor struct {
	logger Logger
	events *EventDispatcher
	now    func() time.Time

	lock      sync.Mutex
	okToSit   sync.Cond
	okToLeave sync.Cond

	eating         int
	waitingToEat   int
	waitingToLeave int
	total          int
	finished       int

	seq          uint64
	seatings     uint64
	aborts       uint64
	departures   uint64
	barrierWaits uint64
}

// NewPairingMonitor creates a monitor for totalStudents students.
// Callers must reject fewer than two students before creating it.
func NewPairingMonitor(logger Logger, totalStudents int, opts ...MonitorOption) *PairingMonitor {
	m := &PairingMonitor{
		logger: logger,
		now:    time.Now,
		total:  totalStudents,
	}
	m.okToSit.L = &m.lock
	m.okToLeave.L = &m.lock

	for _, opt := range opts {
		opt(m)
	}

	m.logger.Debug("Created pairing monitor", zap.Int("students", totalStudents))
	return m
}

// Enter seats the student and returns true, or returns false when the hall is empty and
// fewer than two students are still active, meaning no pair can ever form again.
func (m *PairingMonitor) Enter(id StudentID) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.record(id, ActionRequestEntry, "trying to sit")
	m.waitingToEat++
	m.checkInvariants()

	for !m.canSit() {
		if m.mustAbort() {
			m.waitingToEat--
			m.aborts++
			m.checkInvariants()
			m.record(id, ActionAbortEntry, "last survivor detected")
			m.logger.Debug("No partner can arrive; aborting entry",
				zap.Stringer("student", id),
				zap.Int("active", m.total-m.finished))
			return false
		}

		m.record(id, ActionWaitEntry, "waiting for a partner")
		m.okToSit.Wait()
	}

	m.waitingToEat--
	m.eating++
	m.seatings++
	m.checkInvariants()
	m.record(id, ActionEntered, "got a seat")
	m.logger.Trace("Student seated", zap.Stringer("student", id), zap.Int("eating", m.eating))

	// Our partner, or a waiter that just became eligible, must recheck.
	m.okToSit.Signal()
	return true
}

// Leave vacates the student's seat. When both seats are taken, the two occupants leave
// together: the first to arrive waits at the exit barrier for the second.
func (m *PairingMonitor) Leave(id StudentID) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.record(id, ActionRequestLeave, "trying to leave")

	if m.eating == HallCapacity {
		m.waitingToLeave++
		m.barrierWaits++
		m.record(id, ActionWaitLeave, "waiting for partner to leave together")

		for m.waitingToLeave < HallCapacity && m.eating == HallCapacity {
			m.okToLeave.Wait()
		}
		m.waitingToLeave--
	}

	m.eating--
	m.departures++
	m.checkInvariants()
	m.record(id, ActionLeft, "left the hall")
	m.logger.Trace("Student left", zap.Stringer("student", id), zap.Int("eating", m.eating))

	m.okToLeave.Broadcast()
	m.okToSit.Signal()
}

// MarkFinished records that the student stopped requesting seats for good.
// Calling it more than once for the same student is a contract violation.
func (m *PairingMonitor) MarkFinished(id StudentID) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.finished++
	m.checkInvariants()
	m.record(id, ActionFinished, "finished all iterations")
	m.logger.Debug("Student finished",
		zap.Stringer("student", id),
		zap.Int("finished", m.finished),
		zap.Int("total", m.total))

	// The active population shrank; every waiter must recheck the abort condition.
	m.okToSit.Broadcast()
}

func (m *PairingMonitor) Record(id StudentID, action Action, reason string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.record(id, action, reason)
}

// Snapshot returns a consistent copy of the monitor state.
func (m *PairingMonitor) Snapshot() State {
	m.lock.Lock()
	defer m.lock.Unlock()

	return State{
		Eating:         m.eating,
		WaitingToEat:   m.waitingToEat,
		WaitingToLeave: m.waitingToLeave,
		Total:          m.total,
		Finished:       m.finished,
		Seatings:       m.seatings,
		Aborts:         m.aborts,
		Departures:     m.departures,
		BarrierWaits:   m.barrierWaits,
	}
}

// canSit is true when someone is seated and a seat is free, or when the caller and at
// least one other waiter can take an empty hall together.
func (m *PairingMonitor) canSit() bool {
	if m.eating >= HallCapacity {
		return false
	}
	return m.eating > 0 || m.waitingToEat >= 2
}

func (m *PairingMonitor) mustAbort() bool {
	return m.eating == 0 && m.total-m.finished < 2
}

// record must be called with the lock held.
func (m *PairingMonitor) record(id StudentID, action Action, reason string) {
	if m.events == nil {
		return
	}

	m.seq++
	m.events.Dispatch(Event{
		Seq:          m.seq,
		Time:         m.now(),
		Student:      id,
		Action:       action,
		Reason:       reason,
		Eating:       m.eating,
		WaitingToEat: m.waitingToEat,
	})
}

// checkInvariants must be called with the lock held.
func (m *PairingMonitor) checkInvariants() {
	switch {
	case m.eating < 0 || m.eating > HallCapacity:
		panic(fmt.Sprintf("eating count %d out of range [0, %d]", m.eating, HallCapacity))
	case m.waitingToEat < 0:
		panic(fmt.Sprintf("negative waiting to eat count %d", m.waitingToEat))
	case m.waitingToLeave < 0:
		panic(fmt.Sprintf("negative waiting to leave count %d", m.waitingToLeave))
	case m.finished > m.total:
		panic(fmt.Sprintf("%d students finished out of %d", m.finished, m.total))
	}
}
