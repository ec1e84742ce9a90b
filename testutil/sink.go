// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/ava-labs/dininghall"
	"github.com/stretchr/testify/require"
)

// RecordingSink keeps every event in memory and lets tests block until the recorded
// events satisfy a condition.
type RecordingSink struct {
	t       *testing.T
	timeout time.Duration
	lock    sync.Mutex
	signal  sync.Cond
	events  []dininghall.Event
}

func NewRecordingSink(t *testing.T) *RecordingSink {
	rs := &RecordingSink{
		t:       t,
		timeout: 10 * time.Second,
	}
	rs.signal.L = &rs.lock
	return rs
}

func (rs *RecordingSink) Emit(e dininghall.Event) error {
	rs.lock.Lock()
	defer rs.lock.Unlock()

	rs.events = append(rs.events, e)
	rs.signal.Broadcast()
	return nil
}

func (rs *RecordingSink) Events() []dininghall.Event {
	rs.lock.Lock()
	defer rs.lock.Unlock()

	res := make([]dininghall.Event, len(rs.events))
	copy(res, rs.events)
	return res
}

// Actions returns the actions recorded for a single student, in order.
func (rs *RecordingSink) Actions(id dininghall.StudentID) []dininghall.Action {
	rs.lock.Lock()
	defer rs.lock.Unlock()

	var actions []dininghall.Action
	for _, e := range rs.events {
		if e.Student == id {
			actions = append(actions, e.Action)
		}
	}
	return actions
}

// WaitFor blocks until cond holds for the recorded events, failing the test if it does
// not within the sink timeout. Must be called from the test goroutine.
func (rs *RecordingSink) WaitFor(cond func([]dininghall.Event) bool) {
	deadline := time.Now().Add(rs.timeout)
	timer := time.AfterFunc(rs.timeout, func() {
		rs.lock.Lock()
		defer rs.lock.Unlock()
		rs.signal.Broadcast()
	})
	defer timer.Stop()

	rs.lock.Lock()
	defer rs.lock.Unlock()

	for !cond(rs.events) {
		if !time.Now().Before(deadline) {
			require.FailNow(rs.t, "timed out waiting for events", "recorded %d events", len(rs.events))
		}
		rs.signal.Wait()
	}
}

// WaitForAction blocks until the student has recorded the action n times.
func (rs *RecordingSink) WaitForAction(id dininghall.StudentID, action dininghall.Action, n int) {
	rs.WaitFor(func(events []dininghall.Event) bool {
		var count int
		for _, e := range events {
			if e.Student == id && e.Action == action {
				count++
			}
		}
		return count >= n
	})
}
