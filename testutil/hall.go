// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package testutil

import (
	"testing"
	"time"

	"github.com/ava-labs/dininghall"
	"github.com/stretchr/testify/require"
)

// EnterAsync calls Enter on its own goroutine and delivers the result on the channel.
func EnterAsync(hall dininghall.Hall, id dininghall.StudentID) <-chan bool {
	res := make(chan bool, 1)
	go func() {
		res <- hall.Enter(id)
	}()
	return res
}

// LeaveAsync calls Leave on its own goroutine; the channel is closed once it returns.
func LeaveAsync(hall dininghall.Hall, id dininghall.StudentID) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		hall.Leave(id)
	}()
	return done
}

func WaitForState(t *testing.T, m *dininghall.PairingMonitor, cond func(dininghall.State) bool, msgAndArgs ...any) {
	require.Eventually(t, func() bool {
		return cond(m.Snapshot())
	}, 5*time.Second, time.Millisecond, msgAndArgs...)
}

// RequireBlocked asserts that nothing is delivered on ch for a while.
func RequireBlocked[T any](t *testing.T, ch <-chan T, msgAndArgs ...any) {
	require.Never(t, func() bool {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond, msgAndArgs...)
}

func RequireReceive[T any](t *testing.T, ch <-chan T) T {
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for a value")
	}
	var zero T
	return zero
}
