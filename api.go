// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dininghall

import (
	"go.uber.org/zap"
)

type Logger interface {
	// Log that a fatal error has occurred. The program should likely exit soon
	// after this is called
	Fatal(msg string, fields ...zap.Field)
	// Log that an error has occurred. The program should be able to recover
	// from this error
	Error(msg string, fields ...zap.Field)
	// Log that an event has occurred that may indicate a future error or
	// vulnerability
	Warn(msg string, fields ...zap.Field)
	// Log an event that may be useful for a user to see to measure the progress
	// of the simulation
	Info(msg string, fields ...zap.Field)
	// Log an event that may be useful for understanding the order of the
	// seatings and departures
	Trace(msg string, fields ...zap.Field)
	// Log an event that may be useful for a programmer to see when debuging the
	// pairing protocol
	Debug(msg string, fields ...zap.Field)
	// Log extremely detailed events that can be useful for inspecting every
	// aspect of the program
	Verbo(msg string, fields ...zap.Field)
}

// EventSink receives the diagnostic events of a simulation.
// Emit is never called while the monitor lock is held, and calls are serialized
// by the dispatcher so implementations see events in sequence order.
type EventSink interface {
	Emit(Event) error
}

// Pauser simulates the time a student spends on an activity outside the hall
// (getting food) or inside it (eating).
type Pauser interface {
	Pause(activity Activity)
}

// Hall is the set of operations a student calls into.
// PairingMonitor is the only production implementation.
type Hall interface {
	// Enter blocks until the student is seated and returns true,
	// or returns false when no partner can ever arrive.
	Enter(id StudentID) bool
	// Leave must only be called after a successful Enter.
	Leave(id StudentID)
	// MarkFinished must be called exactly once per student, after its loop ends.
	MarkFinished(id StudentID)
	// Record publishes an event that happens outside the monitor, such as eating.
	Record(id StudentID, action Action, reason string)
}
