// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dininghall

import (
	"math/rand/v2"
	"time"
)

// Student is one worker of the simulation. It repeatedly gets food, sits, eats and
// leaves, and stops early when the hall tells it no partner will ever arrive.
type Student struct {
	ID         StudentID
	Iterations int
	Hall       Hall
	Pauser     Pauser
}

type Outcome struct {
	Student StudentID
	Meals   int
	Aborted bool
}

func (s *Student) Run() Outcome {
	out := Outcome{Student: s.ID}

	for i := 0; i < s.Iterations; i++ {
		s.Hall.Record(s.ID, ActionGetFood, "getting food")
		s.Pauser.Pause(ActivityGetFood)

		if !s.Hall.Enter(s.ID) {
			out.Aborted = true
			break
		}

		s.Hall.Record(s.ID, ActionEating, "eating")
		s.Pauser.Pause(ActivityDine)
		s.Hall.Leave(s.ID)
		out.Meals++
	}

	s.Hall.MarkFinished(s.ID)
	return out
}

const (
	DefaultMinPause = 10 * time.Millisecond
	DefaultMaxPause = 50 * time.Millisecond
)

// RandomPauser sleeps for a uniformly random duration in [Min, Max].
type RandomPauser struct {
	Min time.Duration
	Max time.Duration
}

func DefaultPauser() RandomPauser {
	return RandomPauser{Min: DefaultMinPause, Max: DefaultMaxPause}
}

func (p RandomPauser) Pause(Activity) {
	time.Sleep(p.duration())
}

func (p RandomPauser) duration() time.Duration {
	if p.Max <= p.Min {
		return p.Min
	}
	return p.Min + rand.N(p.Max-p.Min+1)
}

// NoPause returns immediately, which maximizes contention on the monitor.
type NoPause struct{}

func (NoPause) Pause(Activity) {
}
