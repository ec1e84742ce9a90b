// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dininghall

import (
	"fmt"
	"strings"
	"time"
)

// HallCapacity is the number of seats in the hall. Students enter and leave in pairs.
const HallCapacity = 2

// StudentID identifies a worker. IDs start at 1.
type StudentID int

func (id StudentID) String() string {
	return fmt.Sprintf("%02d", int(id))
}

type Action uint8

const (
	ActionUnknown Action = iota
	ActionRequestEntry
	ActionWaitEntry
	ActionAbortEntry
	ActionEntered
	ActionRequestLeave
	ActionWaitLeave
	ActionLeft
	ActionFinished
	ActionGetFood
	ActionEating
)

var actionNames = [...]string{
	ActionUnknown:      "UNKNOWN",
	ActionRequestEntry: "REQ_ENTRY",
	ActionWaitEntry:    "WAIT_ENTRY",
	ActionAbortEntry:   "ABORT_ENTRY",
	ActionEntered:      "ENTERED",
	ActionRequestLeave: "REQ_LEAVE",
	ActionWaitLeave:    "WAIT_LEAVE",
	ActionLeft:         "LEFT",
	ActionFinished:     "FINISHED",
	ActionGetFood:      "GET_FOOD",
	ActionEating:       "EATING",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// ParseAction is the inverse of Action.String.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	for i, name := range actionNames {
		if i == int(ActionUnknown) {
			continue
		}
		if name == s {
			return Action(i), nil
		}
	}
	return ActionUnknown, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Event is a single entry of the diagnostic side channel.
// Eating and WaitingToEat are read under the monitor lock at the moment the event happened.
type Event struct {
	Seq          uint64    `json:"seq"`
	Time         time.Time `json:"time"`
	Student      StudentID `json:"student"`
	Action       Action    `json:"action"`
	Reason       string    `json:"reason,omitempty"`
	Eating       int       `json:"eating"`
	WaitingToEat int       `json:"waiting_to_eat"`
}

func (e Event) String() string {
	return fmt.Sprintf("#%d student=%s %s eat=%d wait=%d (%s)", e.Seq, e.Student, e.Action, e.Eating, e.WaitingToEat, e.Reason)
}

// Activity is what a student does outside the monitor.
type Activity uint8

const (
	ActivityGetFood Activity = iota
	ActivityDine
)

func (a Activity) String() string {
	switch a {
	case ActivityGetFood:
		return "get food"
	case ActivityDine:
		return "dine"
	default:
		return fmt.Sprintf("Activity(%d)", uint8(a))
	}
}

// State is a consistent copy of the monitor counters.
type State struct {
	Eating         int
	WaitingToEat   int
	WaitingToLeave int
	Total          int
	Finished       int

	Seatings     uint64
	Aborts       uint64
	Departures   uint64
	BarrierWaits uint64
}

// Active returns the number of students that could still request a seat.
func (s State) Active() int {
	return s.Total - s.Finished
}
