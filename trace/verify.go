// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ava-labs/dininghall"
	"go.uber.org/multierr"
)

var ErrViolation = errors.New("trace violation")

type studentState struct {
	seated        bool
	waitingToSit  bool
	aborted       bool
	finished      bool
	lastEnteredAt int
}

// Summary describes a trace at a glance.
type Summary struct {
	Events   int
	Students int
	Meals    int
	Aborts   int
	// MaxEating is the highest number of students seen in the hall at once.
	MaxEating int
	// PairedExits counts departures that went through the exit barrier.
	PairedExits int
}

func Summarize(events []dininghall.Event) Summary {
	students := make(map[dininghall.StudentID]struct{})
	s := Summary{Events: len(events)}
	for _, e := range events {
		students[e.Student] = struct{}{}
		s.MaxEating = max(s.MaxEating, e.Eating)
		switch e.Action {
		case dininghall.ActionEntered:
			s.Meals++
		case dininghall.ActionAbortEntry:
			s.Aborts++
		case dininghall.ActionWaitLeave:
			s.PairedExits++
		}
	}
	s.Students = len(students)
	return s
}

// Verify replays a complete trace, ordered by sequence, and reports every violation of
// the pairing protocol it finds. The counters recorded in each event must match the
// counters implied by the ENTERED and LEFT events before it.
func Verify(events []dininghall.Event) error {
	var (
		errs    error
		eating  int
		prevSeq uint64
		states  = make(map[dininghall.StudentID]*studentState)
	)

	violation := func(e dininghall.Event, format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: event #%d student %s %s: %s",
			ErrViolation, e.Seq, e.Student, e.Action, fmt.Sprintf(format, args...)))
	}

	for i, e := range events {
		if e.Seq <= prevSeq {
			violation(e, "sequence number does not increase after #%d", prevSeq)
		}
		prevSeq = e.Seq

		st, ok := states[e.Student]
		if !ok {
			st = &studentState{}
			states[e.Student] = st
		}

		if st.finished {
			violation(e, "activity after FINISHED")
		}
		if st.aborted && e.Action != dininghall.ActionFinished {
			violation(e, "activity after ABORT_ENTRY other than FINISHED")
		}
		if e.WaitingToEat < 0 {
			violation(e, "negative waiting count %d", e.WaitingToEat)
		}

		switch e.Action {
		case dininghall.ActionRequestEntry:
			if st.seated {
				violation(e, "requested a seat while seated")
			}
			st.waitingToSit = true
		case dininghall.ActionWaitEntry:
			if !st.waitingToSit {
				violation(e, "waiting for a seat without requesting one")
			}
		case dininghall.ActionAbortEntry:
			if !st.waitingToSit {
				violation(e, "aborted without requesting a seat")
			}
			if e.Eating != 0 {
				violation(e, "aborted while %d students are eating", e.Eating)
			}
			st.waitingToSit = false
			st.aborted = true
		case dininghall.ActionEntered:
			if !st.waitingToSit {
				violation(e, "seated without requesting a seat")
			}
			if st.seated {
				violation(e, "seated twice")
			}
			eating++
			st.waitingToSit = false
			st.seated = true
			st.lastEnteredAt = i
		case dininghall.ActionRequestLeave, dininghall.ActionEating:
			if !st.seated {
				violation(e, "not seated")
			}
		case dininghall.ActionWaitLeave:
			if !st.seated {
				violation(e, "at the exit barrier without a seat")
			}
			if e.Eating != dininghall.HallCapacity {
				violation(e, "exit barrier with %d students eating", e.Eating)
			}
		case dininghall.ActionLeft:
			if !st.seated {
				violation(e, "left without a seat")
			}
			eating--
			st.seated = false
		case dininghall.ActionFinished:
			if st.seated || st.waitingToSit {
				violation(e, "finished while still in the monitor")
			}
			st.finished = true
		case dininghall.ActionGetFood:
		default:
			violation(e, "unknown action")
		}

		if e.Eating < 0 || e.Eating > dininghall.HallCapacity {
			violation(e, "eating count %d out of range [0, %d]", e.Eating, dininghall.HallCapacity)
		}
		if e.Eating != eating {
			violation(e, "recorded eating count %d, replay says %d", e.Eating, eating)
			eating = e.Eating
		}
	}

	ids := make([]dininghall.StudentID, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		st := states[id]
		if !st.finished {
			errs = multierr.Append(errs, fmt.Errorf("%w: student %s never finished", ErrViolation, id))
		}
		if st.seated {
			errs = multierr.Append(errs, fmt.Errorf("%w: student %s still seated at the end of the trace (seated at event %d)",
				ErrViolation, id, events[st.lastEnteredAt].Seq))
		}
	}

	if len(events) > 0 && eating != 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: %d students still eating at the end of the trace", ErrViolation, eating))
	}

	return errs
}
