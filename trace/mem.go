// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"sync"

	"github.com/ava-labs/dininghall"
)

var _ dininghall.EventSink = (*MemSink)(nil)

type MemSink struct {
	mu     sync.Mutex
	events []dininghall.Event
}

func (ms *MemSink) Emit(e dininghall.Event) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.events = append(ms.events, e)
	return nil
}

// Events returns a copy of everything emitted so far, in emission order.
func (ms *MemSink) Events() []dininghall.Event {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	res := make([]dininghall.Event, len(ms.events))
	copy(res, ms.events)
	return res
}

func (ms *MemSink) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return len(ms.events)
}
