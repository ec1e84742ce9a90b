// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dininghall

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// EventDispatcher moves events from the monitor to an EventSink on its own goroutine.
// Dispatch only appends to an in-memory queue, so it is safe to call while holding the
// monitor lock; the sink is never invoked under that lock.
type EventDispatcher struct {
	logger Logger
	sink   EventSink

	lock    sync.Mutex
	signal  sync.Cond
	pending []Event
	closed  bool

	running   sync.WaitGroup
	delivered atomic.Uint64
	failures  atomic.Uint64
}

func NewEventDispatcher(logger Logger, sink EventSink) *EventDispatcher {
	d := &EventDispatcher{
		logger: logger,
		sink:   sink,
	}
	d.signal.L = &d.lock

	d.logger.Debug("Created event dispatcher")

	d.running.Add(1)
	go d.run()

	return d
}

// Dispatch enqueues the event. Events dispatched after Close are dropped.
func (d *EventDispatcher) Dispatch(e Event) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.closed {
		d.logger.Warn("Event dispatched after close; dropping it", zap.Stringer("event", e))
		return
	}

	d.pending = append(d.pending, e)
	d.signal.Signal()
}

func (d *EventDispatcher) run() {
	defer d.running.Done()

	for {
		d.lock.Lock()
		for len(d.pending) == 0 && !d.closed {
			d.signal.Wait()
		}
		if len(d.pending) == 0 {
			d.lock.Unlock()
			return
		}
		batch := d.pending
		d.pending = nil
		d.lock.Unlock()

		d.logger.Verbo("Delivering events", zap.Int("count", len(batch)))
		for _, e := range batch {
			if err := d.sink.Emit(e); err != nil {
				d.failures.Add(1)
				d.logger.Warn("Failed emitting event", zap.Uint64("seq", e.Seq), zap.Error(err))
				continue
			}
			d.delivered.Add(1)
		}
	}
}

// Close delivers every pending event and stops the dispatcher goroutine.
func (d *EventDispatcher) Close() {
	d.lock.Lock()
	if d.closed {
		d.lock.Unlock()
		return
	}
	d.closed = true
	d.signal.Broadcast()
	d.lock.Unlock()

	d.running.Wait()
	d.logger.Debug("Event dispatcher closed", zap.Uint64("delivered", d.delivered.Load()), zap.Uint64("failures", d.failures.Load()))
}

func (d *EventDispatcher) Delivered() uint64 {
	return d.delivered.Load()
}

func (d *EventDispatcher) Failures() uint64 {
	return d.failures.Load()
}
