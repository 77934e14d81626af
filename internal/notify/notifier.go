// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

// Package notify hands operation notifications from the worker goroutine to the
// single goroutine that owns the presentation state.
package notify

import (
	"context"
	"sync"
)

// Kind identifies the notification channel an event was emitted on.
type Kind int

// Notification channels.
const (
	KindProgress Kind = iota
	KindFinished
)

func (k Kind) String() string {
	if k == KindFinished {
		return "finished"
	}

	return "progress"
}

// Event tells the consumer to re-read the snapshot of the given operation.
// Events carry no state of their own.
type Event struct {
	Kind       Kind
	Generation uint64
}

// Notifier is a FIFO of events with a wake signal. Producers never block.
// Consecutive progress events of the same operation are coalesced, which is
// safe because consumers always re-read the full snapshot.
//
// Notifier supports any number of producers but a single consumer.
type Notifier struct {
	mu    sync.Mutex
	queue []Event
	wake  chan struct{}
}

// New creates an empty notifier.
func New() *Notifier {
	return &Notifier{
		wake: make(chan struct{}, 1),
	}
}

// Progress queues a progress-changed event.
func (n *Notifier) Progress(generation uint64) {
	n.push(Event{Kind: KindProgress, Generation: generation})
}

// Finished queues an operation-finished event.
func (n *Notifier) Finished(generation uint64) {
	n.push(Event{Kind: KindFinished, Generation: generation})
}

func (n *Notifier) push(event Event) {
	n.mu.Lock()

	if event.Kind == KindProgress && len(n.queue) > 0 && n.queue[len(n.queue)-1] == event {
		n.mu.Unlock()

		return
	}

	n.queue = append(n.queue, event)
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// Wake is signalled after events were queued. A signal may be stale, so
// consumers must tolerate an empty Drain.
func (n *Notifier) Wake() <-chan struct{} {
	return n.wake
}

// Drain removes and returns all queued events in emission order.
func (n *Notifier) Drain() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	events := n.queue
	n.queue = nil

	return events
}

// Pending returns the number of queued events.
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.queue)
}

// Next blocks until at least one event is queued and drains the queue.
func (n *Notifier) Next(ctx context.Context) ([]Event, error) {
	for {
		if events := n.Drain(); len(events) > 0 {
			return events, nil
		}

		select {
		case <-n.wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
