// Package batch provides the in-memory pending-event buffer used by the
// leader's flusher.
package batch

import (
	"sync"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// Buffer accumulates tracked events until the next flush.
//
// Drain swaps the backing slice out atomically, so events appended while a
// flush is in flight land in a fresh buffer and are neither included in the
// in-flight batch nor lost. No capacity bound is enforced; the buffer grows
// until a flush succeeds or the instance goes away.
type Buffer struct {
	mu     sync.Mutex
	events []types.Event
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Append adds an event to the end of the buffer.
//
// Returns:
//   - int: Buffer length after the append, for size-threshold checks
func (b *Buffer) Append(ev types.Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, ev)

	return len(b.events)
}

// AppendAll adds a batch of events, preserving their order.
//
// Returns:
//   - int: Buffer length after the append
func (b *Buffer) AppendAll(evs []types.Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, evs...)

	return len(b.events)
}

// Drain removes and returns the entire buffer contents. Events appended
// concurrently with a drain are not included and remain buffered.
func (b *Buffer) Drain() []types.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	drained := b.events
	b.events = nil

	return drained
}

// Requeue puts events back at the front of the buffer, ahead of anything
// appended since the drain. Used by retry policies after delivery failure.
func (b *Buffer) Requeue(evs []types.Event) {
	if len(evs) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	merged := make([]types.Event, 0, len(evs)+len(b.events))
	merged = append(merged, evs...)
	merged = append(merged, b.events...)
	b.events = merged
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.events)
}
