// Package retry provides delivery retry policies for the flusher.
//
// The default behavior of the coordinator is to drop a drained batch whose
// delivery failed: delivery is at-least-once effort and the server
// deduplicates, so losing a batch under network failure is an accepted cost.
// These policies let implementers opt into stronger delivery guarantees
// without changing the core contract.
package retry

import "github.com/eridhobffry/paguyuban-next-sub001/types"

// Drop discards failed batches. This is the coordinator's default policy.
type Drop struct{}

// Compile-time assertion that Drop implements RetryPolicy.
var _ types.RetryPolicy = (*Drop)(nil)

// NewDrop creates the drop policy.
func NewDrop() *Drop {
	return &Drop{}
}

// OnDeliveryFailure discards the failed batch.
func (*Drop) OnDeliveryFailure(_ []types.Event, _ int) []types.Event {
	return nil
}

// BoundedQueue re-queues failed batches for the next flush, as long as the
// total number of buffered events stays under a cap. When re-queueing the
// whole batch would exceed the cap, the newest events of the batch are
// dropped first; the remainder keeps its order.
type BoundedQueue struct {
	cap int
}

// Compile-time assertion that BoundedQueue implements RetryPolicy.
var _ types.RetryPolicy = (*BoundedQueue)(nil)

// NewBoundedQueue creates a bounded re-queue policy.
//
// Parameters:
//   - cap: Maximum number of events allowed in the buffer after re-queueing.
//     Values < 1 behave like the drop policy.
func NewBoundedQueue(cap int) *BoundedQueue {
	return &BoundedQueue{cap: cap}
}

// OnDeliveryFailure returns the prefix of the failed batch that fits under
// the cap next to the events already pending.
func (q *BoundedQueue) OnDeliveryFailure(failed []types.Event, pending int) []types.Event {
	room := q.cap - pending
	if room <= 0 {
		return nil
	}
	if len(failed) <= room {
		return failed
	}

	return failed[:room]
}
