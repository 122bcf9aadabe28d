package types

// RetryPolicy decides what happens to a drained batch whose delivery failed.
//
// The default policy drops the batch: delivery is at-least-once effort, not
// guaranteed, and the server deduplicates. Implementers wanting stronger
// delivery guarantees can re-queue events up to a bound without changing the
// core contract.
type RetryPolicy interface {
	// OnDeliveryFailure receives the failed batch together with the number
	// of events currently pending in the buffer, and returns the events to
	// put back at the front of the buffer for the next flush. Returning nil
	// drops the batch.
	OnDeliveryFailure(failed []Event, pending int) []Event
}
