package types

import "context"

// Channel is the cross-instance publish/subscribe bus used to pass control
// messages (session handoff, event delegation, heartbeats, leadership
// requests) between instances of the same origin without server round-trips.
//
// Delivery contract:
//   - Best-effort: senders never learn whether anyone received a message.
//   - Messages published by the same sender are delivered in publish order.
//   - No ordering guarantee across distinct senders.
//   - A sender receives its own published messages back; receivers filter
//     on Message.SenderID.
//
// A nil Channel is a valid degraded configuration: the coordinator then runs
// as a singleton leader with no cross-instance cooperation.
type Channel interface {
	// Publish sends a message to every subscriber of the channel, including
	// the sender itself. Errors indicate a local publish failure only.
	Publish(ctx context.Context, msg Message) error

	// Subscribe registers a handler invoked for every message delivered on
	// the channel. Handlers must be fast and must not block; they are called
	// from the channel's delivery goroutine.
	//
	// Returns:
	//   - func(): Unsubscribe function, safe to call more than once
	//   - error: Subscription failure
	Subscribe(handler func(Message)) (func(), error)
}
