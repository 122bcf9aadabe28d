package types

import "context"

// Hooks defines callbacks for coordinator lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// to avoid blocking the coordinator. Hooks receive the coordinator's
// lifecycle context, which is cancelled during shutdown.
//
// Hook errors are logged but never fail coordinator operations; no error
// from this subsystem reaches UI callers.
//
// Best practices for hook implementation:
//   - Complete quickly (< 1 second recommended)
//   - Respect context cancellation
//   - Make hooks idempotent (may be called multiple times)
type Hooks struct {
	// OnStateChanged is called when the instance state transitions.
	OnStateChanged func(ctx context.Context, from, to State) error

	// OnLeadershipChanged is called when this instance gains or loses
	// leadership.
	OnLeadershipChanged func(ctx context.Context, isLeader bool) error

	// OnSessionStarted is called the first time a session id becomes known
	// to this instance, whether started locally or adopted from the leader.
	OnSessionStarted func(ctx context.Context, sessionID string) error

	// OnFlush is called after every flush attempt that drained events.
	// delivered is the batch size; err is the delivery error, if any.
	OnFlush func(ctx context.Context, delivered int, err error) error

	// OnError is called when a recoverable error occurs.
	OnError func(ctx context.Context, err error) error
}
