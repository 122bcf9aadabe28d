package types

import "context"

// Transport is the server-facing delivery path. Only the current leader calls
// it: once per browser session for StartSession and once per drained batch for
// SendBatch.
type Transport interface {
	// StartSession performs the session-start exchange and returns the
	// server-assigned session id. The coordinator guards this so it is
	// called at most once per session lifetime per instance.
	StartSession(ctx context.Context, init SessionInit) (string, error)

	// SendBatch delivers one batch of events for the given session.
	//
	// When durable is true the implementation should prefer a non-blocking,
	// fire-and-forget delivery suitable for page teardown; the coordinator
	// falls back to a normal (durable=false) request if it fails. No
	// response body is consumed either way.
	SendBatch(ctx context.Context, sessionID string, events []Event, durable bool) error
}
