package types

import "context"

// SessionCache is the instance-local durable cache for the session id. It
// exists so a reload of the same instance can resume its session without a
// second session-start exchange. It is never shared between instances.
//
// A nil SessionCache disables reload survival; everything else keeps working.
type SessionCache interface {
	// Load returns the cached session id, or "" with a nil error when
	// nothing is cached.
	Load(ctx context.Context) (string, error)

	// Store persists the session id, replacing any previous value.
	Store(ctx context.Context, sessionID string) error
}
