// Package sessioncache provides SessionCache implementations for tabtrack.
//
// The session cache is instance-local and exists only so a reload of the same
// instance can resume its session without a second session-start exchange.
// It is never shared between instances; the session id reaches other
// instances over the channel, not through this cache.
package sessioncache
