// Package transport provides delivery backends for session starts and
// event batches.
//
// The HTTP transport posts JSON payloads to a collector service. Durable
// sends are used during shutdown: they detach from the caller's context
// so an in-flight batch still completes after the coordinator's lifecycle
// context is cancelled.
package transport
