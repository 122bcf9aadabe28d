// Package testing provides test helpers for tabtrack: an embedded NATS
// server with JetStream enabled, a logger that writes to testing.T, and a
// recording transport that captures session-start and batch deliveries.
//
// Import with an alias to avoid clashing with the standard library:
//
//	tabtest "github.com/eridhobffry/paguyuban-next-sub001/testing"
package testing
