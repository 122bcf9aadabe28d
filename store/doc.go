// Package store provides SharedStore implementations for tabtrack.
//
// The shared store holds the leadership token (and nothing else today). Two
// implementations are included:
//
//   - Memory: an in-process last-writer-wins map. Models the semantics of the
//     browser's origin-local storage exactly and backs most unit tests.
//   - NATS: a JetStream KV bucket shared by all instances of an origin. Put
//     maps to a plain KV put, deliberately keeping last-writer-wins semantics
//     instead of Create/Update leases, because the election design is
//     advisory rather than a lock.
package store
